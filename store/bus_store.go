package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/amanpalap/wimb/models"
)

// ErrNotFound is returned when a query matched zero valid documents. It is
// distinct from a store failure so callers can answer 404 instead of 500.
var ErrNotFound = errors.New("no matching bus records")

const busCollection = "buses"

// BusStore looks up bus records by equality filters. It is read-only; the
// collection is populated by an out-of-band ingestion process.
type BusStore struct {
	collection *mongo.Collection
}

// New wraps the buses collection of the given database handle. The handle is
// constructed once at process start and passed in explicitly.
func New(db *mongo.Database) *BusStore {
	return &BusStore{collection: db.Collection(busCollection)}
}

// FindByNumber returns every record whose busNumber equals the given value.
func (s *BusStore) FindByNumber(ctx context.Context, busNumber string) ([]models.BusRecord, error) {
	if busNumber == "" {
		return nil, errors.New("busNumber must not be empty")
	}
	return s.find(ctx, bson.M{"busNumber": busNumber})
}

// FindByRoute returns every record matching the (from, to) pair. Place names
// are stored lowercased, so the comparison is case-insensitive.
func (s *BusStore) FindByRoute(ctx context.Context, from, to string) ([]models.BusRecord, error) {
	if from == "" || to == "" {
		return nil, errors.New("from and to must both be non-empty")
	}
	return s.find(ctx, routeFilter(from, to))
}

func routeFilter(from, to string) bson.M {
	return bson.M{
		"from": strings.ToLower(from),
		"to":   strings.ToLower(to),
	}
}

func (s *BusStore) find(ctx context.Context, filter bson.M) ([]models.BusRecord, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("bus query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BusRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decoding bus records: %w", err)
	}

	// Flag and skip documents missing required fields.
	valid := records[:0]
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			log.Printf("Skipping invalid bus document: %v", err)
			continue
		}
		valid = append(valid, rec)
	}

	if len(valid) == 0 {
		return nil, ErrNotFound
	}
	return valid, nil
}

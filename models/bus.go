package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// BusRecord is one document from the "buses" collection. Records are written
// by an out-of-band ingestion process; this service only reads them.
// BusNumber is stored normalized (uppercase, alphanumeric only) and from/to
// are stored lowercased, so lookups use plain equality filters.
type BusRecord struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BusNumber       string             `json:"busNumber" bson:"busNumber"`
	From            string             `json:"from" bson:"from"`
	To              string             `json:"to" bson:"to"`
	CurrentLocation *Coordinates       `json:"currentLocation,omitempty" bson:"currentLocation,omitempty"`
	Via             [][]string         `json:"via,omitempty" bson:"via,omitempty"`
	DepartureTime   string             `json:"departureTime,omitempty" bson:"departureTime,omitempty"`
	ArrivalTime     string             `json:"arrivalTime,omitempty" bson:"arrivalTime,omitempty"`
}

// Validate checks the fields every stored document must carry. Invalid
// documents are flagged at the store boundary instead of being reshaped
// on the fly.
func (b BusRecord) Validate() error {
	if b.BusNumber == "" {
		return fmt.Errorf("bus record %s: missing busNumber", b.ID.Hex())
	}
	if b.From == "" {
		return fmt.Errorf("bus record %s: missing from", b.ID.Hex())
	}
	if b.To == "" {
		return fmt.Errorf("bus record %s: missing to", b.ID.Hex())
	}
	return nil
}

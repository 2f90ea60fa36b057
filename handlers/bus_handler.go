package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/amanpalap/wimb/journey"
	"github.com/amanpalap/wimb/models"
	"github.com/amanpalap/wimb/store"
)

const (
	searchTimeout  = 10 * time.Second
	resolveTimeout = 30 * time.Second
)

// BusSearcher is the record-lookup surface the search endpoint needs.
type BusSearcher interface {
	FindByNumber(ctx context.Context, busNumber string) ([]models.BusRecord, error)
	FindByRoute(ctx context.Context, from, to string) ([]models.BusRecord, error)
}

// JourneyResolver assembles the itinerary view-model for one tracking number.
type JourneyResolver interface {
	Resolve(ctx context.Context, trackingNumber string) (*models.Itinerary, error)
}

// SearchCriteria is the bus-list request body. Valid when busNumber is given,
// or when both from and to are given.
type SearchCriteria struct {
	BusNumber string `json:"busNumber" validate:"required_without_all=From To"`
	From      string `json:"from" validate:"required_without=BusNumber"`
	To        string `json:"to" validate:"required_without=BusNumber"`
}

type resolveRequest struct {
	Number string `json:"number"`
}

// BusHandler serves the search and journey-resolution endpoints.
type BusHandler struct {
	store    BusSearcher
	resolver JourneyResolver
	validate *validator.Validate
}

func NewBusHandler(store BusSearcher, resolver JourneyResolver) *BusHandler {
	return &BusHandler{
		store:    store,
		resolver: resolver,
		validate: validator.New(),
	}
}

// ListBuses handles POST /bus-list: search by busNumber or by (from, to).
func (h *BusHandler) ListBuses(w http.ResponseWriter, r *http.Request) {
	var criteria SearchCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		log.Printf("ListBuses: error decoding request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validate.Struct(criteria); err != nil {
		writeError(w, http.StatusBadRequest, "Provide either busNumber or from & to values")
		return
	}

	// A number that normalizes to nothing (punctuation only, non-ASCII) is a
	// client problem, not a store fault; reject it before any lookup.
	if criteria.BusNumber != "" {
		criteria.BusNumber = normalizeBusNumber(criteria.BusNumber)
		if criteria.BusNumber == "" {
			writeError(w, http.StatusBadRequest, "Provide either busNumber or from & to values")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	var (
		buses    []models.BusRecord
		err      error
		notFound string
	)
	if criteria.BusNumber != "" {
		buses, err = h.store.FindByNumber(ctx, criteria.BusNumber)
		notFound = "Bus not found"
	} else {
		buses, err = h.store.FindByRoute(ctx, criteria.From, criteria.To)
		notFound = "No buses found for the specified route"
	}

	if err != nil {
		h.writeLookupError(w, err, notFound, "Failed to retrieve bus data")
		return
	}
	writeData(w, http.StatusOK, buses)
}

// ResolveJourney handles POST /location/update: build the itinerary for one
// tracking number.
func (h *BusHandler) ResolveJourney(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("ResolveJourney: error decoding request: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	itinerary, err := h.resolver.Resolve(ctx, normalizeBusNumber(req.Number))
	switch {
	case errors.Is(err, journey.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "Bus number is required")
	case errors.Is(err, journey.ErrNotFound):
		writeError(w, http.StatusNotFound, "Bus not found")
	case err != nil:
		log.Printf("ResolveJourney: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeData(w, http.StatusOK, itinerary)
	}
}

func (h *BusHandler) writeLookupError(w http.ResponseWriter, err error, notFound, failed string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	log.Printf("Bus lookup failed: %v", err)
	writeError(w, http.StatusInternalServerError, failed)
}

// normalizeBusNumber mirrors the form normalization: uppercase, alphanumeric
// only, matching how records are stored.
func normalizeBusNumber(number string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(number) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package journey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/amanpalap/wimb/geocode"
	"github.com/amanpalap/wimb/models"
	"github.com/amanpalap/wimb/store"
	"github.com/amanpalap/wimb/utils"
)

var (
	// ErrInvalidInput is returned when the tracking number is empty.
	ErrInvalidInput = errors.New("tracking number must not be empty")
	// ErrNotFound is returned when no bus record matches the tracking number.
	ErrNotFound = errors.New("bus not found")
)

// Placeholder strings substituted when geocoding degrades. Sub-failures never
// abort a resolution once the record itself was found.
const (
	addressUnavailable = "Address unavailable"
	coordsUnavailable  = "Coordinates not available"
)

// BusFinder fetches bus records by tracking number.
type BusFinder interface {
	FindByNumber(ctx context.Context, busNumber string) ([]models.BusRecord, error)
}

// Geocoder converts between coordinates and place names.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (geocode.Result, error)
	Forward(ctx context.Context, placeName string) (geocode.Result, error)
}

// Resolver assembles itinerary view-models: record fetch, reverse geocode of
// the current fix, concurrent forward geocode of every via waypoint, and the
// active-waypoint computation.
type Resolver struct {
	buses    BusFinder
	geocoder Geocoder
}

func NewResolver(buses BusFinder, geocoder Geocoder) *Resolver {
	return &Resolver{buses: buses, geocoder: geocoder}
}

// Resolve builds the itinerary for one tracking number. When several records
// share the number, the first as returned by the store is used; the store
// imposes no ordering.
func (r *Resolver) Resolve(ctx context.Context, trackingNumber string) (*models.Itinerary, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, ErrInvalidInput
	}

	records, err := r.buses.FindByNumber(ctx, trackingNumber)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving journey for %s: %w", trackingNumber, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	bus := records[0]

	itinerary := &models.Itinerary{
		TrackingNumber: bus.BusNumber,
		From:           bus.From,
		To:             bus.To,
		DepartureTime:  bus.DepartureTime,
		ArrivalTime:    bus.ArrivalTime,
		Location:       bus.CurrentLocation,
		CurrentAddress: coordsUnavailable,
		Via:            bus.Via,
	}

	waypoints := make([]models.ItineraryWaypoint, len(bus.Via))
	var wg sync.WaitGroup

	if bus.CurrentLocation != nil {
		loc := *bus.CurrentLocation
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.geocoder.Reverse(ctx, loc.Lat, loc.Lng)
			if err != nil {
				log.Printf("Reverse geocode failed for %s: %v", bus.BusNumber, err)
				itinerary.CurrentAddress = addressUnavailable
				return
			}
			itinerary.CurrentAddress = res.DisplayName
		}()
	}

	// One goroutine per waypoint; results land in their own slot so output
	// order follows the via sequence regardless of completion order.
	for i, group := range bus.Via {
		name := firstAlias(group)
		waypoints[i] = models.ItineraryWaypoint{
			Name:   name,
			Result: models.GeocodeResult{SourceName: name},
		}
		if name == "" {
			waypoints[i].Result.FailureReason = "waypoint has no name"
			continue
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			res, err := r.geocoder.Forward(ctx, name)
			if err != nil {
				log.Printf("Forward geocode failed for waypoint %q: %v", name, err)
				waypoints[i].Result.FailureReason = failureReason(err)
				return
			}
			lat, lng := res.Latitude, res.Longitude
			waypoints[i].Result.Latitude = &lat
			waypoints[i].Result.Longitude = &lng
			waypoints[i].Result.DisplayAddress = res.DisplayName
		}(i, name)
	}

	wg.Wait()

	itinerary.Waypoints = waypoints
	if len(waypoints) > 0 {
		idx := activeWaypoint(bus.CurrentLocation, waypoints)
		itinerary.ActiveWaypointIndex = &idx
	}
	return itinerary, nil
}

// activeWaypoint picks the resolved waypoint nearest the current fix. Without
// a fix, or when no waypoint resolved with coordinates, the first waypoint is
// considered active.
func activeWaypoint(loc *models.Coordinates, waypoints []models.ItineraryWaypoint) int {
	if loc == nil {
		return 0
	}
	best, bestDist := 0, -1.0
	for i, wp := range waypoints {
		if wp.Result.Latitude == nil || wp.Result.Longitude == nil {
			continue
		}
		d := utils.CalculateDistance(loc.Lat, loc.Lng, *wp.Result.Latitude, *wp.Result.Longitude)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// firstAlias returns the canonical display name of a waypoint group.
func firstAlias(group []string) string {
	for _, alias := range group {
		if alias != "" {
			return alias
		}
	}
	return ""
}

func failureReason(err error) string {
	if errors.Is(err, geocode.ErrNoMatch) {
		return "no match found"
	}
	return "geocoding unavailable"
}

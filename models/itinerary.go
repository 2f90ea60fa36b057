package models

// GeocodeResult carries the outcome of one geocoding call. Either the
// location fields or FailureReason is populated, never both.
type GeocodeResult struct {
	SourceName     string   `json:"sourceName"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	DisplayAddress string   `json:"displayAddress,omitempty"`
	FailureReason  string   `json:"failureReason,omitempty"`
}

// ItineraryWaypoint is one named stop on the route with its resolved
// geocoding result. Waypoints keep the order of the record's via sequence.
type ItineraryWaypoint struct {
	Name   string        `json:"name"`
	Result GeocodeResult `json:"result"`
}

// Itinerary is the view-model assembled for one journey resolution request.
// It is built fresh per request and never persisted. ActiveWaypointIndex,
// when present, is a valid index into Waypoints; it is absent when the
// record has no via waypoints.
type Itinerary struct {
	TrackingNumber      string              `json:"trackingNumber"`
	From                string              `json:"from"`
	To                  string              `json:"to"`
	DepartureTime       string              `json:"departureTime,omitempty"`
	ArrivalTime         string              `json:"arrivalTime,omitempty"`
	Location            *Coordinates        `json:"location,omitempty"`
	CurrentAddress      string              `json:"currentAddress"`
	Via                 [][]string          `json:"via,omitempty"`
	Waypoints           []ItineraryWaypoint `json:"waypoints"`
	ActiveWaypointIndex *int                `json:"activeWaypointIndex,omitempty"`
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amanpalap/wimb/journey"
	"github.com/amanpalap/wimb/models"
	"github.com/amanpalap/wimb/store"
)

type fakeSearcher struct {
	records    []models.BusRecord
	err        error
	gotNumber  string
	gotFrom    string
	gotTo      string
	routeCalls int
}

func (f *fakeSearcher) FindByNumber(ctx context.Context, busNumber string) ([]models.BusRecord, error) {
	f.gotNumber = busNumber
	return f.records, f.err
}

func (f *fakeSearcher) FindByRoute(ctx context.Context, from, to string) ([]models.BusRecord, error) {
	f.routeCalls++
	f.gotFrom, f.gotTo = from, to
	return f.records, f.err
}

type fakeResolver struct {
	itinerary *models.Itinerary
	err       error
	gotNumber string
}

func (f *fakeResolver) Resolve(ctx context.Context, trackingNumber string) (*models.Itinerary, error) {
	f.gotNumber = trackingNumber
	return f.itinerary, f.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return envelope
}

func TestListBusesValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: `{}`},
		{name: "from without to", body: `{"from":"Delhi"}`},
		{name: "to without from", body: `{"to":"Agra"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			h := NewBusHandler(searcher, &fakeResolver{})

			rec := postJSON(t, h.ListBuses, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400", rec.Code)
			}
			envelope := decodeEnvelope(t, rec)
			if envelope["error"] != "Provide either busNumber or from & to values" {
				t.Errorf("error = %q", envelope["error"])
			}
			if envelope["success"] != false {
				t.Error("success should be false")
			}
			if searcher.gotNumber != "" || searcher.routeCalls != 0 {
				t.Error("no lookup should happen on invalid input")
			}
		})
	}
}

func TestListBusesUnnormalizableNumber(t *testing.T) {
	// Punctuation-only or non-ASCII numbers normalize to "" and must be
	// rejected as invalid input, never reach the store as a 500.
	for _, body := range []string{`{"busNumber":"--/--"}`, `{"busNumber":"दिल्ली"}`} {
		searcher := &fakeSearcher{}
		h := NewBusHandler(searcher, &fakeResolver{})

		rec := postJSON(t, h.ListBuses, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, expected 400", body, rec.Code)
		}
		envelope := decodeEnvelope(t, rec)
		if envelope["error"] != "Provide either busNumber or from & to values" {
			t.Errorf("%s: error = %q", body, envelope["error"])
		}
		if searcher.gotNumber != "" || searcher.routeCalls != 0 {
			t.Errorf("%s: no lookup should happen", body)
		}
	}
}

func TestListBusesMalformedBody(t *testing.T) {
	h := NewBusHandler(&fakeSearcher{}, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestListBusesByNumber(t *testing.T) {
	searcher := &fakeSearcher{records: []models.BusRecord{
		{BusNumber: "AB12CD3456", From: "delhi", To: "agra"},
	}}
	h := NewBusHandler(searcher, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{"busNumber":"ab12-cd 3456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	if searcher.gotNumber != "AB12CD3456" {
		t.Errorf("lookup number = %q, expected normalized AB12CD3456", searcher.gotNumber)
	}

	envelope := decodeEnvelope(t, rec)
	if envelope["success"] != true {
		t.Error("success should be true")
	}
	data, ok := envelope["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Fatalf("data = %v, expected one record", envelope["data"])
	}
}

func TestListBusesByNumberNotFound(t *testing.T) {
	searcher := &fakeSearcher{err: store.ErrNotFound}
	h := NewBusHandler(searcher, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{"busNumber":"AB12CD3456"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "Bus not found" {
		t.Errorf("error = %q", envelope["error"])
	}
	if envelope["success"] != false {
		t.Error("success should be false")
	}
}

func TestListBusesByRoute(t *testing.T) {
	searcher := &fakeSearcher{records: []models.BusRecord{
		{BusNumber: "AB12CD3456", From: "delhi", To: "agra"},
		{BusNumber: "XY98ZW7654", From: "delhi", To: "agra"},
	}}
	h := NewBusHandler(searcher, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{"from":"Delhi","to":"Agra"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	if searcher.gotFrom != "Delhi" || searcher.gotTo != "Agra" {
		t.Errorf("route args = %q,%q", searcher.gotFrom, searcher.gotTo)
	}

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v, expected both records", envelope["data"])
	}
}

func TestListBusesByRouteNotFound(t *testing.T) {
	searcher := &fakeSearcher{err: store.ErrNotFound}
	h := NewBusHandler(searcher, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{"from":"delhi","to":"nowhere"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "No buses found for the specified route" {
		t.Errorf("error = %q", envelope["error"])
	}
}

func TestListBusesStoreFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection reset")}
	h := NewBusHandler(searcher, &fakeResolver{})

	rec := postJSON(t, h.ListBuses, `{"busNumber":"AB12CD3456"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "Failed to retrieve bus data" {
		t.Errorf("error = %q", envelope["error"])
	}
}

func TestResolveJourney(t *testing.T) {
	idx := 0
	resolver := &fakeResolver{itinerary: &models.Itinerary{
		TrackingNumber:      "AB12CD3456",
		From:                "delhi",
		To:                  "agra",
		CurrentAddress:      "Connaught Place, New Delhi",
		Waypoints:           []models.ItineraryWaypoint{{Name: "Faridabad"}},
		ActiveWaypointIndex: &idx,
	}}
	h := NewBusHandler(&fakeSearcher{}, resolver)

	rec := postJSON(t, h.ResolveJourney, `{"number":"ab12cd3456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
	}
	if resolver.gotNumber != "AB12CD3456" {
		t.Errorf("resolver got %q, expected normalized AB12CD3456", resolver.gotNumber)
	}

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data = %v", envelope["data"])
	}
	if data["currentAddress"] != "Connaught Place, New Delhi" {
		t.Errorf("currentAddress = %v", data["currentAddress"])
	}
}

func TestResolveJourneyMissingNumber(t *testing.T) {
	resolver := &fakeResolver{err: journey.ErrInvalidInput}
	h := NewBusHandler(&fakeSearcher{}, resolver)

	rec := postJSON(t, h.ResolveJourney, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "Bus number is required" {
		t.Errorf("error = %q", envelope["error"])
	}
}

func TestResolveJourneyNotFound(t *testing.T) {
	resolver := &fakeResolver{err: journey.ErrNotFound}
	h := NewBusHandler(&fakeSearcher{}, resolver)

	rec := postJSON(t, h.ResolveJourney, `{"number":"XX00XX0000"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "Bus not found" {
		t.Errorf("error = %q", envelope["error"])
	}
}

func TestResolveJourneyFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("store exploded")}
	h := NewBusHandler(&fakeSearcher{}, resolver)

	rec := postJSON(t, h.ResolveJourney, `{"number":"AB12CD3456"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope["error"] != "Internal server error" {
		t.Errorf("error = %q", envelope["error"])
	}
}

func TestNormalizeBusNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ab12cd3456", "AB12CD3456"},
		{"AB 12 CD 3456", "AB12CD3456"},
		{"ab-12/cd.3456", "AB12CD3456"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range tests {
		if got := normalizeBusNumber(tc.input); got != tc.expected {
			t.Errorf("normalizeBusNumber(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

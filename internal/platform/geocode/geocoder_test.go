package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

func TestMapQuestGeocodeParsesFirstLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocoding/v1/address" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" || r.URL.Query().Get("location") != "02118" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[{"locations":[{"latLng":{"lat":42.34,"lng":-71.07},"street":"","adminArea5":"Boston","adminArea3":"MA","adminArea1":"US","postalCode":"02118"}]}]}`))
	}))
	defer srv.Close()

	g, err := NewMapQuest(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatalf("NewMapQuest: %v", err)
	}
	locs, err := g.Geocode(context.Background(), "02118")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if len(locs) != 1 || locs[0].Latitude != 42.34 || locs[0].Longitude != -71.07 {
		t.Fatalf("unexpected locations: %+v", locs)
	}
	if locs[0].FormattedAddress != "Boston, MA 02118, US" {
		t.Fatalf("formatted address: got=%q", locs[0].FormattedAddress)
	}
}

func TestMapQuestGeocodeRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"locations":[{"latLng":{"lat":1,"lng":2}}]}]}`))
	}))
	defer srv.Close()

	g, _ := NewMapQuest(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2})
	locs, err := g.Geocode(context.Background(), "x")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if len(locs) != 1 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("want 1 location after 2 calls, got %d locations after %d calls", len(locs), calls)
	}
}

func TestMapQuestGeocodeNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"locations":[]}]}`))
	}))
	defer srv.Close()

	g, _ := NewMapQuest(logger.Nop(), Config{BaseURL: srv.URL, APIKey: "k"})
	if _, err := g.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("want ErrNoResults, got %v", err)
	}
}

func TestNewMapQuestRequiresKey(t *testing.T) {
	if _, err := NewMapQuest(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

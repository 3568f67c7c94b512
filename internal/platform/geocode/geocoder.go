package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/devcamper-backend/internal/platform/httpx"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// ErrNoResults is returned when the provider resolves the query to nothing.
var ErrNoResults = errors.New("geocode: no results")

// Location is a resolved address.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Location, error)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

type mapquestGeocoder struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// NewMapQuest returns a Geocoder backed by the MapQuest address endpoint.
func NewMapQuest(log *logger.Logger, cfg Config) (Geocoder, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEOCODER_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://www.mapquestapi.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &mapquestGeocoder{
		log:        log.With("client", "MapQuestGeocoder"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type mapquestResponse struct {
	Results []struct {
		Locations []struct {
			LatLng struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"`
			AdminArea3 string `json:"adminArea3"`
			AdminArea1 string `json:"adminArea1"`
			PostalCode string `json:"postalCode"`
		} `json:"locations"`
	} `json:"results"`
}

func (g *mapquestGeocoder) Geocode(ctx context.Context, query string) ([]Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResults
	}
	endpoint := g.cfg.BaseURL + "/geocoding/v1/address?" + url.Values{
		"key":      {g.cfg.APIKey},
		"location": {query},
	}.Encode()

	body, err := httpx.DoWithRetry(ctx, g.httpClient, g.cfg.MaxRetries, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	var parsed mapquestResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	var out []Location
	for _, r := range parsed.Results {
		for _, l := range r.Locations {
			loc := Location{
				Latitude:  l.LatLng.Lat,
				Longitude: l.LatLng.Lng,
				Street:    l.Street,
				City:      l.AdminArea5,
				State:     l.AdminArea3,
				Zipcode:   l.PostalCode,
				Country:   l.AdminArea1,
			}
			loc.FormattedAddress = formatAddress(loc)
			out = append(out, loc)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoResults
	}
	g.log.Debug("geocoded", "query", query, "results", len(out))
	return out, nil
}

func formatAddress(l Location) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Street, l.City, strings.TrimSpace(l.State + " " + l.Zipcode), l.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// Observer receives cache hit/miss signals. *observability.Metrics satisfies it.
type Observer interface {
	IncGeocode(source, status string)
}

type nopObserver struct{}

func (nopObserver) IncGeocode(string, string) {}

type cachedGeocoder struct {
	log    *logger.Logger
	obs    Observer
	next   Geocoder
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

// NewCached wraps next with a Redis read-through cache. Cache failures are logged
// and fall through to next.
func NewCached(log *logger.Logger, next Geocoder, rdb goredis.UniversalClient, ttl time.Duration, obs Observer) Geocoder {
	if rdb == nil {
		return next
	}
	if obs == nil {
		obs = nopObserver{}
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &cachedGeocoder{
		log:    log.With("client", "CachedGeocoder"),
		obs:    obs,
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		prefix: "geocode:",
	}
}

func (c *cachedGeocoder) key(query string) string {
	return c.prefix + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (c *cachedGeocoder) Geocode(ctx context.Context, query string) ([]Location, error) {
	key := c.key(query)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Location
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached) > 0 {
			c.obs.IncGeocode("cache", "hit")
			return cached, nil
		}
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("geocode cache read failed", "error", err)
		c.obs.IncGeocode("cache", "error")
	}

	locs, err := c.next.Geocode(ctx, query)
	if err != nil {
		c.obs.IncGeocode("provider", "error")
		return nil, err
	}
	c.obs.IncGeocode("provider", "ok")
	if payload, jsonErr := json.Marshal(locs); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.log.Warn("geocode cache write failed", "error", setErr)
		}
	}
	return locs, nil
}

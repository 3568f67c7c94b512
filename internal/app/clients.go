package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/devcamper-backend/internal/observability"
	"github.com/yungbote/devcamper-backend/internal/platform/geocode"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/sendgrid"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

type Clients struct {
	Redis    goredis.UniversalClient
	Geocoder geocode.Geocoder
	Mailer   sendgrid.Client
	Photos   storage.PhotoStore
}

// wireClients builds the outbound clients. Redis, geocoding and email are optional:
// an unset address or key leaves the client nil and the dependent feature degrades.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    strings.Split(addr, ","),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	// Geocoder
	if strings.TrimSpace(cfg.GeocoderAPIKey) != "" {
		mq, err := geocode.NewMapQuest(log, cfg.Geocoder())
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init geocoder: %w", err)
		}
		out.Geocoder = mq
		if out.Redis != nil {
			var obs geocode.Observer
			if metrics != nil {
				obs = metrics
			}
			out.Geocoder = geocode.NewCached(log, mq, out.Redis, cfg.GeocodeCacheTTL, obs)
		}
	} else {
		log.Warn("GEOCODER_API_KEY not set; bootcamps are stored without coordinates")
	}

	// SendGrid
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		mailer, err := sendgrid.New(log, cfg.SendGrid())
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid: %w", err)
		}
		out.Mailer = mailer
	}

	// Photos
	photos, err := resolvePhotoStore(ctx, log, cfg.Photos())
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Photos = photos

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

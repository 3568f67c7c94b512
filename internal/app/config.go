package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/devcamper-backend/internal/data/db"
	"github.com/yungbote/devcamper-backend/internal/observability"
	"github.com/yungbote/devcamper-backend/internal/platform/geocode"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/sendgrid"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

// BaseConfig is the logging and database subset of Config. The seeder loads only
// this part so it runs without the API's secrets.
type BaseConfig struct {
	LogMode      string `env:"LOG_MODE" envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL"`
	LogRedaction bool   `env:"LOG_REDACTION_ENABLED" envDefault:"true"`
	LogHashSalt  string `env:"LOG_HASH_SALT"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"devcamper"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"devcamper.db"`
}

// LoadBaseConfig parses only the logging and database settings.
func LoadBaseConfig() (BaseConfig, error) {
	base, err := env.ParseAs[BaseConfig]()
	if err != nil {
		return BaseConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return base, nil
}

type Config struct {
	Port string `env:"PORT" envDefault:"5000"`

	BaseConfig

	JWTSecret           string        `env:"JWT_SECRET,notEmpty"`
	JWTExpire           time.Duration `env:"JWT_EXPIRE" envDefault:"720h"`
	JWTCookieExpireDays int           `env:"JWT_COOKIE_EXPIRE_DAYS" envDefault:"30"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`

	FileUploadPath string `env:"FILE_UPLOAD_PATH" envDefault:"./public/uploads"`
	MaxFileUpload  int64  `env:"MAX_FILE_UPLOAD" envDefault:"1000000"`
	PhotoStorage   string `env:"PHOTO_STORAGE" envDefault:"local"`
	PhotoGCSBucket string `env:"PHOTO_GCS_BUCKET"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	GeocoderBaseURL    string        `env:"GEOCODER_BASE_URL" envDefault:"https://www.mapquestapi.com"`
	GeocoderAPIKey     string        `env:"GEOCODER_API_KEY"`
	GeocoderTimeout    time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"10s"`
	GeocoderMaxRetries int           `env:"GEOCODER_MAX_RETRIES" envDefault:"2"`
	GeocodeCacheTTL    time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"168h"`

	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridBaseURL   string `env:"SENDGRID_BASE_URL"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME" envDefault:"DevCamper"`
	SendGridReplyTo   string `env:"SENDGRID_REPLY_TO"`
	SendGridSandbox   bool   `env:"SENDGRID_SANDBOX" envDefault:"false"`

	MetricsEnabled        bool          `env:"METRICS_ENABLED" envDefault:"false"`
	MetricsScrapeInterval time.Duration `env:"METRICS_SCRAPE_INTERVAL" envDefault:"15s"`

	OtelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OtelServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"devcamper-api"`
	OtelEnvironment string  `env:"OTEL_ENVIRONMENT" envDefault:"development"`
	OtelVersion     string  `env:"OTEL_SERVICE_VERSION"`
	OtelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	OtelInsecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	OtelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LoadConfig parses the process environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.MaxFileUpload <= 0 {
		return fmt.Errorf("MAX_FILE_UPLOAD must be positive")
	}
	return nil
}

func (c Config) Production() bool {
	return strings.EqualFold(c.LogMode, "production")
}

func (c BaseConfig) Logging() logger.Options {
	return logger.Options{
		Mode:     c.LogMode,
		Level:    c.LogLevel,
		Redact:   c.LogRedaction,
		HashSalt: c.LogHashSalt,
	}
}

func (c BaseConfig) Database() db.Config {
	return db.Config{
		Driver:     c.DBDriver,
		Host:       c.PostgresHost,
		Port:       c.PostgresPort,
		User:       c.PostgresUser,
		Password:   c.PostgresPassword,
		Name:       c.PostgresName,
		SSLMode:    c.PostgresSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

func (c Config) Photos() storage.Config {
	return storage.Config{
		Mode:      storage.Mode(c.PhotoStorage),
		LocalDir:  c.FileUploadPath,
		GCSBucket: c.PhotoGCSBucket,
	}
}

func (c Config) Geocoder() geocode.Config {
	return geocode.Config{
		BaseURL:    c.GeocoderBaseURL,
		APIKey:     c.GeocoderAPIKey,
		Timeout:    c.GeocoderTimeout,
		MaxRetries: c.GeocoderMaxRetries,
	}
}

func (c Config) SendGrid() sendgrid.Config {
	return sendgrid.Config{
		APIKey:     c.SendGridAPIKey,
		BaseURL:    c.SendGridBaseURL,
		FromEmail:  c.SendGridFromEmail,
		FromName:   c.SendGridFromName,
		ReplyTo:    c.SendGridReplyTo,
		Sandbox:    c.SendGridSandbox,
		MaxRetries: 2,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.OtelServiceName,
		Environment: c.OtelEnvironment,
		Version:     c.OtelVersion,
		Endpoint:    c.OtelEndpoint,
		Headers:     observability.ParseHeaders(c.OtelHeaders),
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig captures all tunable parameters for the API process. Values
// load from environment variables with defaults sane enough to run locally.
type ServerConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisGeoKey   string

	KafkaBrokers       []string
	KafkaLocationTopic string
	KafkaEventTopic    string

	PGDSN string

	// notify strategy: ws, webhook, or noop
	NotifyMode      string
	WebhookEndpoint string

	ServiceFee      int64
	FlatErrandPrice int64

	DefaultSpeedMps float64
	AssignTopN      int
	OSRMEndpoint    string
	ETACacheTTL     time.Duration

	StripeKey string

	LogLevel      string
	RunMigrations bool
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:           ":8080",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       10 * time.Second,
		IdleTimeout:        120 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		RedisGeoKey:        "couriers_geo",
		KafkaLocationTopic: "courier-locations",
		KafkaEventTopic:    "entity-events",
		NotifyMode:         "ws",
		ServiceFee:         200,
		FlatErrandPrice:    2000,
		DefaultSpeedMps:    10,
		AssignTopN:         8,
		ETACacheTTL:        30 * time.Second,
		LogLevel:           "info",
	}
}

func LoadServerConfig() (ServerConfig, error) {
	cfg := defaultServerConfig()
	var errs []error

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.IdleTimeout, "HTTP_IDLE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	setStringFromEnv(&cfg.RedisGeoKey, "REDIS_GEO_KEY")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaLocationTopic, "KAFKA_LOCATION_TOPIC")
	setStringFromEnv(&cfg.KafkaEventTopic, "KAFKA_EVENT_TOPIC")

	cfg.PGDSN = os.Getenv("PG_DSN")

	setStringFromEnv(&cfg.NotifyMode, "NOTIFY_MODE")
	cfg.WebhookEndpoint = strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_ENDPOINT"))

	setInt64FromEnv(&cfg.ServiceFee, "PRICING_SERVICE_FEE", &errs)
	setInt64FromEnv(&cfg.FlatErrandPrice, "PRICING_FLAT_ERRAND", &errs)

	setFloatFromEnv(&cfg.DefaultSpeedMps, "ASSIGN_DEFAULT_SPEED_MPS", &errs)
	setIntFromEnv(&cfg.AssignTopN, "ASSIGN_TOP_N", &errs)
	cfg.OSRMEndpoint = strings.TrimSpace(os.Getenv("OSRM_ENDPOINT"))
	setDurationFromEnv(&cfg.ETACacheTTL, "ETA_CACHE_TTL", &errs)

	cfg.StripeKey = os.Getenv("STRIPE_API_KEY")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	cfg.RunMigrations = strings.EqualFold(os.Getenv("MIGRATE"), "true")

	switch cfg.NotifyMode {
	case "ws", "webhook", "noop":
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_MODE must be ws, webhook, or noop"))
	}
	if cfg.NotifyMode == "webhook" && cfg.WebhookEndpoint == "" {
		errs = append(errs, fmt.Errorf("NOTIFY_WEBHOOK_ENDPOINT required for webhook mode"))
	}
	if cfg.AssignTopN <= 0 {
		errs = append(errs, fmt.Errorf("ASSIGN_TOP_N must be > 0"))
	}
	if cfg.ServiceFee < 0 {
		errs = append(errs, fmt.Errorf("PRICING_SERVICE_FEE must be >= 0"))
	}

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setFloatFromEnv(target *float64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = f
	}
}

func setIntFromEnv(target *int, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setInt64FromEnv(target *int64, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = i
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/nexus/pkg/jwtx"
)

const (
	KeySourceFile      = "file"
	KeySourceEphemeral = "ephemeral"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	AuditSinkStore = "store"
	AuditSinkRedis = "redis"
	AuditSinkBolt  = "bolt"
	AuditSinkLog   = "log"
)

type Config struct {
	// Token identity and signing keys.
	Issuer         string `env:"AUTH_ISSUER" envDefault:"nexus-auth"`
	Algorithm      string `env:"AUTH_ALGORITHM" envDefault:"EdDSA"`
	KeySource      string `env:"AUTH_KEY_SOURCE" envDefault:"ephemeral"`
	PrivateKeyFile string `env:"AUTH_PRIVATE_KEY_FILE"`
	PublicKeyFile  string `env:"AUTH_PUBLIC_KEY_FILE"`
	KeyID          string `env:"AUTH_KEY_ID"`
	RSABits        int    `env:"AUTH_RSA_BITS"`
	NumKeys        int    `env:"AUTH_NUM_KEYS" envDefault:"1"`

	AccessTokenTTL    time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshExpiryDays int           `env:"NEXUS_REFRESH_TOKEN_EXPIRY_DAYS" envDefault:"7"`

	// Storage.
	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL"`
	PepperFile     string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`

	// Audit pipeline.
	AuditSink          string `env:"AUDIT_SINK" envDefault:"store"`
	AuditRedisAddr     string `env:"AUDIT_REDIS_ADDR" envDefault:"localhost:6379"`
	AuditRedisPassword string `env:"AUDIT_REDIS_PASSWORD"`
	AuditRedisDB       int    `env:"AUDIT_REDIS_DB" envDefault:"0"`
	AuditRedisStream   string `env:"AUDIT_REDIS_STREAM" envDefault:"nexus:audit"`
	AuditBoltFile      string `env:"AUDIT_BOLT_FILE" envDefault:"audit.db"`
	AuditQueueSize     int    `env:"AUDIT_QUEUE_SIZE" envDefault:"1024"`
	AuditWorkers       int    `env:"AUDIT_WORKERS" envDefault:"2"`

	CookieSecure bool   `env:"NEXUS_COOKIE_SECURE" envDefault:"false"`
	CookieDomain string `env:"NEXUS_COOKIE_DOMAIN"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads a .env file when present and then the process
// environment. Variables already set in the environment win.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// RefreshTTL is the lifetime of a refresh credential.
func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshExpiryDays) * 24 * time.Hour
}

func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must not be empty"))
	}

	switch c.Algorithm {
	case jwtx.AlgorithmRS256, jwtx.AlgorithmEdDSA:
	default:
		errs = append(errs, fmt.Errorf("AUTH_ALGORITHM must be RS256 or EdDSA, got %q", c.Algorithm))
	}

	switch c.KeySource {
	case KeySourceEphemeral:
	case KeySourceFile:
		if c.PrivateKeyFile == "" {
			errs = append(errs, errors.New("AUTH_PRIVATE_KEY_FILE is required when AUTH_KEY_SOURCE=file"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_KEY_SOURCE must be file or ephemeral, got %q", c.KeySource))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver))
	}

	switch c.AuditSink {
	case AuditSinkStore, AuditSinkLog:
	case AuditSinkRedis:
		if c.AuditRedisAddr == "" {
			errs = append(errs, errors.New("AUDIT_REDIS_ADDR is required for the redis audit sink"))
		}
	case AuditSinkBolt:
		if c.AuditBoltFile == "" {
			errs = append(errs, errors.New("AUDIT_BOLT_FILE is required for the bolt audit sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUDIT_SINK must be store, redis, bolt or log, got %q", c.AuditSink))
	}

	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_ACCESS_TOKEN_TTL must be positive"))
	}
	if c.RefreshExpiryDays <= 0 {
		errs = append(errs, errors.New("NEXUS_REFRESH_TOKEN_EXPIRY_DAYS must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}

	return errors.Join(errs...)
}

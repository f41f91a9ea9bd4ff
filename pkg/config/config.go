package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WEDSTAY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "WEDSTAY_APP_ENV"
	EnvPort      = "WEDSTAY_APP_PORT"
	EnvDBDSN     = "WEDSTAY_DB_DSN"
	EnvDBHost    = "WEDSTAY_DB_HOST"
	EnvDBUser    = "WEDSTAY_DB_USER"
	EnvDBName    = "WEDSTAY_DB_NAME"
	EnvRedisURL  = "WEDSTAY_REDIS_URL"
	EnvJWTSecret = "WEDSTAY_JWT_SECRET"
	EnvJWTIssuer = "WEDSTAY_JWT_ISSUER"
	EnvJWTExp    = "WEDSTAY_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Aggregator   AggregatorConfig
	Reconcile    ReconcileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WEDSTAY_APP_ENV" required:"true"`
	Port         string `envconfig:"WEDSTAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WEDSTAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WEDSTAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WEDSTAY_DB_DSN"`
	Driver string `envconfig:"WEDSTAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WEDSTAY_DB_HOST"`
	LegacyPort     int    `envconfig:"WEDSTAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WEDSTAY_DB_USER"`
	LegacyPassword string `envconfig:"WEDSTAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"WEDSTAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"WEDSTAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WEDSTAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WEDSTAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WEDSTAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WEDSTAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WEDSTAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WEDSTAY_REDIS_ADDR"`
	Password     string        `envconfig:"WEDSTAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"WEDSTAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WEDSTAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WEDSTAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WEDSTAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WEDSTAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WEDSTAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WEDSTAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WEDSTAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WEDSTAY_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WEDSTAY_AUTO_MIGRATE" default:"false"`
}

// AggregatorConfig tunes the counter-event pipeline.
type AggregatorConfig struct {
	IdempotencyTTL time.Duration `envconfig:"WEDSTAY_AGGREGATOR_IDEMPOTENCY_TTL" default:"720h"`
}

// ReconcileConfig controls the counter reconciliation worker.
type ReconcileConfig struct {
	Interval time.Duration `envconfig:"WEDSTAY_RECONCILE_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"WEDSTAY_RECONCILE_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

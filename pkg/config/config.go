package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PDV"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "PDV_APP_ENV"
	EnvPort     = "PDV_APP_PORT"
	EnvLogLevel = "PDV_LOG_LEVEL"

	EnvDBDSN      = "PDV_DB_DSN"
	EnvDBHost     = "PDV_DB_HOST"
	EnvDBUser     = "PDV_DB_USER"
	EnvDBName     = "PDV_DB_NAME"
	EnvRedisAddr  = "PDV_REDIS_ADDR"
	EnvJWTSecret  = "PDV_JWT_SECRET"
	EnvJWTIssuer  = "PDV_JWT_ISSUER"
	EnvJWTExpMins = "PDV_JWT_EXPIRATION_MINUTES"

	EnvAllowZeroQuantity = "PDV_RULES_ALLOW_ZERO_QUANTITY"
	EnvAllowZeroPrice    = "PDV_RULES_ALLOW_ZERO_PRICE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Rules        RulesConfig
	Workspace    WorkspaceConfig
	Cron         CronConfig
	CORS         CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DemoMode reports whether the service runs against in-memory fixtures.
func (c *Config) DemoMode() bool {
	if c.FeatureFlags.ForceDemo {
		return true
	}
	return !c.DB.Configured()
}

type AppConfig struct {
	Env          string `envconfig:"PDV_APP_ENV" default:"dev"`
	Port         string `envconfig:"PDV_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PDV_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PDV_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PDV_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PDV_DB_DSN"`
	Driver string `envconfig:"PDV_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PDV_DB_HOST"`
	LegacyPort     int    `envconfig:"PDV_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PDV_DB_USER"`
	LegacyPassword string `envconfig:"PDV_DB_PASSWORD"`
	LegacyName     string `envconfig:"PDV_DB_NAME"`
	LegacySSLMode  string `envconfig:"PDV_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PDV_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PDV_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PDV_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PDV_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"PDV_DB_SLOW_QUERY" default:"200ms"`
}

// Configured reports whether a database has been configured at all.
func (db DBConfig) Configured() bool {
	return strings.TrimSpace(db.DSN) != ""
}

type RedisConfig struct {
	URL            string        `envconfig:"PDV_REDIS_URL"`
	Address        string        `envconfig:"PDV_REDIS_ADDR"`
	Password       string        `envconfig:"PDV_REDIS_PASSWORD"`
	DB             int           `envconfig:"PDV_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"PDV_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"PDV_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"PDV_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"PDV_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"PDV_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"PDV_REDIS_IDEMPOTENCY_TTL" default:"24h"`
}

// Configured reports whether a redis endpoint was provided.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"PDV_JWT_SECRET" default:"dev-secret-change-me"`
	Issuer            string `envconfig:"PDV_JWT_ISSUER" default:"elite-acai-pdv"`
	ExpirationMinutes int    `envconfig:"PDV_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"PDV_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"PDV_AUTO_MIGRATE" default:"false"`
	ForceDemo      bool `envconfig:"PDV_FORCE_DEMO" default:"false"`
	AllowAnonymous bool `envconfig:"PDV_ALLOW_ANONYMOUS" default:"false"`
}

// RulesConfig holds the item validation rules applied to the working cart.
type RulesConfig struct {
	AllowZeroQuantity bool `envconfig:"PDV_RULES_ALLOW_ZERO_QUANTITY" default:"false"`
	AllowZeroPrice    bool `envconfig:"PDV_RULES_ALLOW_ZERO_PRICE" default:"false"`
}

type WorkspaceConfig struct {
	CartTTL time.Duration `envconfig:"PDV_WORKSPACE_CART_TTL" default:"12h"`
}

type CronConfig struct {
	Interval     time.Duration `envconfig:"PDV_CRON_INTERVAL" default:"15m"`
	StaleSaleAge time.Duration `envconfig:"PDV_CRON_STALE_SALE_AGE" default:"6h"`
	LockTTL      time.Duration `envconfig:"PDV_CRON_LOCK_TTL" default:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PDV_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:pdv.db?cache=shared"
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

	// nothing configured: the api falls back to demo fixtures
	if len(missing) == len(legacyDBEnvVars) {
		return nil
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

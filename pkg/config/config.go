package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Catalog   CatalogConfig
	Search    SearchConfig
	Square    SquareConfig
	Gate      GateConfig
	RateLimit RateLimitConfig
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
	Env          string `envconfig:"SHOPORA_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPORA_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SHOPORA_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPORA_DB_DSN"`
	Driver string `envconfig:"SHOPORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPORA_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPORA_DB_USER"`
	LegacyPassword string `envconfig:"SHOPORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPORA_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOPORA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOPORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOPORA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOPORA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPORA_ARGON_KEY_LEN" default:"32"`
}

type CatalogConfig struct {
	QueryRetries int           `envconfig:"SHOPORA_CATALOG_QUERY_RETRIES" default:"2"`
	RetryBackoff time.Duration `envconfig:"SHOPORA_CATALOG_RETRY_BACKOFF" default:"150ms"`
}

type SearchConfig struct {
	HistoryLimit int `envconfig:"SHOPORA_SEARCH_HISTORY_LIMIT" default:"10"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"SHOPORA_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"SHOPORA_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"SHOPORA_SQUARE_LOCATION_ID"`
	RedirectURL string `envconfig:"SHOPORA_SQUARE_REDIRECT_URL"`
	ThemeColor  string `envconfig:"SHOPORA_SQUARE_THEME_COLOR" default:"#4f46e5"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPORA_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"SHOPORA_RL_LOGIN_IP_LIMIT" default:"10"`
	LoginEmailLimit    int           `envconfig:"SHOPORA_RL_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"SHOPORA_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"SHOPORA_RL_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"SHOPORA_RL_REGISTER_EMAIL_LIMIT" default:"3"`
}

type GateConfig struct {
	LoginPath   string `envconfig:"SHOPORA_GATE_LOGIN_PATH" default:"/login"`
	LandingPath string `envconfig:"SHOPORA_GATE_LANDING_PATH" default:"/"`
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

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "PEOPLEDESK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "PEOPLEDESK_APP_ENV"
	EnvDBDSN  = "PEOPLEDESK_DB_DSN"
	EnvDBHost = "PEOPLEDESK_DB_HOST"
	EnvDBUser = "PEOPLEDESK_DB_USER"
	EnvDBName = "PEOPLEDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Avatar        AvatarConfig
	Upload        UploadConfig
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
	Env          string `envconfig:"PEOPLEDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"PEOPLEDESK_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"PEOPLEDESK_APP_BASE_URL" default:""`
	LogLevel     string `envconfig:"PEOPLEDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PEOPLEDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PEOPLEDESK_DB_DSN"`
	Driver string `envconfig:"PEOPLEDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PEOPLEDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"PEOPLEDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PEOPLEDESK_DB_USER"`
	LegacyPassword string `envconfig:"PEOPLEDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"PEOPLEDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"PEOPLEDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PEOPLEDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PEOPLEDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PEOPLEDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PEOPLEDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PEOPLEDESK_REDIS_URL"`
	Address      string        `envconfig:"PEOPLEDESK_REDIS_ADDR"`
	Password     string        `envconfig:"PEOPLEDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PEOPLEDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PEOPLEDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PEOPLEDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PEOPLEDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PEOPLEDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PEOPLEDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret        string        `envconfig:"PEOPLEDESK_JWT_SECRET" required:"true"`
	Issuer        string        `envconfig:"PEOPLEDESK_JWT_ISSUER" required:"true"`
	UserTokenTTL  time.Duration `envconfig:"PEOPLEDESK_JWT_USER_TOKEN_TTL" default:"24h"`
	StaffTokenTTL time.Duration `envconfig:"PEOPLEDESK_JWT_STAFF_TOKEN_TTL" default:"1h"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PEOPLEDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PEOPLEDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PEOPLEDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PEOPLEDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PEOPLEDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PEOPLEDESK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PEOPLEDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PEOPLEDESK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PEOPLEDESK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PEOPLEDESK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PEOPLEDESK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"PEOPLEDESK_GCS_BUCKET_NAME"`
}

type AvatarConfig struct {
	PlaceholderBaseURL string `envconfig:"PEOPLEDESK_AVATAR_PLACEHOLDER_BASE_URL" default:"https://placehold.co/150x150/E2D9FF/6842FF"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"PEOPLEDESK_MAX_UPLOAD_MB" default:"20"`
}

// MaxUploadBytes returns the configured per-file upload ceiling in bytes.
func (u UploadConfig) MaxUploadBytes() int64 {
	mb := u.MaxUploadMB
	if mb <= 0 {
		mb = 20
	}
	return int64(mb) * 1024 * 1024
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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

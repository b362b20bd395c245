package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "bakeshop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BAKESHOP_DB_DSN"
	EnvDBHost = "BAKESHOP_DB_HOST"
	EnvDBUser = "BAKESHOP_DB_USER"
	EnvDBName = "BAKESHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	FeatureFlags FeatureFlagsConfig
	Retention    RetentionConfig
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
	Env          string `envconfig:"BAKESHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"BAKESHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BAKESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAKESHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BAKESHOP_DB_DSN"`
	Driver string `envconfig:"BAKESHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BAKESHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"BAKESHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BAKESHOP_DB_USER"`
	LegacyPassword string `envconfig:"BAKESHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"BAKESHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"BAKESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAKESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAKESHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAKESHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAKESHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAKESHOP_REDIS_URL"`
	Address      string        `envconfig:"BAKESHOP_REDIS_ADDR"`
	Password     string        `envconfig:"BAKESHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAKESHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAKESHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAKESHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAKESHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAKESHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAKESHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BAKESHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BAKESHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BAKESHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type SMTPConfig struct {
	Host        string `envconfig:"BAKESHOP_SMTP_HOST"`
	Port        string `envconfig:"BAKESHOP_SMTP_PORT" default:"587"`
	Username    string `envconfig:"BAKESHOP_SMTP_USERNAME"`
	Password    string `envconfig:"BAKESHOP_SMTP_PASSWORD"`
	FromAddress string `envconfig:"BAKESHOP_SMTP_FROM"`
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.FromAddress != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BAKESHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BAKESHOP_AUTO_MIGRATE" default:"false"`
}

type RetentionConfig struct {
	NotificationTTL time.Duration `envconfig:"BAKESHOP_NOTIFICATION_RETENTION_TTL" default:"2160h"`
	SweepInterval   time.Duration `envconfig:"BAKESHOP_NOTIFICATION_SWEEP_INTERVAL" default:"1h"`
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

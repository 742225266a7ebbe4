package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LogConfig struct {
	Level string
}

// PostgresConfig with an empty DSN selects the in-memory user store.
type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StoreConfig selects where the token blacklist and reset tokens live.
// Sessions are always kept in process.
type StoreConfig struct {
	Backend   string
	KeyPrefix string
}

type BootstrapAdminConfig struct {
	Username string
	Email    string
	Password string
}

type SecurityConfig struct {
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MaxSessions     int
	ResetTokenTTL   time.Duration
	// ExpiringSoon is the remaining lifetime under which an access token is
	// reported as expiring soon.
	ExpiringSoon    time.Duration
	CleanupSchedule string
	BootstrapAdmin  BootstrapAdminConfig
}

type AppConfig struct {
	Environment      string
	Log              LogConfig
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Store            StoreConfig
	Security         SecurityConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.IsProduction() && strings.TrimSpace(c.Security.JWTSecret) == "" {
		errs = append(errs, errors.New("security.jwtsecret is required in production"))
	}
	if c.Security.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("security.maxsessions must be positive, got %d", c.Security.MaxSessions))
	}
	if c.Security.AccessTokenTTL <= 0 || c.Security.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token ttls must be positive"))
	}
	if c.Security.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("security.resettokenttl must be positive"))
	}
	if c.Security.ExpiringSoon < 0 {
		errs = append(errs, errors.New("security.expiringsoon must not be negative"))
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Store.Backend))
	}
	return errors.Join(errs...)
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("FORESTPEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.keyprefix", "forestpest:auth:")

	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.jwtissuer", "forestpest")
	v.SetDefault("security.accesstokenttl", "24h")
	v.SetDefault("security.refreshtokenttl", "168h") // 7 days
	v.SetDefault("security.maxsessions", 5)
	v.SetDefault("security.resettokenttl", "1h")
	v.SetDefault("security.expiringsoon", "30m")
	v.SetDefault("security.cleanupschedule", "0 0 * * * *")
	v.SetDefault("security.bootstrapadmin.username", "admin")
	v.SetDefault("security.bootstrapadmin.email", "admin@forestpest.local")
	v.SetDefault("security.bootstrapadmin.password", "")

	v.SetDefault("allowcorsorigins", []string{"*"})
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite / postgres
	Path        string `mapstructure:"path"`
	Host        string `mapstructure:"host"`
	Port        string `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	LogMode     bool   `mapstructure:"log_mode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type SessionConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	AuthURL      string `mapstructure:"auth_url"`
	TokenURL     string `mapstructure:"token_url"`
	TokenInfoURL string `mapstructure:"tokeninfo_url"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
	RevokeURL    string `mapstructure:"revoke_url"`
}

type StateConfig struct {
	Store      string `mapstructure:"store"` // memory / redis
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	RedisURL   string `mapstructure:"redis_url"`
}

type AuthConfig struct {
	LocalLogin bool `mapstructure:"local_login"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json / console
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	State    StateConfig    `mapstructure:"state"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "catalog.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "catalog")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_mode", false)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("session.secret", "")
	v.SetDefault("session.issuer", "gin-catalog")
	v.SetDefault("session.ttl_hours", 24)

	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.redirect_url", "postmessage")
	v.SetDefault("oauth.auth_url", "https://accounts.google.com/o/oauth2/auth")
	v.SetDefault("oauth.token_url", "https://oauth2.googleapis.com/token")
	v.SetDefault("oauth.tokeninfo_url", "https://www.googleapis.com/oauth2/v1/tokeninfo")
	v.SetDefault("oauth.userinfo_url", "https://www.googleapis.com/oauth2/v1/userinfo")
	v.SetDefault("oauth.revoke_url", "https://oauth2.googleapis.com/revoke")

	v.SetDefault("state.store", "memory")
	v.SetDefault("state.ttl_minutes", 10)
	v.SetDefault("state.redis_url", "")

	v.SetDefault("auth.local_login", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from path (optional) and CATALOG_* environment
// variables, e.g. CATALOG_SERVER_PORT=9000 or CATALOG_SESSION_SECRET=...
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// a missing file is fine; defaults and environment still apply
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session.secret is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.State.Store {
	case "memory":
	case "redis":
		if c.State.RedisURL == "" {
			return errors.New("state.redis_url is required for the redis state store")
		}
	default:
		return fmt.Errorf("unsupported state store %q", c.State.Store)
	}
	return nil
}

package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	PublicURL   string   `mapstructure:"public_url"`
	Production  bool     `mapstructure:"production"`
	CorsOrigins []string `mapstructure:"cors_origins"`
	RateLimit   int      `mapstructure:"rate_limit"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AdminConfig provisions an admin account at boot when both fields are set.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ChatConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	ImageModel   string        `mapstructure:"image_model"`
	HistoryLimit int           `mapstructure:"history_limit"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RedisURL     string        `mapstructure:"redis_url"`
	HistoryTTL   time.Duration `mapstructure:"history_ttl"`
}

type PortfolioConfig struct {
	SeedFile string `mapstructure:"seed_file"`
}

type LogConfig struct {
	Spec string `mapstructure:"spec"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "6835")
	v.SetDefault("server.public_url", "http://localhost:6835")
	v.SetDefault("server.production", false)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 100)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "folio.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("session.ttl", "168h")

	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")

	v.SetDefault("chat.api_key", "")
	v.SetDefault("chat.model", "gemini-2.5-flash")
	v.SetDefault("chat.image_model", "imagen-3.0-generate-002")
	v.SetDefault("chat.history_limit", 20)
	v.SetDefault("chat.rate_limit", 10)
	v.SetDefault("chat.redis_url", "")
	v.SetDefault("chat.history_ttl", "24h")

	v.SetDefault("portfolio.seed_file", "seed/portfolio.yaml")

	v.SetDefault("log.spec", "<root>=INFO")
}

// Load reads configuration from defaults, an optional config file, a local
// .env file and FOLIO_* environment variables, in increasing precedence.
func Load(configFile string) (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "reading config file %q", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Annotate(err, "decoding config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return errors.NotValidf("database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.NotValidf("empty database dsn")
	}
	if c.Session.TTL <= 0 {
		return errors.NotValidf("session ttl %v", c.Session.TTL)
	}
	if c.Chat.HistoryLimit < 0 {
		return errors.NotValidf("chat history limit %d", c.Chat.HistoryLimit)
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

// ChatEnabled reports whether an API key is configured for the chat proxy.
func (c *Config) ChatEnabled() bool {
	return c.Chat.APIKey != "" && c.Chat.APIKey != "YOUR_GEMINI_API_KEY_HERE"
}

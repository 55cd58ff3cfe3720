package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config maps the application configuration. The mapstructure tags are
// used by Viper to bind keys from the config file or from LINKSAVER_*
// environment variables onto the struct fields.
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"server"`

	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenHours    int    `mapstructure:"token_hours"`
		SecureCookies bool   `mapstructure:"secure_cookies"`
	} `mapstructure:"auth"`

	Fetch struct {
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		UserAgent      string `mapstructure:"user_agent"`
	} `mapstructure:"fetch"`

	Summary struct {
		APIKey          string `mapstructure:"api_key"`
		BaseURL         string `mapstructure:"base_url"`
		Model           string `mapstructure:"model"`
		MaxContentBytes int    `mapstructure:"max_content_bytes"`
	} `mapstructure:"summary"`
}

// LoadConfig loads the application configuration using Viper. It looks
// for a config.yaml in ./configs or the project root, applies defaults
// for anything missing, and lets LINKSAVER_* environment variables
// override file values (e.g. LINKSAVER_AUTH_JWT_SECRET).
func LoadConfig() (*Config, error) {
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.path", "linksaver.db")
	viper.SetDefault("auth.jwt_secret", "linksaver-dev-secret-change-in-production")
	viper.SetDefault("auth.token_hours", 24)
	viper.SetDefault("auth.secure_cookies", false)
	viper.SetDefault("fetch.timeout_seconds", 10)
	viper.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; LinkSaver/1.0)")
	viper.SetDefault("summary.api_key", "")
	viper.SetDefault("summary.base_url", "https://api.openai.com/v1")
	viper.SetDefault("summary.model", "gpt-3.5-turbo")
	viper.SetDefault("summary.max_content_bytes", 4000)

	viper.SetEnvPrefix("LINKSAVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine, defaults and env cover everything.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

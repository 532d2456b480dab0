package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys like auth.jwt_secret to
// CORALDB_AUTH_JWT_SECRET.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Config holds the server configuration, loaded from an optional YAML
// file with CORALDB_* environment variable overrides.
type Config struct {
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`

	TLS struct {
		CertFile string `mapstructure:"cert_file"`
		KeyFile  string `mapstructure:"key_file"`
	} `mapstructure:"tls"`

	Identity struct {
		Name  string `mapstructure:"name"`
		Email string `mapstructure:"email"`
	} `mapstructure:"identity"`

	Auth struct {
		Enabled    bool   `mapstructure:"enabled"`
		JWTSecret  string `mapstructure:"jwt_secret"`
		Issuer     string `mapstructure:"issuer"`
		Audience   string `mapstructure:"audience"`
		NameClaim  string `mapstructure:"name_claim"`
		EmailClaim string `mapstructure:"email_claim"`
	} `mapstructure:"auth"`
}

// LoadConfig reads the configuration from path. An empty path yields
// the defaults, still honoring environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("port", 3306)
	v.SetDefault("data_dir", "")
	v.SetDefault("identity.name", "CoralDB Server")
	v.SetDefault("identity.email", "server@coraldb.local")

	v.SetEnvPrefix("CORALDB")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return nil, fmt.Errorf("tls.cert_file and tls.key_file must be set together")
	}

	return &cfg, nil
}

// AuthConfig converts the auth section into the server's AuthConfig,
// or nil when authentication is disabled.
func (cfg *Config) AuthConfig() *AuthConfig {
	if !cfg.Auth.Enabled {
		return nil
	}
	return &AuthConfig{
		Enabled:    true,
		JWTSecret:  cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		NameClaim:  cfg.Auth.NameClaim,
		EmailClaim: cfg.Auth.EmailClaim,
	}
}

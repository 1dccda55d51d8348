package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DevJWTSecret is the clearly-labelled development fallback for the token
// signing secret. Validate rejects it outside the development environment.
const DevJWTSecret = "dev-only-insecure-jwt-secret"

// ServerConfig holds all configuration for the server.
type ServerConfig struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	Environment string `mapstructure:"ENVIRONMENT"` // "development" or "production"

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	JWTSecretKey string `mapstructure:"JWT_SECRET_KEY"`

	// ClientURL is the single origin the handshake terminal pages message
	// back to. It is configuration, never reflected from request input.
	ClientURL string `mapstructure:"CLIENT_URL"`

	// Google OAuth credentials. Leaving them unset disables federated login
	// without preventing startup.
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `mapstructure:"GOOGLE_CALLBACK_URL"`
}

// AuthCapabilities is the startup-validated view of what authentication paths
// this process can serve. Both the handshake controller (to reject attempts
// early) and the capability-probe endpoint consult it.
type AuthCapabilities struct {
	FederatedLoginEnabled bool   `json:"configured"`
	CallbackURL           string `json:"callbackUrl"`
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/outgo/")
	v.AddConfigPath("$HOME/.outgo")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only resolves keys viper already knows about. Keys
	// without a default below must be bound explicitly or Unmarshal
	// never sees their environment values.
	for _, key := range []string{"MONGO_URI", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("MONGO_DB_NAME", "outgo")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "outgo-server")
	v.SetDefault("JWT_SECRET_KEY", DevJWTSecret)
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars carry the load.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}

// Validate enforces the startup-fatal invariants: the persistence connection
// string must be present, and a production process must not run on the dev
// signing secret. Missing Google credentials are legal (federated login is
// simply disabled).
func (c *ServerConfig) Validate() error {
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is required")
	}
	if c.Environment != "development" && (c.JWTSecretKey == "" || c.JWTSecretKey == DevJWTSecret) {
		return errors.New("JWT_SECRET_KEY must be set to a non-default value outside development")
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	return nil
}

// AuthCapabilities reports whether federated login can be served.
func (c *ServerConfig) AuthCapabilities() AuthCapabilities {
	enabled := c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleCallbackURL != ""
	caps := AuthCapabilities{FederatedLoginEnabled: enabled}
	if enabled {
		caps.CallbackURL = c.GoogleCallbackURL
	}
	return caps
}

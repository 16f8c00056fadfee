package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Provider exposes configuration values to the rest of the application.
// Handlers, stores and services depend on this interface rather than on the
// concrete Config so tests can supply their own values.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetTokenSecret() string
	GetTokenTTL() time.Duration
	GetBcryptCost() int

	GetDBDriver() string
	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string

	GetOAuthProviders() []OAuthProvider
	GetTracing() Tracing
}

// Tracing configures OpenTelemetry spans around the event bus.
type Tracing struct {
	Enabled     bool   `env:"PUBSUB_TRACING_ENABLED" envDefault:"false"`
	ServiceName string `env:"PUBSUB_TRACING_SERVICE_NAME" envDefault:"neuralfeed"`
	ZipkinURL   string `env:"PUBSUB_TRACING_ZIPKIN_URL" envDefault:"http://localhost:9411/api/v2/spans"`
}

// OAuthProvider holds the client registration for a federated sign-in provider.
type OAuthProvider struct {
	Name         string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr       string        `env:"APP_ADDR" envDefault:":8080"`
	AppBaseURL    string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"change-me-session-secret"`
	TokenSecret   string        `env:"TOKEN_SECRET" envDefault:"change-me-token-secret"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	DBDriver         string        `env:"DB_DRIVER" envDefault:"surreal"`
	DBURL            string        `env:"SURREAL_URL"`
	DBUser           string        `env:"SURREAL_USER"`
	DBPass           string        `env:"SURREAL_PASS"`
	DBNs             string        `env:"SURREAL_NS"`
	DBDb             string        `env:"SURREAL_DB"`
	DBQueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT" envDefault:"5s"`
	DBExecuteTimeout time.Duration `env:"DB_EXECUTE_TIMEOUT" envDefault:"10s"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"log"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailSender   string `env:"EMAIL_SENDER"`

	GoogleClientID     string   `env:"OAUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"OAUTH_GOOGLE_CLIENT_SECRET"`
	GoogleScopes       []string `env:"OAUTH_GOOGLE_SCOPES" envSeparator:","`
	GitHubClientID     string   `env:"OAUTH_GITHUB_CLIENT_ID"`
	GitHubClientSecret string   `env:"OAUTH_GITHUB_CLIENT_SECRET"`
	GitHubScopes       []string `env:"OAUTH_GITHUB_SCOPES" envSeparator:","`

	Tracing Tracing
}

// New loads configuration from the environment, reading a .env file first
// when one exists. It exits the process if the configuration is unusable.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load parses the current environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "memory":
	case "surreal":
		if c.DBURL == "" || c.DBNs == "" || c.DBDb == "" {
			return fmt.Errorf("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be a positive duration")
	}
	return nil
}

func (c *Config) GetAppAddr() string                 { return c.AppAddr }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetTokenSecret() string             { return c.TokenSecret }
func (c *Config) GetTokenTTL() time.Duration         { return c.TokenTTL }
func (c *Config) GetBcryptCost() int                 { return c.BcryptCost }
func (c *Config) GetDBDriver() string                { return c.DBDriver }
func (c *Config) GetDBURL() string                   { return c.DBURL }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetEmailProvider() string           { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string             { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string             { return c.EmailSender }
func (c *Config) GetTracing() Tracing                { return c.Tracing }

// GetOAuthProviders returns the providers that have complete credentials.
// Redirect URLs are derived from the base URL so they always match the
// callback route.
func (c *Config) GetOAuthProviders() []OAuthProvider {
	var providers []OAuthProvider
	if c.GoogleClientID != "" && c.GoogleClientSecret != "" {
		scopes := c.GoogleScopes
		if len(scopes) == 0 {
			scopes = []string{"openid", "email", "profile"}
		}
		providers = append(providers, OAuthProvider{
			Name:         "google",
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.AppBaseURL + "/api/auth/callback/google",
			Scopes:       scopes,
		})
	}
	if c.GitHubClientID != "" && c.GitHubClientSecret != "" {
		scopes := c.GitHubScopes
		if len(scopes) == 0 {
			scopes = []string{"read:user", "user:email"}
		}
		providers = append(providers, OAuthProvider{
			Name:         "github",
			ClientID:     c.GitHubClientID,
			ClientSecret: c.GitHubClientSecret,
			RedirectURL:  c.AppBaseURL + "/api/auth/callback/github",
			Scopes:       scopes,
		})
	}
	return providers
}

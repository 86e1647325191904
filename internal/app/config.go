package app

import (
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete storefront configuration, loadable from
// environment variables (STOREFRONT_ prefix), flags, or YAML config files.
type Config struct {
	APIURL       string        `default:"https://larek-api.nomoreparties.co/api/weblarek" usage:"Storefront API base URL" env:"API_URL" flag:"api-url"`
	ImageBaseURL string        `default:"https://larek-api.nomoreparties.co/content/weblarek" usage:"Prefix for product image paths" env:"IMAGE_BASE_URL" flag:"image-base-url"`
	Timeout      time.Duration `default:"10s" usage:"Storefront API request timeout"`
	Server       ServerConfig
	Graceful     GracefulConfig
}

// ServerConfig configures the development API server.
type ServerConfig struct {
	Addr        string   `default:"0.0.0.0:8080" usage:"API server listen address"`
	Prefix      string   `default:"/api/weblarek" usage:"Path the API is served under"`
	DatabaseURL string   `usage:"PostgreSQL connection URL; empty serves the catalog from memory" flag:"database-url"`
	SeedFile    string   `usage:"Catalog seed file (.json or .json.gz) for the in-memory store; empty uses the built-in catalog" flag:"seed-file"`
	CORSOrigins []string `default:"*" usage:"Origins allowed to call the API from a browser" flag:"cors-origins"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from command line args, environment
// variables and YAML config files and applies platform-specific defaults.
func LoadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STOREFRONT",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return errors.New("API URL is required: set STOREFRONT_API_URL")
	}
	if c.Server.Prefix != "" && !strings.HasPrefix(c.Server.Prefix, "/") {
		return errors.Errorf("server prefix %q must start with /", c.Server.Prefix)
	}
	c.Server.Prefix = strings.TrimSuffix(c.Server.Prefix, "/")
	return nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the STOREFRONT_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Server.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Server.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Server.Addr == "0.0.0.0:8080" {
		c.Server.Addr = "0.0.0.0:" + port
	}
}

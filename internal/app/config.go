package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the audit job configuration, loadable from environment
// variables (ORDERS_ prefix), flags, or YAML config files.
type Config struct {
	DatabaseURL   string   `yaml:"database_url" usage:"PostgreSQL connection URL (ORDERS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Customers     []string `yaml:"customers" usage:"Customer IDs to audit" flag:"customers"`
	FestivalOffer bool     `yaml:"festival_offer" default:"false" usage:"Apply the festival discount bonus when pricing" flag:"festival-offer"`
	Concurrency   int      `yaml:"concurrency" default:"4" usage:"Customers audited in parallel"`
	Migrate       bool     `yaml:"migrate" default:"true" usage:"Apply the schema before auditing"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "ORDERS",
		Files:     []string{"config.yaml", "/etc/order-engine/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set ORDERS_DATABASE_URL or DATABASE_URL")
	}
	if len(cfg.Customers) == 0 {
		return nil, errors.New("no customers to audit: set ORDERS_CUSTOMERS")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps the platform-provided DATABASE_URL onto the
// ORDERS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}

package config

import (
	"os"
	"strings"
	"time"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/discover"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "config file not found"), errors.CtxPath, path)
		}
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes, defaults and validates a TOML document.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate runs every section validator.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateDiscovery,
		validateRoots,
		validateExclude,
		validateWatch,
		validateOutput,
		validateHistory,
		validateObservability,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	defaults := discover.DefaultParams()
	if strings.TrimSpace(cfg.Discovery.FnAttributeName) == "" {
		cfg.Discovery.FnAttributeName = defaults.FnAttributeName
	}
	if strings.TrimSpace(cfg.Discovery.SchemaAttributeName) == "" {
		cfg.Discovery.SchemaAttributeName = defaults.SchemaAttributeName
	}
	if strings.TrimSpace(cfg.Discovery.ResponseAttributeName) == "" {
		cfg.Discovery.ResponseAttributeName = defaults.ResponseAttributeName
	}
	if cfg.Discovery.Workers <= 0 {
		cfg.Discovery.Workers = 1
	}

	if strings.TrimSpace(cfg.Paths) == "" && len(cfg.Roots) == 0 {
		cfg.Paths = "./src"
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{"target", ".git"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RateLimit == 0 {
		cfg.Watch.RateLimit = 1
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "text"
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".utoipauto/history.db"
	}
	if strings.TrimSpace(cfg.History.ProjectKey) == "" {
		cfg.History.ProjectKey = "default"
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = 50
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}
}

func normalize(cfg *Config) {
	cfg.Discovery.FnAttributeName = strings.TrimSpace(cfg.Discovery.FnAttributeName)
	cfg.Discovery.SchemaAttributeName = strings.TrimSpace(cfg.Discovery.SchemaAttributeName)
	cfg.Discovery.ResponseAttributeName = strings.TrimSpace(cfg.Discovery.ResponseAttributeName)
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)
	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	for i := range cfg.Roots {
		cfg.Roots[i].Namespace = strings.TrimSpace(cfg.Roots[i].Namespace)
		cfg.Roots[i].Path = strings.TrimSpace(cfg.Roots[i].Path)
	}
}

package config

import (
	"fmt"
	"log"
	"strings"
	"unicode"

	"utoipauto/internal/core/config/helpers"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateDiscovery(cfg *Config) error {
	names := map[string]string{
		"discovery.fn_attribute_name":       cfg.Discovery.FnAttributeName,
		"discovery.schema_attribute_name":   cfg.Discovery.SchemaAttributeName,
		"discovery.response_attribute_name": cfg.Discovery.ResponseAttributeName,
	}
	for key, name := range names {
		if !isIdentifier(name) {
			return fmt.Errorf("%s must be a single identifier, got %q", key, name)
		}
	}
	if cfg.Discovery.SchemaAttributeName == cfg.Discovery.ResponseAttributeName {
		return fmt.Errorf("discovery.schema_attribute_name and discovery.response_attribute_name must differ")
	}
	if cfg.Discovery.Workers > 64 {
		return fmt.Errorf("discovery.workers must be <= 64, got %d", cfg.Discovery.Workers)
	}
	return nil
}

func validateRoots(cfg *Config) error {
	roots, err := cfg.DiscoveryRoots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return fmt.Errorf("at least one discovery root is required")
	}
	for i := range roots {
		for j := i + 1; j < len(roots); j++ {
			if helpers.IsPathOverlap(helpers.CleanRoot(roots[i].Path), helpers.CleanRoot(roots[j].Path)) {
				log.Printf("Discovery roots %q and %q overlap; shared files are reported twice", roots[i].Path, roots[j].Path)
			}
		}
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RateLimit < 0 {
		return fmt.Errorf("watch.rate_limit must not be negative")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !supportedFormats[cfg.Output.Format] {
		return fmt.Errorf("output.format must be one of: %s", strings.Join(SupportedFormats(), ", "))
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path must not be empty")
	}
	if cfg.History.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.SampleRatio < 0 || cfg.Observability.SampleRatio > 1 {
		return fmt.Errorf("observability.sample_ratio must be within [0, 1]")
	}
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled")
	}
	return nil
}

// SupportedFormats lists output.format values in display order.
func SupportedFormats() []string {
	return []string{"text", "json", "toml", "tsv", "utoipa"}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

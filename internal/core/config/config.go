package config

import (
	"fmt"
	"strings"
	"time"

	"utoipauto/internal/engine/discover"
)

// DefaultFile is looked up in the working directory when no -config flag is given.
const DefaultFile = "utoipauto.toml"

type Config struct {
	Version       int           `toml:"version"`
	Discovery     Discovery     `toml:"discovery"`
	Paths         string        `toml:"paths"`
	Roots         []RootEntry   `toml:"roots"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
}

// Discovery holds the recognised marker names.
type Discovery struct {
	FnAttributeName       string `toml:"fn_attribute_name"`
	SchemaAttributeName   string `toml:"schema_attribute_name"`
	ResponseAttributeName string `toml:"response_attribute_name"`
	GenericFullPath       bool   `toml:"generic_full_path"`
	Workers               int    `toml:"workers"`
}

// RootEntry is a `[[roots]]` table. An empty Namespace derives module names
// from file paths.
type RootEntry struct {
	Namespace string `toml:"namespace"`
	Path      string `toml:"path"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce  time.Duration `toml:"debounce"`
	RateLimit float64       `toml:"rate_limit"`
	Burst     int           `toml:"burst"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
	Color  *bool  `toml:"color"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	ProjectKey  string        `toml:"project_key"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Retention   int           `toml:"retention"`
}

type Observability struct {
	Enabled       bool    `toml:"enabled"`
	Address       string  `toml:"address"`
	EnableTracing bool    `toml:"enable_tracing"`
	OTLPEndpoint  string  `toml:"otlp_endpoint"`
	OTLPInsecure  bool    `toml:"otlp_insecure"`
	SampleRatio   float64 `toml:"sample_ratio"`
}

var supportedFormats = map[string]bool{
	"text":   true,
	"json":   true,
	"toml":   true,
	"tsv":    true,
	"utoipa": true,
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Params converts the discovery section into engine parameters.
func (c *Config) Params() discover.Params {
	return discover.Params{
		FnAttributeName:       c.Discovery.FnAttributeName,
		SchemaAttributeName:   c.Discovery.SchemaAttributeName,
		ResponseAttributeName: c.Discovery.ResponseAttributeName,
		FullPath:              c.Discovery.GenericFullPath,
	}
}

// DiscoveryRoots merges the `paths` spec string with the `[[roots]]` tables,
// spec entries first.
func (c *Config) DiscoveryRoots() ([]discover.Root, error) {
	var roots []discover.Root
	if strings.TrimSpace(c.Paths) != "" {
		parsed, err := ParsePathSpec(c.Paths)
		if err != nil {
			return nil, err
		}
		roots = append(roots, parsed...)
	}
	for i, entry := range c.Roots {
		if strings.TrimSpace(entry.Path) == "" {
			return nil, fmt.Errorf("roots[%d].path must not be empty", i)
		}
		roots = append(roots, discover.Root{
			Namespace: strings.TrimSpace(entry.Namespace),
			Path:      strings.TrimSpace(entry.Path),
		})
	}
	return roots, nil
}

func (c *Config) ColorEnabled() bool {
	return c.Output.Color == nil || *c.Output.Color
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: UTOIPAUTO_[SECTION]_[KEY] (e.g., UTOIPAUTO_DISCOVERY_GENERIC_FULL_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Paths, "UTOIPAUTO_PATHS")

	// Discovery
	setEnvString(&cfg.Discovery.FnAttributeName, "UTOIPAUTO_DISCOVERY_FN_ATTRIBUTE_NAME")
	setEnvString(&cfg.Discovery.SchemaAttributeName, "UTOIPAUTO_DISCOVERY_SCHEMA_ATTRIBUTE_NAME")
	setEnvString(&cfg.Discovery.ResponseAttributeName, "UTOIPAUTO_DISCOVERY_RESPONSE_ATTRIBUTE_NAME")
	setEnvBool(&cfg.Discovery.GenericFullPath, "UTOIPAUTO_DISCOVERY_GENERIC_FULL_PATH")
	setEnvInt(&cfg.Discovery.Workers, "UTOIPAUTO_DISCOVERY_WORKERS")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "UTOIPAUTO_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RateLimit, "UTOIPAUTO_WATCH_RATE_LIMIT")

	// Output
	setEnvString(&cfg.Output.Format, "UTOIPAUTO_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "UTOIPAUTO_OUTPUT_PATH")

	// History
	setEnvBool(&cfg.History.Enabled, "UTOIPAUTO_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "UTOIPAUTO_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, "UTOIPAUTO_HISTORY_PROJECT_KEY")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "UTOIPAUTO_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "UTOIPAUTO_OBSERVABILITY_ADDRESS")
	setEnvBool(&cfg.Observability.EnableTracing, "UTOIPAUTO_OBSERVABILITY_ENABLE_TRACING")
	setEnvString(&cfg.Observability.OTLPEndpoint, "UTOIPAUTO_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvFloat64(&cfg.Observability.SampleRatio, "UTOIPAUTO_OBSERVABILITY_SAMPLE_RATIO")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}

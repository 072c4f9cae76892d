// Package cli is the command-line front end.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	coreapp "utoipauto/internal/core/app"
	"utoipauto/internal/core/config"
	"utoipauto/internal/core/errors"
	"utoipauto/internal/shared/observability"
)

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "utoipauto v%s\n", versionString)
		return 0
	}

	configureLogging(stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	baseDir := cwd
	if cfgPath != "" {
		baseDir = filepath.Dir(cfgPath)
	}

	config.ApplyEnvOverrides(cfg)
	if err := applyOptions(opts, cfg, cwd); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 1
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			Endpoint:    cfg.Observability.OTLPEndpoint,
			Insecure:    cfg.Observability.OTLPInsecure,
			ServiceName: "utoipauto",
			SampleRatio: cfg.Observability.SampleRatio,
		})
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(flushCtx); err != nil {
					slog.Warn("failed to flush traces", "error", err)
				}
			}()
		}
	}

	a, err := coreapp.New(cfg, baseDir, stdout)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer a.Close()

	if cfg.Observability.Enabled {
		server := NewObservabilityServer(cfg.Observability.Address, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	if opts.watch {
		if err := a.Watch(ctx, cfgPath); err != nil {
			slog.Error("watch failed", "error", err)
			return 1
		}
		return 0
	}

	report, err := a.Run(ctx)
	if err != nil {
		slog.Error("discovery failed", "error", err, "code", errors.CodeOf(err))
		return 1
	}
	if report.OutputPath != "" {
		coreapp.PrintSummary(stderr, report)
	}
	return 0
}

// loadConfig loads the explicit path, else ./utoipauto.toml when present,
// else the defaults. The returned path is empty when no file was used.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if strings.TrimSpace(path) != "" {
		abs := config.ResolveRelative(cwd, path)
		cfg, err := config.Load(abs)
		if err != nil {
			return nil, "", err
		}
		return cfg, abs, nil
	}

	candidate := filepath.Join(cwd, config.DefaultFile)
	cfg, err := config.Load(candidate)
	if err == nil {
		return cfg, candidate, nil
	}
	if errors.IsCode(err, errors.CodeNotFound) {
		return config.DefaultConfig(), "", nil
	}
	return nil, "", err
}

// applyOptions layers command-line flags over the loaded configuration.
// Paths given on the command line are anchored at cwd.
func applyOptions(opts cliOptions, cfg *config.Config, cwd string) error {
	if len(opts.args) > 1 {
		return fmt.Errorf("expected at most one path spec argument, got %d", len(opts.args))
	}
	spec := strings.TrimSpace(opts.paths)
	if len(opts.args) == 1 {
		if spec != "" {
			return fmt.Errorf("-paths and a positional path spec cannot be combined")
		}
		spec = strings.TrimSpace(opts.args[0])
	}
	if spec != "" {
		roots, err := config.ParsePathSpec(spec)
		if err != nil {
			return err
		}
		cfg.Paths = ""
		cfg.Roots = cfg.Roots[:0]
		for _, root := range roots {
			cfg.Roots = append(cfg.Roots, config.RootEntry{
				Namespace: root.Namespace,
				Path:      config.ResolveRelative(cwd, root.Path),
			})
		}
	}

	if opts.fnName != "" {
		cfg.Discovery.FnAttributeName = opts.fnName
	}
	if opts.schemaName != "" {
		cfg.Discovery.SchemaAttributeName = opts.schemaName
	}
	if opts.responseName != "" {
		cfg.Discovery.ResponseAttributeName = opts.responseName
	}
	if opts.fullPath {
		cfg.Discovery.GenericFullPath = true
	}
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.output != "" {
		cfg.Output.Path = config.ResolveRelative(cwd, opts.output)
	}
	if opts.history {
		cfg.History.Enabled = true
	}
	if opts.metricsAddr != "" {
		cfg.Observability.Enabled = true
		cfg.Observability.Address = opts.metricsAddr
	}
	return nil
}

func configureLogging(output io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

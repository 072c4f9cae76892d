// Package app wires configuration, discovery, rendering and history into
// single runs and a watch loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"utoipauto/internal/core/config"
	"utoipauto/internal/core/errors"
	"utoipauto/internal/data/history"
	"utoipauto/internal/engine/discover"
	"utoipauto/internal/engine/locator"
	"utoipauto/internal/engine/parser"
	"utoipauto/internal/shared/observability"
	"utoipauto/internal/ui/report/formats"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RunReport describes one completed discovery run.
type RunReport struct {
	RunID      string
	Result     discover.Result
	Changes    *history.RunDiff
	Output     string
	OutputPath string
	Duration   time.Duration
	FinishedAt time.Time
}

type App struct {
	// BaseDir anchors relative root, output and history paths.
	BaseDir string
	Parser  *parser.Parser

	out     io.Writer
	history *history.Store

	mu      sync.RWMutex
	cfg     *config.Config
	locator *locator.Locator

	stateMu sync.RWMutex
	last    *RunReport
	lastErr error
	runs    int
}

// New builds an App for a validated configuration. Output that has no file
// target is written to out.
func New(cfg *config.Config, baseDir string, out io.Writer) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "configuration is required")
	}
	if out == nil {
		out = io.Discard
	}

	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load grammars")
	}
	p := parser.NewParser(loader)
	if err := p.RegisterDefaultExtractors(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "register extractors")
	}

	a := &App{BaseDir: baseDir, Parser: p, out: out}
	if err := a.applyConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.History.Enabled {
		store, err := history.Open(a.resolve(cfg.History.Path), cfg.History.BusyTimeout)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "open history store"),
				errors.CtxPath, cfg.History.Path)
		}
		a.history = store
	}
	return a, nil
}

// Reload swaps in a new configuration for subsequent runs. The history
// store stays as opened.
func (a *App) Reload(cfg *config.Config) error {
	if err := a.applyConfig(cfg); err != nil {
		return err
	}
	slog.Info("configuration reloaded", "format", cfg.Output.Format, "full_path", cfg.Discovery.GenericFullPath)
	return nil
}

func (a *App) applyConfig(cfg *config.Config) error {
	loc, err := locator.New(a.Parser, locator.Options{
		ExcludeDirs:  cfg.Exclude.Dirs,
		ExcludeFiles: cfg.Exclude.Files,
		Workers:      cfg.Discovery.Workers,
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "build source locator")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = cfg
	a.locator = loc
	return nil
}

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Roots returns the configured discovery roots with paths anchored at
// BaseDir.
func (a *App) Roots() ([]discover.Root, error) {
	roots, err := a.Config().DiscoveryRoots()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "discovery roots")
	}
	for i := range roots {
		roots[i].Path = a.resolve(roots[i].Path)
	}
	return roots, nil
}

func (a *App) resolve(path string) string {
	if a.BaseDir == "" {
		return path
	}
	return config.ResolveRelative(a.BaseDir, path)
}

// Run discovers every configured root, renders the result and writes it.
// History failures are logged and do not fail the run.
func (a *App) Run(ctx context.Context) (*RunReport, error) {
	runID := uuid.NewString()
	logger := slog.With("run_id", runID)

	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	a.mu.RLock()
	cfg, loc := a.cfg, a.locator
	a.mu.RUnlock()

	start := time.Now()
	roots, err := a.Roots()
	if err != nil {
		return nil, a.finish(nil, err)
	}

	engine := discover.NewEngine(loc, cfg.Params())
	res, err := engine.Discover(ctx, roots)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("discovery failed", "error", err)
		return nil, a.finish(nil, err)
	}

	report := &RunReport{RunID: runID, Result: res}
	report.Changes = a.recordHistory(logger, runID, cfg, res)

	toFile := cfg.Output.Path != ""
	rendered, err := formats.Render(cfg.Output.Format, formats.Data{Result: res, Changes: report.Changes}, cfg.ColorEnabled() && !toFile)
	if err != nil {
		return nil, a.finish(nil, errors.Wrap(err, errors.CodeValidationError, "render output"))
	}
	report.Output = rendered

	if toFile {
		report.OutputPath = a.resolve(cfg.Output.Path)
	}
	if err := a.writeOutput(report.OutputPath, rendered); err != nil {
		return nil, a.finish(nil, err)
	}

	report.Duration = time.Since(start)
	report.FinishedAt = time.Now().UTC()

	observability.LastRunItems.WithLabelValues(history.BucketFunctions).Set(float64(len(res.Functions)))
	observability.LastRunItems.WithLabelValues(history.BucketSchemas).Set(float64(len(res.Schemas)))
	observability.LastRunItems.WithLabelValues(history.BucketResponses).Set(float64(len(res.Responses)))

	logger.Info("discovery complete",
		"files", res.Files,
		"functions", len(res.Functions),
		"schemas", len(res.Schemas),
		"responses", len(res.Responses),
		"duration", report.Duration)
	return report, a.finish(report, nil)
}

func (a *App) finish(report *RunReport, err error) error {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.runs++
	a.lastErr = err
	if report != nil {
		a.last = report
	}
	return err
}

// LastReport returns the most recent successful run and the error of the
// most recent attempt, if it failed.
func (a *App) LastReport() (*RunReport, error) {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.last, a.lastErr
}

func (a *App) RunCount() int {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()
	return a.runs
}

func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	if err := a.history.Close(); err != nil {
		return fmt.Errorf("close history store: %w", err)
	}
	return nil
}

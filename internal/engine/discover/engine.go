package discover

import (
	"context"
	"log/slog"
	"time"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine runs discovery over one or more roots. It holds no state between
// calls.
type Engine struct {
	locator SourceLocator
	params  Params
}

func NewEngine(locator SourceLocator, params Params) *Engine {
	return &Engine{locator: locator, params: params}
}

func (e *Engine) Params() Params {
	return e.params
}

// Discover walks every file of every root in locator order and folds the
// classified declarations into a Result. Any failure aborts the call without
// a partial result.
func (e *Engine) Discover(ctx context.Context, roots []Root) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "discover.Engine.Discover", trace.WithAttributes(
		attribute.Int("roots", len(roots)),
		attribute.Bool("full_path", e.params.FullPath),
	))
	defer span.End()

	start := time.Now()
	var res Result
	for _, root := range roots {
		files, err := e.locator.Locate(ctx, root)
		if err != nil {
			return Result{}, e.fail(span, errors.AddContext(err, errors.CtxOperation, "locate"))
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return Result{}, e.fail(span, err)
			}
			items, err := e.discoverFile(ctx, root, file)
			if err != nil {
				return Result{}, e.fail(span, err)
			}
			for _, item := range items {
				res.add(item)
			}
			res.Files++
		}
	}

	observability.DiscoveryDuration.Observe(time.Since(start).Seconds())
	for _, item := range res.Items {
		observability.DiscoveredItems.WithLabelValues(item.Kind.String()).Inc()
	}
	span.SetAttributes(
		attribute.Int("files", res.Files),
		attribute.Int("functions", len(res.Functions)),
		attribute.Int("schemas", len(res.Schemas)),
		attribute.Int("responses", len(res.Responses)),
	)
	slog.Debug("discovery finished",
		"files", res.Files,
		"functions", len(res.Functions),
		"schemas", len(res.Schemas),
		"responses", len(res.Responses),
		"duration", time.Since(start))
	return res, nil
}

func (e *Engine) discoverFile(ctx context.Context, root Root, file SourceFile) ([]Item, error) {
	_, span := observability.Tracer.Start(ctx, "discover.File", trace.WithAttributes(
		attribute.String("path", file.Path),
		attribute.String("module", file.Module),
	))
	defer span.End()

	if file.Tree == nil {
		err := errors.New(errors.CodeParseFailure, "file has no declaration tree")
		return nil, errors.AddContext(err, errors.CtxPath, file.Path)
	}

	var imports []Import
	if e.params.FullPath {
		imports = ExtractImports(file.Source, root.CrateName())
		span.SetAttributes(attribute.Int("imports", len(imports)))
	}

	items, err := Walk(file.Module, file.Tree.Items, imports, e.params)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, file.Path)
	}
	return items, nil
}

func (e *Engine) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	code := string(errors.CodeOf(err))
	if code == "" {
		code = string(errors.CodeInternal)
	}
	observability.DiscoveryFailures.WithLabelValues(code).Inc()
	return err
}

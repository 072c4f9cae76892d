// Package discover finds utoipa-annotated declarations in parsed Rust
// sources and classifies them into route functions, schemas and responses.
//
// The package never touches the filesystem: files arrive through a
// SourceLocator, and everything downstream of it is a pure function of the
// declaration trees and Params.
package discover

import (
	"context"
	"strings"

	"utoipauto/internal/engine/parser"
)

const (
	// Separator joins namespace segments.
	Separator = "::"
	// IgnoreMarker excludes a declaration regardless of any other marker.
	IgnoreMarker = "utoipa_ignore"
	// FrameworkNamespace is the first segment of two-segment derive paths.
	FrameworkNamespace = "utoipa"
	// DefaultCrateName is used when a root has no explicit namespace.
	DefaultCrateName = "crate"

	schemaTrait   = "ToSchema"
	responseTrait = "ToResponse"
)

type Kind int

const (
	KindFn Kind = iota
	KindModel
	KindResponse
	KindCustomModelImpl
	KindCustomResponseImpl
)

func (k Kind) String() string {
	switch k {
	case KindFn:
		return "fn"
	case KindModel:
		return "model"
	case KindResponse:
		return "response"
	case KindCustomModelImpl:
		return "custom_model_impl"
	case KindCustomResponseImpl:
		return "custom_response_impl"
	default:
		return "unknown"
	}
}

// Item is one classified declaration with its fully qualified name.
type Item struct {
	Kind Kind
	Name string
}

// Params are the recognised marker names.
type Params struct {
	FnAttributeName       string
	SchemaAttributeName   string
	ResponseAttributeName string
	// FullPath rewrites generic alias arguments to fully qualified paths
	// using the file's use statements.
	FullPath bool
}

func DefaultParams() Params {
	return Params{
		FnAttributeName:       "utoipa",
		SchemaAttributeName:   schemaTrait,
		ResponseAttributeName: responseTrait,
	}
}

// Root is one discovery entry point: a file or directory and the namespace
// its contents live under. An empty Namespace means the namespace is derived
// from the file path.
type Root struct {
	Namespace string
	Path      string
}

// CrateName is the first namespace segment, used to re-anchor `crate::`
// imports in full-path mode.
func (r Root) CrateName() string {
	ns := strings.TrimSpace(r.Namespace)
	if ns == "" {
		return DefaultCrateName
	}
	if idx := strings.Index(ns, Separator); idx >= 0 {
		return ns[:idx]
	}
	return ns
}

// SourceFile is one parsed file as yielded by a SourceLocator.
type SourceFile struct {
	Path   string
	Module string
	Source []byte
	Tree   *parser.File
}

// SourceLocator yields every source file reachable from a root, in a
// deterministic order.
type SourceLocator interface {
	Locate(ctx context.Context, root Root) ([]SourceFile, error)
}

// Result is the folded discovery output. CustomModelImpl and
// CustomResponseImpl items land in Schemas and Responses.
type Result struct {
	Functions []string
	Schemas   []string
	Responses []string
	Items     []Item
	Files     int
}

func (r *Result) add(item Item) {
	r.Items = append(r.Items, item)
	switch item.Kind {
	case KindFn:
		r.Functions = append(r.Functions, item.Name)
	case KindModel, KindCustomModelImpl:
		r.Schemas = append(r.Schemas, item.Name)
	case KindResponse, KindCustomResponseImpl:
		r.Responses = append(r.Responses, item.Name)
	}
}

// Fold groups classified items into the three output buckets.
func Fold(items []Item) Result {
	var res Result
	for _, item := range items {
		res.add(item)
	}
	return res
}

func buildPath(module, name string) string {
	if module == "" {
		return name
	}
	return module + Separator + name
}

package discover

import (
	"strings"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/parser"
)

const (
	deriveAttr  = "derive"
	aliasesAttr = "aliases"
)

func isIgnored(attrs []parser.Attribute) bool {
	for _, attr := range attrs {
		if attr.IsIdent(IgnoreMarker) {
			return true
		}
	}
	return false
}

// matchFunction yields one route per attribute that has a path segment equal
// to the function marker. Functions without attributes are never routes.
func matchFunction(module string, fn parser.Item, params Params) []Item {
	if len(fn.Attrs) == 0 || isIgnored(fn.Attrs) {
		return nil
	}

	var out []Item
	name := buildPath(module, fn.Name)
	for _, attr := range fn.Attrs {
		for _, seg := range attr.Segments() {
			if seg == params.FnAttributeName {
				out = append(out, Item{Kind: KindFn, Name: name})
				break
			}
		}
	}
	return out
}

// matchType classifies a struct or enum from its derive and aliases
// attributes. A type with type or const parameters is only registered
// through its aliases.
func matchType(module string, decl parser.Item, imports []Import, params Params) ([]Item, error) {
	if isIgnored(decl.Attrs) {
		return nil, nil
	}

	name := buildPath(module, decl.Name)
	generic := parser.HasNonLifetimeGenerics(decl.Generics)

	var out []Item
	for _, attr := range decl.Attrs {
		switch {
		case attr.IsIdent(deriveAttr):
			metas, err := ParseMetaList(attr.Args)
			if err != nil {
				return nil, annotationError(err, decl, attr)
			}
			if generic {
				continue
			}
			for _, m := range metas {
				out = append(out, classifyDerive(m, name, params)...)
			}

		case attr.IsIdent(aliasesAttr) && generic:
			metas, err := ParseMetaList(attr.Args)
			if err != nil {
				return nil, annotationError(err, decl, attr)
			}
			for _, m := range metas {
				if m.Kind != MetaNameValue {
					return nil, annotationError(
						errors.New(errors.CodeAmbiguousAnnotationArgs, "alias entry must be `Name = Type<...>`"),
						decl, attr)
				}
				expanded, err := Expand(m.Value, name, imports, decl.Generics, params.FullPath)
				if err != nil {
					return nil, errors.AddContext(err, errors.CtxLine, decl.Location.Line)
				}
				out = append(out, Item{Kind: KindModel, Name: expanded})
			}
		}
	}
	return out, nil
}

func classifyDerive(m Meta, name string, params Params) []Item {
	segs := m.Segments()
	if len(segs) == 2 {
		if segs[0] != FrameworkNamespace {
			return nil
		}
		switch segs[1] {
		case schemaTrait:
			return []Item{{Kind: KindModel, Name: name}}
		case responseTrait:
			return []Item{{Kind: KindResponse, Name: name}}
		}
		return nil
	}

	var out []Item
	if m.IsIdent(params.SchemaAttributeName) {
		out = append(out, Item{Kind: KindModel, Name: name})
	}
	if m.IsIdent(params.ResponseAttributeName) {
		out = append(out, Item{Kind: KindResponse, Name: name})
	}
	return out
}

// matchImpl registers `impl Trait for Self` when the last segment of Trait is
// the schema or response marker.
func matchImpl(module string, impl parser.Item, params Params) []Item {
	if impl.Trait == "" || isIgnored(impl.Attrs) {
		return nil
	}

	trait := impl.Trait
	if idx := strings.IndexByte(trait, '<'); idx >= 0 {
		trait = trait[:idx]
	}
	segs := strings.Split(stripSpaces(trait), Separator)
	last := segs[len(segs)-1]

	name := buildPath(module, impl.SelfType)
	switch last {
	case params.SchemaAttributeName:
		return []Item{{Kind: KindCustomModelImpl, Name: name}}
	case params.ResponseAttributeName:
		return []Item{{Kind: KindCustomResponseImpl, Name: name}}
	}
	return nil
}

func annotationError(err error, decl parser.Item, attr parser.Attribute) error {
	err = errors.AddContext(err, errors.CtxSymbol, decl.Name)
	return errors.AddContext(err, errors.CtxLine, attr.Location.Line)
}

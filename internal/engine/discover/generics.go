package discover

import (
	"strings"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/parser"
)

// Expand turns an alias instantiation such as `Page<'static, Pet, 10>` into
// the registered name for the generic declaration `name`: its generic
// arguments are aligned with the declared parameters, lifetimes are dropped,
// and in full-path mode each type argument is rewritten through the import
// list.
func Expand(typeText, name string, imports []Import, generics []parser.GenericParam, fullPath bool) (string, error) {
	levels := SplitLevels(typeText)
	module := CurrentModule(name)

	merged := make([]string, 0, len(levels))
	for depth, level := range levels {
		parts := strings.Split(level, ",")
		if len(parts) > len(generics) {
			return "", arityError(name, typeText, len(parts), len(generics))
		}
		if depth == 0 {
			if covered, required := coveredParams(len(parts), generics); covered < required {
				return "", arityError(name, typeText, covered, required)
			}
		}

		args := make([]string, 0, len(parts))
		for i, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				return "", arityError(name, typeText, i, len(generics))
			}
			switch generics[i].Kind {
			case parser.GenericLifetime:
			case parser.GenericConst:
				args = append(args, part)
			default:
				if fullPath {
					part = resolveGeneric(part, module, imports)
				}
				args = append(args, part)
			}
		}
		merged = append(merged, strings.Join(args, ", "))
	}

	return name + MergeLevels(merged), nil
}

// SplitLevels takes the text between the first `<` and the last `>` and
// splits it into nesting levels, keeping each level up to its first `>`.
// Text without angle brackets is a single level.
func SplitLevels(typeText string) []string {
	inner := strings.TrimSpace(typeText)
	if start := strings.IndexByte(inner, '<'); start >= 0 {
		end := strings.LastIndexByte(inner, '>')
		if end <= start {
			end = len(inner)
		}
		inner = inner[start+1 : end]
	}

	pieces := strings.Split(inner, "<")
	levels := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if idx := strings.IndexByte(piece, '>'); idx >= 0 {
			piece = piece[:idx]
		}
		levels = append(levels, piece)
	}
	return levels
}

// MergeLevels is the inverse of SplitLevels:
//
//	["A, B"]               -> "<A, B>"
//	["Outer", "Inner"]     -> "<Outer<Inner>>"
func MergeLevels(levels []string) string {
	switch len(levels) {
	case 0:
		return ""
	case 1:
		return "<" + levels[0] + ">"
	}

	var b strings.Builder
	b.WriteByte('<')
	for i, level := range levels {
		b.WriteString(strings.TrimSpace(level))
		if i != len(levels)-1 {
			b.WriteByte('<')
		}
	}
	b.WriteString(strings.Repeat(">", len(levels)))
	return b.String()
}

// resolveGeneric resolves the outer type of part and recurses into what
// follows its first `<`.
func resolveGeneric(part, module string, imports []Import) string {
	if head, rest, ok := strings.Cut(part, "<"); ok {
		return ResolveImport(imports, module, strings.TrimSpace(head)) + "<" +
			resolveGeneric(strings.TrimSpace(rest), module, imports)
	}
	return ResolveImport(imports, module, strings.TrimSpace(part))
}

// coveredParams counts the non-lifetime parameters among the first n
// positions along with the total number of non-lifetime parameters.
func coveredParams(n int, generics []parser.GenericParam) (covered, required int) {
	for i, g := range generics {
		if g.Kind == parser.GenericLifetime {
			continue
		}
		required++
		if i < n {
			covered++
		}
	}
	return covered, required
}

func arityError(name, typeText string, got, want int) error {
	err := errors.Newf(errors.CodeGenericArity,
		"too few parameters provided to generic: %s has %d, got %d", typeText, want, got)
	return errors.AddContext(err, errors.CtxSymbol, name)
}

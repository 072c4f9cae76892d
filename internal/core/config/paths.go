package config

import (
	"path/filepath"
	"strings"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/discover"
)

const namespaceArrow = "=>"

// ParsePathSpec reads the `paths` notation accepted by the discovery
// attribute. Two forms exist:
//
//	./src/a.rs, ./src/b
//	( crate::api => ./src/api ) ; ( crate => ./src/lib.rs )
//
// Entries of the first form carry no namespace; their modules are derived
// from the file path.
func ParsePathSpec(spec string) ([]discover.Root, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	if !strings.Contains(spec, namespaceArrow) && !strings.HasPrefix(spec, "(") {
		var roots []discover.Root
		for _, entry := range strings.Split(spec, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				roots = append(roots, discover.Root{Path: entry})
			}
		}
		return roots, nil
	}

	var roots []discover.Root
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.HasPrefix(entry, "(") || !strings.HasSuffix(entry, ")") {
			return nil, pathSpecError("entry must be wrapped in parentheses", entry)
		}
		inner := strings.TrimSpace(entry[1 : len(entry)-1])
		namespace, path, ok := strings.Cut(inner, namespaceArrow)
		if !ok {
			return nil, pathSpecError("entry must have the form `namespace => path`", entry)
		}
		namespace = strings.Join(strings.Fields(namespace), "")
		path = strings.TrimSpace(path)
		if namespace == "" || path == "" {
			return nil, pathSpecError("namespace and path must not be empty", entry)
		}
		roots = append(roots, discover.Root{Namespace: namespace, Path: path})
	}
	return roots, nil
}

func pathSpecError(msg, entry string) error {
	return errors.AddContext(errors.New(errors.CodeValidationError, msg), errors.CtxSymbol, entry)
}

// ResolveRelative anchors value at base unless it is absolute.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

package discover

import (
	"bufio"
	"bytes"
	"log/slog"
	"strings"

	"utoipauto/internal/shared/observability"
)

// Import is one name brought into scope by a use statement.
type Import struct {
	Path  string
	Alias string
}

func (i Import) String() string {
	if i.Alias == "" {
		return i.Path
	}
	return i.Path + " as " + i.Alias
}

var usePrefixes = []string{"pub(crate) use ", "pub(super) use ", "pub use ", "use "}

// ExtractImports reads the use statements of a Rust file line by line.
// Grouped imports (`a::{B, c::D as E}`) are flattened, statements spanning
// several lines are joined first, and absolute `::x` paths are anchored at
// crateName.
func ExtractImports(source []byte, crateName string) []Import {
	var (
		out       []Import
		multiline strings.Builder
		inGroup   bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if inGroup {
			multiline.WriteString(line)
			if !strings.HasSuffix(strings.TrimSuffix(line, ";"), "}") {
				continue
			}
			inGroup = false
			line = multiline.String()
			multiline.Reset()
		} else {
			body, ok := cutUsePrefix(line)
			if !ok {
				continue
			}
			if strings.HasSuffix(body, "{") {
				inGroup = true
				multiline.WriteString(body)
				continue
			}
			line = body
		}

		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		out = appendUseTree(out, "", line, crateName)
	}
	return out
}

func cutUsePrefix(line string) (string, bool) {
	for _, prefix := range usePrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line[len(prefix):]), true
		}
	}
	return "", false
}

// appendUseTree flattens one use tree under prefix.
func appendUseTree(out []Import, prefix, tree, crateName string) []Import {
	tree = strings.TrimSpace(tree)
	if tree == "" {
		return out
	}

	if open := strings.IndexByte(tree, '{'); open >= 0 && strings.HasSuffix(tree, "}") {
		groupPrefix := prefix + stripSpaces(tree[:open])
		entries, err := splitTopLevel(tree[open+1:len(tree)-1], ',')
		if err != nil {
			slog.Debug("skipping malformed use group", "use", tree, "error", err)
			return out
		}
		for _, entry := range entries {
			out = appendUseTree(out, groupPrefix, entry, crateName)
		}
		return out
	}

	imp := Import{}
	path := tree
	if before, after, ok := strings.Cut(tree, " as "); ok {
		path = before
		imp.Alias = strings.TrimSpace(after)
	}
	path = prefix + stripSpaces(path)

	switch {
	case strings.HasSuffix(path, Separator+"self"):
		path = strings.TrimSuffix(path, Separator+"self")
	case strings.HasPrefix(path, Separator):
		path = crateName + path
	}
	if path == "" || path == "self" {
		return out
	}
	imp.Path = path
	return append(out, imp)
}

// ResolveImport maps a type name used inside a file to a qualified path.
// It is a textual heuristic: the first import whose text contains name wins,
// a partially qualified name has its first segment resolved by suffix, and
// anything else is assumed to live in currentModule.
func ResolveImport(imports []Import, currentModule, name string) string {
	name = strings.TrimSpace(name)
	currentModule = strings.TrimSpace(currentModule)
	if name == "" {
		return name
	}

	for _, imp := range imports {
		if strings.Contains(imp.String(), name) {
			return strings.TrimSpace(imp.Path)
		}
	}

	if strings.Contains(name, Separator) {
		if resolved, ok := resolvePartial(imports, name); ok {
			return resolved
		}
		observability.UnresolvedImports.Inc()
		slog.Debug("unresolved import", "name", name, "module", currentModule)
		return name
	}

	if !strings.HasPrefix(name, currentModule) {
		return currentModule + Separator + name
	}
	return name
}

// resolvePartial resolves `first::rest` against the first import ending in
// `first`.
func resolvePartial(imports []Import, name string) (string, bool) {
	first, _, _ := strings.Cut(name, Separator)
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	for _, imp := range imports {
		if strings.HasSuffix(strings.TrimSpace(imp.String()), first) {
			return strings.TrimSpace(imp.Path) + strings.TrimSpace(name[len(first):]), true
		}
	}
	return "", false
}

// CurrentModule drops the last segment of a qualified name.
func CurrentModule(name string) string {
	idx := strings.LastIndex(name, Separator)
	if idx < 0 {
		return ""
	}
	return name[:idx]
}

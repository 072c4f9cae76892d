package discover

import (
	"strings"
	"unicode"

	"utoipauto/internal/core/errors"
)

type MetaKind int

const (
	MetaPath MetaKind = iota
	MetaList
	MetaNameValue
)

// Meta is one entry of an attribute argument list: `Path`, `Path(List...)`
// or `Path = Value`.
type Meta struct {
	Kind  MetaKind
	Path  string
	Value string
	List  []Meta
}

func (m Meta) Segments() []string {
	return strings.Split(strings.TrimPrefix(m.Path, Separator), Separator)
}

func (m Meta) IsIdent(name string) bool {
	return m.Path == name
}

// ParseMetaList parses comma separated attribute arguments such as
// `Debug, utoipa::ToSchema` or `A = Foo<Bar>, B = Foo<Baz>`. Any malformed
// entry is a CodeAmbiguousAnnotationArgs error.
func ParseMetaList(args string) ([]Meta, error) {
	parts, err := splitTopLevel(args, ',')
	if err != nil {
		return nil, err
	}

	metas := make([]Meta, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			if i == len(parts)-1 {
				break
			}
			return nil, ambiguous("empty entry in attribute arguments", args)
		}
		m, err := parseMeta(part)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	return metas, nil
}

func parseMeta(text string) (Meta, error) {
	if eq := topLevelAssign(text); eq >= 0 {
		path := strings.TrimSpace(text[:eq])
		value := strings.TrimSpace(text[eq+1:])
		if !isPath(path) {
			return Meta{}, ambiguous("invalid name in name-value argument", text)
		}
		if value == "" {
			return Meta{}, ambiguous("missing value in name-value argument", text)
		}
		return Meta{Kind: MetaNameValue, Path: stripSpaces(path), Value: value}, nil
	}

	if open := strings.IndexByte(text, '('); open >= 0 {
		// An empty path is an anonymous group such as `(status = 200)`.
		path := strings.TrimSpace(text[:open])
		if (path != "" && !isPath(path)) || !strings.HasSuffix(text, ")") {
			return Meta{}, ambiguous("invalid list argument", text)
		}
		nested, err := ParseMetaList(text[open+1 : len(text)-1])
		if err != nil {
			return Meta{}, err
		}
		return Meta{Kind: MetaList, Path: stripSpaces(path), List: nested}, nil
	}

	if !isPath(text) {
		return Meta{}, ambiguous("invalid path argument", text)
	}
	return Meta{Kind: MetaPath, Path: stripSpaces(text)}, nil
}

// splitTopLevel splits on sep outside of brackets, angle brackets, string
// and char literals.
func splitTopLevel(text string, sep byte) ([]string, error) {
	var (
		parts []string
		stack []byte
		start int
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '"':
			end := skipString(text, i)
			if end < 0 {
				return nil, ambiguous("unterminated string literal", text)
			}
			i = end
		case '\'':
			i = skipCharOrLifetime(text, i)
		case '(', '[', '{', '<':
			stack = append(stack, closerFor(ch))
		case '>':
			if i > 0 && (text[i-1] == '-' || text[i-1] == '=') {
				continue
			}
			fallthrough
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return nil, ambiguous("unbalanced delimiters", text)
			}
			stack = stack[:len(stack)-1]
		case sep:
			if len(stack) == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}
		}
	}
	if len(stack) != 0 {
		return nil, ambiguous("unbalanced delimiters", text)
	}
	return append(parts, text[start:]), nil
}

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	default:
		return '>'
	}
}

func skipString(text string, open int) int {
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// skipCharOrLifetime returns the index of the last byte of a char literal
// starting at i, or i itself for a lifetime such as 'a.
func skipCharOrLifetime(text string, i int) int {
	if i+2 < len(text) && text[i+1] == '\\' {
		if end := strings.IndexByte(text[i+2:], '\''); end >= 0 {
			return i + 2 + end
		}
	}
	if i+2 < len(text) && text[i+2] == '\'' {
		return i + 2
	}
	return i
}

// topLevelAssign returns the index of the first `=` outside brackets that is
// not part of `==`, `=>`, `<=`, `>=` or `!=`.
func topLevelAssign(text string) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch ch := text[i]; ch {
		case '"':
			if end := skipString(text, i); end >= 0 {
				i = end
			}
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if ch == '>' && i > 0 && text[i-1] == '-' {
				continue
			}
			depth--
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(text) && (text[i+1] == '=' || text[i+1] == '>') {
				i++
				continue
			}
			if i > 0 && strings.ContainsRune("<>!=", rune(text[i-1])) {
				continue
			}
			return i
		}
	}
	return -1
}

func isPath(text string) bool {
	text = stripSpaces(text)
	text = strings.TrimPrefix(text, Separator)
	if text == "" {
		return false
	}
	for _, seg := range strings.Split(text, Separator) {
		if !isIdent(strings.TrimPrefix(seg, "r#")) {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func ambiguous(msg, text string) error {
	return errors.Newf(errors.CodeAmbiguousAnnotationArgs, "%s: %q", msg, text)
}

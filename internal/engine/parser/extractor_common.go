package parser

import (
	"strings"
)

// collapseSpace folds every whitespace run (including newlines) to one space.
func collapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// stripSpace removes all whitespace; used for paths such as `utoipa :: path`.
func stripSpace(value string) string {
	return strings.Join(strings.Fields(value), "")
}

// matchingClose returns the index of the delimiter closing the one at open,
// or -1 when the text is unbalanced.
func matchingClose(text string, open int) int {
	if open < 0 || open >= len(text) {
		return -1
	}
	opener := text[open]
	var closer byte
	switch opener {
	case '(':
		closer = ')'
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return -1
	}

	depth := 0
	inString := false
	for i := open; i < len(text); i++ {
		ch := text[i]
		if inString {
			if ch == '\\' {
				i++
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

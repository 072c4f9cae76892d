// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/shared/observability"
	"utoipauto/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser turns source text into a declaration tree. It is safe for
// concurrent use once all extractors are registered.
type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
	extensions map[string]string
	pools      map[string]*ParserPool
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
		pools:      make(map[string]*ParserPool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		if grammar := loader.Language(lang); grammar != nil {
			p.pools[lang] = NewParserPool(grammar)
		}
	}
	return p
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

func (p *Parser) RegisterDefaultExtractors() error {
	for lang, spec := range p.loader.LanguageRegistry() {
		if !spec.Enabled {
			continue
		}
		extractor, ok := DefaultExtractorForLanguage(lang)
		if !ok {
			return errors.New(errors.CodeNotSupported, fmt.Sprintf("no default extractor for enabled language: %s", lang))
		}
		p.RegisterExtractor(lang, extractor)
	}
	return nil
}

func DefaultExtractorForLanguage(lang string) (Extractor, bool) {
	switch lang {
	case "rust":
		return NewRustExtractor(), true
	default:
		return nil, false
	}
}

// ParseFile parses content into a declaration tree. A source containing
// syntax errors is rejected with CodeParseFailure rather than partially
// extracted.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language")
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang))
	}

	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	tree := pool.Parse(content)
	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeParseFailure, "parse failed"), errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstErrorNode(root); bad != nil {
		err := errors.New(errors.CodeParseFailure, "syntax error")
		err = errors.AddContext(err, errors.CtxPath, path)
		return nil, errors.AddContext(err, errors.CtxLine, int(bad.StartPosition().Row)+1)
	}

	res, err := extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailure, "extraction failed")
	}
	return res, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extensions[ext]; ok {
		return lang
	}
	return ""
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	return p.GetLanguage(filePath) != ""
}

func (p *Parser) GetLanguage(path string) string {
	return p.detectLanguage(path)
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

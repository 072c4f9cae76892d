package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// RustExtractor builds the declaration tree of a Rust source file: modules
// (recursively), functions, structs, enums and impl blocks, each with the
// outer attributes written above it.
type RustExtractor struct {
	walker *DeclarationWalker
}

func NewRustExtractor() *RustExtractor {
	e := &RustExtractor{}
	e.walker = &DeclarationWalker{
		attributeKind: "attribute_item",
		skipKinds: map[string]bool{
			"line_comment":         true,
			"block_comment":        true,
			"inner_attribute_item": true,
		},
		parseAttr: e.extractAttribute,
		handlers: map[string]ItemHandler{
			"mod_item":      e.extractMod,
			"function_item": e.extractFunction,
			"struct_item":   e.extractType(ItemStruct),
			"enum_item":     e.extractType(ItemEnum),
			"impl_item":     e.extractImpl,
		},
	}
	return e
}

func (e *RustExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "rust",
		ParsedAt: time.Now(),
	}
	if root == nil {
		return file, nil
	}

	ctx := &ExtractionContext{Source: source, File: file}
	file.Items = e.walker.Walk(ctx, root)
	return file, nil
}

func (e *RustExtractor) extractMod(ctx *ExtractionContext, node *sitter.Node, attrs []Attribute) Item {
	item := Item{
		Kind:     ItemMod,
		Name:     ctx.FieldText(node, "name"),
		Attrs:    attrs,
		Location: ctx.Location(node),
	}
	if body := node.ChildByFieldName("body"); body != nil {
		item.HasBody = true
		item.Items = e.walker.Walk(ctx, body)
	}
	return item
}

func (e *RustExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node, attrs []Attribute) Item {
	return Item{
		Kind:     ItemFn,
		Name:     ctx.FieldText(node, "name"),
		Attrs:    attrs,
		Location: ctx.Location(node),
	}
}

func (e *RustExtractor) extractType(kind ItemKind) ItemHandler {
	return func(ctx *ExtractionContext, node *sitter.Node, attrs []Attribute) Item {
		return Item{
			Kind:     kind,
			Name:     ctx.FieldText(node, "name"),
			Attrs:    attrs,
			Generics: e.extractGenerics(ctx, node.ChildByFieldName("type_parameters")),
			Location: ctx.Location(node),
		}
	}
}

func (e *RustExtractor) extractImpl(ctx *ExtractionContext, node *sitter.Node, attrs []Attribute) Item {
	return Item{
		Kind:     ItemImpl,
		Attrs:    attrs,
		Trait:    ctx.FieldText(node, "trait"),
		SelfType: ctx.FieldText(node, "type"),
		Location: ctx.Location(node),
	}
}

func (e *RustExtractor) extractGenerics(ctx *ExtractionContext, node *sitter.Node) []GenericParam {
	if node == nil {
		return nil
	}

	var params []GenericParam
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "attribute_item" {
			continue
		}
		text := collapseSpace(ctx.Text(child))
		if text == "" {
			continue
		}

		param := GenericParam{Kind: GenericType, Name: genericName(text)}
		switch {
		case child.Kind() == "const_parameter" || strings.HasPrefix(text, "const "):
			param.Kind = GenericConst
			param.Name = genericName(strings.TrimPrefix(text, "const "))
		case strings.HasPrefix(text, "'") || strings.Contains(child.Kind(), "lifetime"):
			param.Kind = GenericLifetime
		}
		params = append(params, param)
	}
	return params
}

// genericName cuts bounds and defaults off a parameter declaration.
func genericName(text string) string {
	if idx := strings.IndexAny(text, ":="); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func (e *RustExtractor) extractAttribute(ctx *ExtractionContext, node *sitter.Node) Attribute {
	text := ""
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() == "attribute" {
			text = ctx.Text(child)
			break
		}
	}
	if text == "" {
		text = strings.TrimSpace(ctx.Text(node))
		text = strings.TrimPrefix(text, "#")
		text = strings.TrimSpace(text)
		text = strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")
	}

	attr := ParseAttribute(text)
	attr.Location = ctx.Location(node)
	return attr
}

// ParseAttribute splits the body of an outer attribute (the text between
// `#[` and `]`) into its path and raw arguments.
func ParseAttribute(text string) Attribute {
	text = strings.TrimSpace(text)
	idx := strings.IndexAny(text, "([{=")
	if idx < 0 {
		return Attribute{Path: stripSpace(text)}
	}

	attr := Attribute{Path: stripSpace(text[:idx])}
	if text[idx] == '=' {
		attr.Value = strings.TrimSpace(text[idx+1:])
		return attr
	}

	attr.HasArgs = true
	end := matchingClose(text, idx)
	if end < 0 {
		// Keep the unbalanced tail; the consumer reports it when it parses Args.
		attr.Args = strings.TrimSpace(text[idx+1:])
		return attr
	}
	attr.Args = strings.TrimSpace(text[idx+1 : end])
	return attr
}

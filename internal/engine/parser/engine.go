package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ItemHandler converts a declaration node into an Item. attrs are the outer
// attributes that preceded the node in its declaration list.
type ItemHandler func(ctx *ExtractionContext, node *sitter.Node, attrs []Attribute) Item

// ExtractionContext carries shared state/helpers used by all extractors.
type ExtractionContext struct {
	Source []byte
	File   *File
}

// DeclarationWalker walks a declaration list and dispatches item handlers by
// node kind. Attribute and comment nodes are accumulated or skipped.
type DeclarationWalker struct {
	handlers      map[string]ItemHandler
	attributeKind string
	skipKinds     map[string]bool
	parseAttr     func(ctx *ExtractionContext, node *sitter.Node) Attribute
}

func (w *DeclarationWalker) Walk(ctx *ExtractionContext, list *sitter.Node) []Item {
	if list == nil {
		return nil
	}

	var (
		items   []Item
		pending []Attribute
	)
	for i := uint(0); i < list.NamedChildCount(); i++ {
		child := list.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind == w.attributeKind {
			pending = append(pending, w.parseAttr(ctx, child))
			continue
		}
		if w.skipKinds[kind] {
			continue
		}

		if handler, ok := w.handlers[kind]; ok {
			items = append(items, handler(ctx, child, pending))
		} else {
			items = append(items, Item{Kind: ItemOther, Location: ctx.Location(child)})
		}
		pending = nil
	}
	return items
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.File.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}

// FieldText returns the collapsed text of the named field, or "".
func (c *ExtractionContext) FieldText(node *sitter.Node, field string) string {
	if node == nil {
		return ""
	}
	return collapseSpace(c.Text(node.ChildByFieldName(field)))
}

// firstErrorNode returns the first ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil || !node.HasError() {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return node
}

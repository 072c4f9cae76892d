// # internal/engine/parser/types.go
package parser

import (
	"strings"
	"time"
)

// File is the declaration tree of one source file. It is not modified after
// the extractor returns it.
type File struct {
	Path     string
	Language string
	Items    []Item
	ParsedAt time.Time
}

type ItemKind int

const (
	ItemOther ItemKind = iota
	ItemMod
	ItemFn
	ItemStruct
	ItemEnum
	ItemImpl
)

func (k ItemKind) String() string {
	switch k {
	case ItemMod:
		return "mod"
	case ItemFn:
		return "fn"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemImpl:
		return "impl"
	default:
		return "other"
	}
}

// Item is one top-level or module-level declaration. Which fields are set
// depends on Kind:
//
//	ItemMod            Name, HasBody, Items
//	ItemFn             Name, Attrs
//	ItemStruct/Enum    Name, Attrs, Generics
//	ItemImpl           Trait (empty for inherent impls), SelfType
type Item struct {
	Kind     ItemKind
	Name     string
	Attrs    []Attribute
	Generics []GenericParam
	HasBody  bool
	Items    []Item
	Trait    string
	SelfType string
	Location Location
}

// Attribute is an outer attribute (`#[path(args)]` or `#[path = value]`).
// Args keeps the raw text between the outer delimiters; interpreting it is
// left to the consumer.
type Attribute struct {
	Path     string
	Args     string
	HasArgs  bool
	Value    string
	Location Location
}

func (a Attribute) Segments() []string {
	return strings.Split(a.Path, "::")
}

// IsIdent reports whether the attribute path is the single identifier name.
func (a Attribute) IsIdent(name string) bool {
	return a.Path == name
}

type GenericKind int

const (
	GenericLifetime GenericKind = iota
	GenericType
	GenericConst
)

func (k GenericKind) String() string {
	switch k {
	case GenericLifetime:
		return "lifetime"
	case GenericConst:
		return "const"
	default:
		return "type"
	}
}

type GenericParam struct {
	Kind GenericKind
	Name string
}

// HasNonLifetimeGenerics reports whether any parameter is a type or const parameter.
func HasNonLifetimeGenerics(params []GenericParam) bool {
	for _, p := range params {
		if p.Kind != GenericLifetime {
			return true
		}
	}
	return false
}

type Location struct {
	File   string
	Line   int
	Column int
}

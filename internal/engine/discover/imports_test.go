package discover

import (
	"reflect"
	"testing"
)

func TestExtractImports(t *testing.T) {
	source := []byte(`
use std::collections::HashMap;
use crate::models::Pet;
use crate::models::{Owner, Tag as Label};
pub use ::shared::Error;
pub(crate) use crate::paging::{
    self,
    Page,
    cursor::{Cursor, Token as PageToken},
};
use super::Sibling;

fn main() {
    let used = "use fake::Thing;";
}
`)

	got := ExtractImports(source, "crate")
	want := []Import{
		{Path: "std::collections::HashMap"},
		{Path: "crate::models::Pet"},
		{Path: "crate::models::Owner"},
		{Path: "crate::models::Tag", Alias: "Label"},
		{Path: "crate::shared::Error"},
		{Path: "crate::paging"},
		{Path: "crate::paging::Page"},
		{Path: "crate::paging::cursor::Cursor"},
		{Path: "crate::paging::cursor::Token", Alias: "PageToken"},
		{Path: "super::Sibling"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractImports mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestExtractImportsNamedCrate(t *testing.T) {
	got := ExtractImports([]byte("use ::api::Pet;\n"), "petstore")
	want := []Import{{Path: "petstore::api::Pet"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestImportString(t *testing.T) {
	if s := (Import{Path: "a::B"}).String(); s != "a::B" {
		t.Errorf("unexpected %q", s)
	}
	if s := (Import{Path: "a::B", Alias: "C"}).String(); s != "a::B as C" {
		t.Errorf("unexpected %q", s)
	}
}

func TestResolveImport(t *testing.T) {
	tests := []struct {
		name    string
		imports []Import
		module  string
		short   string
		want    string
	}{
		{
			name:    "MultipleModules",
			imports: []Import{{Path: "module1::module2::name"}, {Path: "module1::module2::other_name"}},
			module:  "module1::module2",
			short:   "name",
			want:    "module1::module2::name",
		},
		{
			name:    "SingleModule",
			imports: []Import{{Path: "module1::name"}, {Path: "module1::other_name"}},
			module:  "module1",
			short:   "name",
			want:    "module1::name",
		},
		{
			name:    "NoModule",
			imports: []Import{{Path: "name"}, {Path: "other_name"}},
			short:   "name",
			want:    "name",
		},
		{
			name:    "FirstMatchWins",
			imports: []Import{{Path: "a::Pet"}, {Path: "b::Pet"}},
			module:  "api",
			short:   "Pet",
			want:    "a::Pet",
		},
		{
			name:    "AliasStripped",
			imports: []Import{{Path: "models::Pet", Alias: "Animal"}},
			module:  "api",
			short:   "Animal",
			want:    "models::Pet",
		},
		{
			name:    "PartialPath",
			imports: []Import{{Path: "crate::models"}},
			module:  "crate::api",
			short:   "models::Pet",
			want:    "crate::models::Pet",
		},
		{
			name:   "UnresolvedPartialPath",
			module: "crate::api",
			short:  "other::Pet",
			want:   "other::Pet",
		},
		{
			name:   "LocalType",
			module: "crate::api",
			short:  "Pet",
			want:   "crate::api::Pet",
		},
		{
			name:   "AlreadyQualifiedByModule",
			module: "crate",
			short:  "crate_local",
			want:   "crate_local",
		},
		{
			name:    "EmptyName",
			imports: []Import{{Path: "a::B"}},
			module:  "crate",
			short:   "  ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveImport(tt.imports, tt.module, tt.short); got != tt.want {
				t.Errorf("ResolveImport(%q) = %q, want %q", tt.short, got, tt.want)
			}
		})
	}
}

func TestCurrentModule(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "module1::module2::name", want: "module1::module2"},
		{in: "module1::name", want: "module1"},
		{in: "name", want: ""},
	}
	for _, tt := range tests {
		if got := CurrentModule(tt.in); got != tt.want {
			t.Errorf("CurrentModule(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

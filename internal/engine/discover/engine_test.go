package discover

import (
	"context"
	"reflect"
	"testing"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/parser"
)

type memoryFile struct {
	path   string
	module string
	source string
}

// memoryLocator parses in-memory sources in the order given.
type memoryLocator struct {
	parser *parser.Parser
	files  map[string][]memoryFile
}

func newMemoryLocator(t *testing.T, files map[string][]memoryFile) *memoryLocator {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	p := parser.NewParser(loader)
	if err := p.RegisterDefaultExtractors(); err != nil {
		t.Fatal(err)
	}
	return &memoryLocator{parser: p, files: files}
}

func (l *memoryLocator) Locate(_ context.Context, root Root) ([]SourceFile, error) {
	var out []SourceFile
	for _, f := range l.files[root.Path] {
		tree, err := l.parser.ParseFile(f.path, []byte(f.source))
		if err != nil {
			return nil, err
		}
		out = append(out, SourceFile{Path: f.path, Module: f.module, Source: []byte(f.source), Tree: tree})
	}
	return out, nil
}

const petsSource = `
#[utoipa::path(get, path = "/pets")]
pub async fn list_pets() {}
`

const ownersSource = `
#[utoipa::path(get, path = "/owners")]
pub async fn list_owners() {}
`

func TestEngineDiscoverTwoFiles(t *testing.T) {
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"src/routes": {
			{path: "src/routes/owners.rs", module: "crate::routes::owners", source: ownersSource},
			{path: "src/routes/pets.rs", module: "crate::routes::pets", source: petsSource},
		},
	})
	engine := NewEngine(locator, DefaultParams())

	res, err := engine.Discover(context.Background(), []Root{{Path: "src/routes"}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"crate::routes::owners::list_owners", "crate::routes::pets::list_pets"}
	if !reflect.DeepEqual(res.Functions, want) {
		t.Errorf("functions = %v, want %v", res.Functions, want)
	}
	if res.Files != 2 {
		t.Errorf("expected 2 files, got %d", res.Files)
	}
}

func TestEngineDiscoverIgnoredFunction(t *testing.T) {
	ignored := `
#[utoipa::path(get, path = "/pets")]
#[utoipa_ignore]
pub async fn list_pets() {}
`
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"src": {
			{path: "src/owners.rs", module: "crate::owners", source: ownersSource},
			{path: "src/pets.rs", module: "crate::pets", source: ignored},
		},
	})

	res, err := NewEngine(locator, DefaultParams()).Discover(context.Background(), []Root{{Path: "src"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Functions) != 1 || res.Functions[0] != "crate::owners::list_owners" {
		t.Errorf("unexpected functions: %v", res.Functions)
	}
}

func TestEngineDiscoverDeterministic(t *testing.T) {
	source := `
use crate::models::Pet;

#[derive(utoipa::ToSchema)]
pub struct Error { message: String }

#[derive(ToSchema)]
#[aliases(PetPage = Page<Pet>)]
pub struct Page<T> { items: Vec<T> }

pub struct Custom;
impl utoipa::ToSchema for Custom {}

#[derive(ToResponse)]
pub struct NotFound;

mod v1 {
    #[utoipa::path(get, path = "/v1")]
    fn index() {}
}
`
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"src/lib.rs": {{path: "src/lib.rs", module: "crate", source: source}},
	})
	params := DefaultParams()
	params.FullPath = true
	engine := NewEngine(locator, params)
	roots := []Root{{Path: "src/lib.rs"}}

	first, err := engine.Discover(context.Background(), roots)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Discover(context.Background(), roots)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between runs:\n%+v\n%+v", first, second)
	}

	wantSchemas := []string{"crate::Error", "crate::Page<crate::models::Pet>", "crate::Custom"}
	if !reflect.DeepEqual(first.Schemas, wantSchemas) {
		t.Errorf("schemas = %v, want %v", first.Schemas, wantSchemas)
	}
	if !reflect.DeepEqual(first.Responses, []string{"crate::NotFound"}) {
		t.Errorf("responses = %v", first.Responses)
	}
	if !reflect.DeepEqual(first.Functions, []string{"crate::v1::index"}) {
		t.Errorf("functions = %v", first.Functions)
	}
}

func TestEngineDiscoverFailsFast(t *testing.T) {
	bad := `
#[derive(ToSchema)]
#[aliases(PetPage = Page<Pet, Extra>)]
pub struct Page<T> { items: Vec<T> }
`
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"a": {{path: "a/pets.rs", module: "crate::pets", source: petsSource}},
		"b": {{path: "b/page.rs", module: "crate::page", source: bad}},
	})

	res, err := NewEngine(locator, DefaultParams()).Discover(context.Background(), []Root{{Path: "a"}, {Path: "b"}})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.IsCode(err, errors.CodeGenericArity) {
		t.Errorf("expected GENERIC_ARITY_MISMATCH, got %v", err)
	}
	if len(res.Functions) != 0 || len(res.Items) != 0 {
		t.Errorf("expected empty result on failure, got %+v", res)
	}
}

func TestEngineDiscoverParseFailure(t *testing.T) {
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"src": {{path: "src/broken.rs", module: "crate::broken", source: "pub fn (\n"}},
	})

	_, err := NewEngine(locator, DefaultParams()).Discover(context.Background(), []Root{{Path: "src"}})
	if !errors.IsCode(err, errors.CodeParseFailure) {
		t.Errorf("expected PARSE_FAILURE, got %v", err)
	}
}

func TestEngineDiscoverCancelled(t *testing.T) {
	locator := newMemoryLocator(t, map[string][]memoryFile{
		"src": {{path: "src/pets.rs", module: "crate::pets", source: petsSource}},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewEngine(locator, DefaultParams()).Discover(ctx, []Root{{Path: "src"}}); err == nil {
		t.Error("expected cancellation error")
	}
}

package formats

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"utoipauto/internal/data/history"
	"utoipauto/internal/engine/discover"
)

func sampleData() Data {
	res := discover.Fold([]discover.Item{
		{Kind: discover.KindFn, Name: "crate::routes::get_pet"},
		{Kind: discover.KindFn, Name: "crate::routes::list_pets"},
		{Kind: discover.KindModel, Name: "crate::models::Pet"},
		{Kind: discover.KindModel, Name: "crate::models::Page<crate::models::Pet>"},
		{Kind: discover.KindCustomResponseImpl, Name: "crate::errors::NotFound"},
	})
	res.Files = 2
	return Data{Result: res}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("yaml", false); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	for _, name := range Names() {
		if _, err := New(name, false); err != nil {
			t.Fatalf("expected format %q to be supported: %v", name, err)
		}
	}
	if _, err := New(" JSON ", false); err != nil {
		t.Fatalf("expected format lookup to be case-insensitive: %v", err)
	}
}

func TestTSVGenerator(t *testing.T) {
	out, err := Render(FormatTSV, sampleData(), false)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if lines[0] != "Kind\tName" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 6 {
		t.Fatalf("expected 5 rows, got %d: %q", len(lines)-1, out)
	}
	if lines[1] != "fn\tcrate::routes::get_pet" {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if lines[5] != "custom_response_impl\tcrate::errors::NotFound" {
		t.Fatalf("unexpected last row %q", lines[5])
	}
}

func TestTSVGenerator_IncludesChanges(t *testing.T) {
	data := sampleData()
	data.Changes = &history.RunDiff{
		Added:   []history.Entry{{Bucket: history.BucketFunctions, Name: "crate::routes::list_pets"}},
		Removed: []history.Entry{{Bucket: history.BucketSchemas, Name: "crate::models::Owner"}},
	}
	out, err := NewTSVGenerator().Generate(data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "added_functions\tcrate::routes::list_pets\n") {
		t.Fatalf("expected added row, got %q", out)
	}
	if !strings.Contains(out, "removed_schemas\tcrate::models::Owner\n") {
		t.Fatalf("expected removed row, got %q", out)
	}
}

func TestJSONGenerator(t *testing.T) {
	out, err := Render(FormatJSON, sampleData(), false)
	if err != nil {
		t.Fatal(err)
	}
	var doc document
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if doc.Files != 2 || len(doc.Functions) != 2 || len(doc.Schemas) != 2 || len(doc.Responses) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Changes != nil {
		t.Fatal("expected changes to be omitted without history")
	}
}

func TestJSONGenerator_EmptyListsAreArrays(t *testing.T) {
	out, err := NewJSONGenerator().Generate(Data{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"functions": []`) {
		t.Fatalf("expected empty array for functions, got %s", out)
	}
}

func TestTOMLGenerator(t *testing.T) {
	data := sampleData()
	data.Changes = &history.RunDiff{
		Added: []history.Entry{{Bucket: history.BucketSchemas, Name: "crate::models::Pet"}},
	}
	out, err := Render(FormatTOML, data, false)
	if err != nil {
		t.Fatal(err)
	}
	var doc document
	if _, err := toml.Decode(out, &doc); err != nil {
		t.Fatalf("decode toml: %v\n%s", err, out)
	}
	if len(doc.Schemas) != 2 || doc.Schemas[1] != "crate::models::Page<crate::models::Pet>" {
		t.Fatalf("unexpected schemas: %+v", doc.Schemas)
	}
	if doc.Changes == nil || len(doc.Changes.Added) != 1 {
		t.Fatalf("expected one added change, got %+v", doc.Changes)
	}
}

func TestUtoipaGenerator(t *testing.T) {
	out, err := Render(FormatUtoipa, sampleData(), false)
	if err != nil {
		t.Fatal(err)
	}
	expected := "paths(crate::routes::get_pet, crate::routes::list_pets), " +
		"components(schemas(crate::models::Pet, crate::models::Page<crate::models::Pet>), " +
		"responses(crate::errors::NotFound))\n"
	if out != expected {
		t.Fatalf("expected %q, got %q", expected, out)
	}

	empty, err := NewUtoipaGenerator().Generate(Data{})
	if err != nil {
		t.Fatal(err)
	}
	if empty != "paths(), components(schemas(), responses())\n" {
		t.Fatalf("unexpected empty output %q", empty)
	}
}

func TestTextGenerator(t *testing.T) {
	data := sampleData()
	data.Changes = &history.RunDiff{
		Removed: []history.Entry{{Bucket: history.BucketSchemas, Name: "crate::models::Owner"}},
	}
	out, err := NewTextGenerator(false).Generate(data)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"utoipauto 2 files scanned",
		"Paths (2)",
		"  crate::routes::get_pet",
		"Schemas (2)",
		"Responses (1)",
		"Changes since last run (+0 -1)",
		"- schemas crate::models::Owner",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	empty, err := NewTextGenerator(false).Generate(Data{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(empty, "  none\n") != 3 {
		t.Fatalf("expected three empty sections, got:\n%s", empty)
	}
}

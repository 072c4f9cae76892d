// Package formats renders a discovery result for humans and tools.
package formats

import (
	"fmt"
	"strings"

	"utoipauto/internal/data/history"
	"utoipauto/internal/engine/discover"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatTOML   = "toml"
	FormatTSV    = "tsv"
	FormatUtoipa = "utoipa"
)

// Data is everything a generator may render. Changes is nil when no earlier
// run was available to compare against.
type Data struct {
	Result  discover.Result
	Changes *history.RunDiff
}

type Generator interface {
	Generate(data Data) (string, error)
}

// Names lists the supported formats in display order.
func Names() []string {
	return []string{FormatText, FormatJSON, FormatTOML, FormatTSV, FormatUtoipa}
}

// New returns the generator for format. color only affects the text format.
func New(format string, color bool) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return NewTextGenerator(color), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatTOML:
		return NewTOMLGenerator(), nil
	case FormatTSV:
		return NewTSVGenerator(), nil
	case FormatUtoipa:
		return NewUtoipaGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (supported: %s)", format, strings.Join(Names(), ", "))
	}
}

func Render(format string, data Data, color bool) (string, error) {
	gen, err := New(format, color)
	if err != nil {
		return "", err
	}
	return gen.Generate(data)
}

// document is the serialised shape shared by the json and toml formats.
type document struct {
	Files     int      `json:"files" toml:"files"`
	Functions []string `json:"functions" toml:"functions"`
	Schemas   []string `json:"schemas" toml:"schemas"`
	Responses []string `json:"responses" toml:"responses"`
	Changes   *changes `json:"changes,omitempty" toml:"changes,omitempty"`
}

type changes struct {
	Added   []change `json:"added" toml:"added"`
	Removed []change `json:"removed" toml:"removed"`
}

type change struct {
	Bucket string `json:"bucket" toml:"bucket"`
	Name   string `json:"name" toml:"name"`
}

func newDocument(data Data) document {
	doc := document{
		Files:     data.Result.Files,
		Functions: nonNil(data.Result.Functions),
		Schemas:   nonNil(data.Result.Schemas),
		Responses: nonNil(data.Result.Responses),
	}
	if data.Changes != nil {
		doc.Changes = &changes{
			Added:   toChanges(data.Changes.Added),
			Removed: toChanges(data.Changes.Removed),
		}
	}
	return doc
}

func toChanges(entries []history.Entry) []change {
	out := make([]change, 0, len(entries))
	for _, e := range entries {
		out = append(out, change{Bucket: e.Bucket, Name: e.Name})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package formats

import (
	"strings"

	"github.com/BurntSushi/toml"
)

type TOMLGenerator struct{}

func NewTOMLGenerator() *TOMLGenerator {
	return &TOMLGenerator{}
}

func (g *TOMLGenerator) Generate(data Data) (string, error) {
	var buf strings.Builder
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(newDocument(data)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

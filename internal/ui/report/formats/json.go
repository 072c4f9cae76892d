package formats

import (
	"encoding/json"
)

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (j *JSONGenerator) Generate(data Data) (string, error) {
	out, err := json.MarshalIndent(newDocument(data), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

package formats

import (
	"strings"
)

// UtoipaGenerator renders the arguments that go inside `#[openapi(...)]`:
//
//	paths(crate::routes::get_pet), components(schemas(crate::Pet), responses())
type UtoipaGenerator struct{}

func NewUtoipaGenerator() *UtoipaGenerator {
	return &UtoipaGenerator{}
}

func (u *UtoipaGenerator) Generate(data Data) (string, error) {
	var b strings.Builder
	b.WriteString("paths(")
	b.WriteString(strings.Join(data.Result.Functions, ", "))
	b.WriteString("), components(schemas(")
	b.WriteString(strings.Join(data.Result.Schemas, ", "))
	b.WriteString("), responses(")
	b.WriteString(strings.Join(data.Result.Responses, ", "))
	b.WriteString("))\n")
	return b.String(), nil
}

package formats

import (
	"fmt"
	"strings"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// Generate writes one row per discovered item in discovery order.
func (t *TSVGenerator) Generate(data Data) (string, error) {
	var buf strings.Builder

	buf.WriteString("Kind\tName\n")
	for _, item := range data.Result.Items {
		buf.WriteString(fmt.Sprintf("%s\t%s\n", item.Kind, item.Name))
	}

	if data.Changes != nil {
		for _, e := range data.Changes.Added {
			buf.WriteString(fmt.Sprintf("added_%s\t%s\n", e.Bucket, e.Name))
		}
		for _, e := range data.Changes.Removed {
			buf.WriteString(fmt.Sprintf("removed_%s\t%s\n", e.Bucket, e.Name))
		}
	}

	return buf.String(), nil
}

package discover

import (
	"utoipauto/internal/engine/parser"
)

// Walk classifies the declarations of one scope. module is the qualified
// path of that scope; modules with a body are descended into with their name
// appended. Declarations of any other kind contribute nothing.
//
// The first malformed annotation aborts the walk.
func Walk(module string, items []parser.Item, imports []Import, params Params) ([]Item, error) {
	var out []Item
	for _, item := range items {
		switch item.Kind {
		case parser.ItemMod:
			if !item.HasBody {
				continue
			}
			nested, err := Walk(buildPath(module, item.Name), item.Items, imports, params)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)

		case parser.ItemFn:
			out = append(out, matchFunction(module, item, params)...)

		case parser.ItemStruct, parser.ItemEnum:
			matched, err := matchType(module, item, imports, params)
			if err != nil {
				return nil, err
			}
			out = append(out, matched...)

		case parser.ItemImpl:
			out = append(out, matchImpl(module, item, params)...)
		}
	}
	return out, nil
}

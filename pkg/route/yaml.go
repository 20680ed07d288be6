package route

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// LoadYAML reads route definitions from a YAML mapping of pattern to
// parameter set. Document order is the match order:
//
//	/:
//	  controller: status
//	  action: index
//	/user/:user_name:
//	  controller: status
//	  action: user
func LoadYAML(r io.Reader) ([]Definition, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected mapping at line %d", ErrInvalidDocument, root.Line)
	}

	// Mapping content alternates key and value nodes.
	defs := make([]Definition, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]

		var params Params
		if err := val.Decode(&params); err != nil {
			return nil, fmt.Errorf("%w: route %q: %v", ErrInvalidDocument, key.Value, err)
		}
		defs = append(defs, Definition{Pattern: key.Value, Params: params})
	}

	return defs, nil
}

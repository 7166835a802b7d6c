package docmodel

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

type documentFile struct {
	Objects []map[string]any `yaml:"objects"`
}

// LoadFile reads a YAML or JSON document. The file holds either a mapping
// with an "objects" list or a bare list of objects.
func LoadFile(path string) ([]*Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "docmodel: read %s", path)
	}
	objects, err := Decode(data)
	if err != nil {
		return nil, errors.WithDetailf(err, "file: %s", path)
	}
	return objects, nil
}

// Decode parses document bytes.
func Decode(data []byte) ([]*Object, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, errors.Wrap(err, "docmodel: parse document")
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]

	var raw []map[string]any
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "docmodel: decode object list")
		}
	case yaml.MappingNode:
		var doc documentFile
		if err := root.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "docmodel: decode document")
		}
		raw = doc.Objects
	default:
		return nil, errors.Newf("docmodel: expected a list of objects or an objects mapping at line %d", root.Line)
	}

	objects := make([]*Object, 0, len(raw))
	for i, attrs := range raw {
		if attrs == nil {
			return nil, errors.Newf("docmodel: object %d is empty", i)
		}
		objects = append(objects, NewObject(attrs))
	}
	return objects, nil
}

package resource

import (
	"github.com/teranos/declgen/errors"
	"gopkg.in/yaml.v3"
)

// parseYAML reads a mapping of entry name to a string or to a
// {value, type, comment} mapping, preserving document order.
func parseYAML(data []byte) ([]RawEntry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.Newf("line %d: expected a mapping of entries", doc.Line)
	}

	entries := make([]RawEntry, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name, value := doc.Content[i].Value, doc.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				entries = append(entries, RawEntry{Name: name})
				continue
			}
			entries = append(entries, RawEntry{Name: name, Value: value.Value, HasValue: true})
		case yaml.MappingNode:
			var te tableEntry
			if err := value.Decode(&te); err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			entries = append(entries, te.raw(name))
		default:
			return nil, errors.Newf("line %d: entry %s must be a string or a mapping", value.Line, name)
		}
	}
	return entries, nil
}

package resource

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/teranos/declgen/errors"
)

// parseJSON reads an object of entry name to a string or to a
// {"value", "type", "comment"} object. Entries come back sorted by name since
// JSON objects are unordered.
func parseJSON(data []byte) ([]RawEntry, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]RawEntry, 0, len(names))
	for _, name := range names {
		raw := bytes.TrimSpace(doc[name])
		switch {
		case bytes.Equal(raw, []byte("null")):
			entries = append(entries, RawEntry{Name: name})
		case len(raw) > 0 && raw[0] == '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			entries = append(entries, RawEntry{Name: name, Value: s, HasValue: true})
		case len(raw) > 0 && raw[0] == '{':
			var te tableEntry
			if err := json.Unmarshal(raw, &te); err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			entries = append(entries, te.raw(name))
		default:
			return nil, errors.Newf("entry %s must be a string or an object", name)
		}
	}
	return entries, nil
}

package resource

import (
	"github.com/BurntSushi/toml"
	"github.com/teranos/declgen/errors"
)

// parseTOML reads tables where each top-level key is an entry, either as a
// bare string or as a table:
//
//	Hello = "Hi"
//
//	[Farewell]
//	value = "Bye"
//	comment = "shown on logout"
func parseTOML(data []byte) ([]RawEntry, error) {
	var doc map[string]toml.Primitive
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}

	var entries []RawEntry
	// md.Keys preserves document order.
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		name := key[0]
		prim := doc[name]
		switch md.Type(name) {
		case "String":
			var s string
			if err := md.PrimitiveDecode(prim, &s); err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			entries = append(entries, RawEntry{Name: name, Value: s, HasValue: true})
		case "Hash":
			var te tableEntry
			if err := md.PrimitiveDecode(prim, &te); err != nil {
				return nil, errors.Wrapf(err, "entry %s", name)
			}
			entries = append(entries, te.raw(name))
		default:
			return nil, errors.Newf("entry %s: expected a string or a table, got %s", name, md.Type(name))
		}
	}
	return entries, nil
}

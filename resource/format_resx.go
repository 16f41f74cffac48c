package resource

import (
	"bytes"
	"encoding/xml"
)

// resxDocument is the subset of the .resx schema that carries entries:
//
//	<root>
//	  <data name="Hello" type="..."><value>Hi</value><comment>greeting</comment></data>
//	</root>
type resxDocument struct {
	XMLName xml.Name   `xml:"root"`
	Data    []resxData `xml:"data"`
}

type resxData struct {
	Name    string  `xml:"name,attr"`
	Type    string  `xml:"type,attr"`
	Value   *string `xml:"value"`
	Comment string  `xml:"comment"`
}

func parseResx(data []byte) ([]RawEntry, error) {
	var doc resxDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	entries := make([]RawEntry, 0, len(doc.Data))
	for _, d := range doc.Data {
		e := RawEntry{Name: d.Name, Type: d.Type, Comment: d.Comment}
		if d.Value != nil {
			e.Value, e.HasValue = *d.Value, true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

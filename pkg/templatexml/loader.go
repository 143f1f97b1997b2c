// Package templatexml loads a complete, well-formed Havok XML template file
// into a template.Node tree. Unlike pkg/nemesisxml (which scans a patch
// fragment line by line because it is not well-formed XML), a template file
// is complete and well-formed, so this package tokenizes it with
// encoding/xml rather than hand-rolling a scanner.
package templatexml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// Load reads and parses the Havok XML template file at path into a Node
// tree keyed by each top-level object's Nemesis identifier (its "name"
// attribute), matching the identifier namespace pkg/nemesisxml's patch
// paths address.
func Load(path string) (*template.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("templatexml: opening %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode parses Havok XML template content from r. path is used only for
// error messages.
func Decode(r io.Reader, path string) (*template.Node, error) {
	dec := xml.NewDecoder(r)

	root := template.NewObject()

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("templatexml: %s: %w", path, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "hkobject" {
			continue
		}
		id, class := objectAttrs(start)
		obj, err := decodeObject(dec, class)
		if err != nil {
			return nil, fmt.Errorf("templatexml: %s: object %s: %w", path, id, err)
		}
		root.Object = append(root.Object, template.Member{Key: id, Value: obj})
	}

	return root, nil
}

func objectAttrs(start xml.StartElement) (id, class string) {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			id = a.Value
		case "class":
			class = a.Value
		}
	}
	return id, class
}

// decodeObject reads hkparam children until the matching </hkobject>,
// building an Object node whose members are the object's fields plus a
// synthetic "class" field carrying the Havok class name.
func decodeObject(dec *xml.Decoder, class string) (*template.Node, error) {
	obj := template.NewObject(
		template.Member{Key: "class", Value: template.NewBorrowedStr(class)},
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "hkparam" {
				name, numElements := paramAttrs(t)
				val, err := decodeParam(dec, numElements)
				if err != nil {
					return nil, err
				}
				obj.Object = append(obj.Object, template.Member{Key: name, Value: val})
			} else if t.Name.Local == "hkobject" {
				// Nested anonymous object (array-of-struct element handled
				// by decodeParam instead); skip at this level defensively.
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "hkobject" {
				return obj, nil
			}
		}
	}
}

func paramAttrs(start xml.StartElement) (name string, numElements int) {
	numElements = -1
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "name":
			name = a.Value
		case "numelements":
			if n, err := strconv.Atoi(a.Value); err == nil {
				numElements = n
			}
		}
	}
	return name, numElements
}

// decodeParam reads one hkparam's content up to its closing tag. A field
// carrying numelements is an array; its items are either nested hkobject
// elements or whitespace-separated scalar/string tokens.
func decodeParam(dec *xml.Decoder, numElements int) (*template.Node, error) {
	if numElements < 0 {
		return decodeScalarParam(dec)
	}

	var items []*template.Node
	var textBuf strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "hkobject" {
				id, class := objectAttrs(t)
				obj, err := decodeObject(dec, class)
				if err != nil {
					return nil, err
				}
				if id != "" {
					obj.Object = append(obj.Object, template.Member{Key: "name", Value: template.NewBorrowedStr(id)})
				}
				items = append(items, obj)
			}
		case xml.CharData:
			textBuf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "hkparam" {
				if len(items) == 0 {
					items = splitScalars(textBuf.String())
				}
				return template.NewArray(items...), nil
			}
		}
	}
}

func decodeScalarParam(dec *xml.Decoder) (*template.Node, error) {
	var textBuf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			textBuf.Write(t)
		case xml.EndElement:
			if t.Name.Local == "hkparam" {
				return parseScalar(strings.TrimSpace(textBuf.String())), nil
			}
		}
	}
}

func splitScalars(s string) []*template.Node {
	fields := strings.Fields(s)
	out := make([]*template.Node, len(fields))
	for i, f := range fields {
		out[i] = parseScalar(f)
	}
	return out
}

func parseScalar(s string) *template.Node {
	if s == "" {
		return template.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return template.NewI64(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return template.NewF64(f)
	}
	if s == "true" || s == "false" {
		return template.NewBool(s == "true")
	}
	return template.NewBorrowedStr(s)
}

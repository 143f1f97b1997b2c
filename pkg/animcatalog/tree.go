package animcatalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// LoadTree parses a pristine catalog file's content into a template.Node
// tree shaped the way ToPatches addresses it: a top-level object keyed by
// "#dddd" block identifiers, each block an object holding its schema fields
// plus one array field (arrayField[kind]) of string items.
//
// A block is: a bare-integer id line, one line per schema[kind] field, a
// bare-integer count line, then that many array-item lines.
func LoadTree(kind Kind, content string) (*template.Node, error) {
	lines := strings.Split(content, "\n")
	fields := schema[kind]
	array := arrayField[kind]

	root := template.NewObject()

	i := 0
	next := func() (string, bool) {
		for i < len(lines) {
			t := strings.TrimSpace(lines[i])
			i++
			if t != "" {
				return t, true
			}
		}
		return "", false
	}

	for {
		idLine, ok := next()
		if !ok {
			break
		}
		id, err := strconv.Atoi(idLine)
		if err != nil {
			return nil, fmt.Errorf("animcatalog: expected block id, got %q", idLine)
		}

		members := make([]template.Member, 0, len(fields)+1)
		for _, f := range fields {
			v, ok := next()
			if !ok {
				return nil, fmt.Errorf("animcatalog: block %d: missing field %q", id, f)
			}
			members = append(members, template.Member{Key: f, Value: template.NewBorrowedStr(v)})
		}

		countLine, ok := next()
		if !ok {
			return nil, fmt.Errorf("animcatalog: block %d: missing %s count", id, array)
		}
		count, err := strconv.Atoi(countLine)
		if err != nil {
			return nil, fmt.Errorf("animcatalog: block %d: invalid %s count %q", id, array, countLine)
		}
		items := make([]*template.Node, 0, count)
		for n := 0; n < count; n++ {
			v, ok := next()
			if !ok {
				return nil, fmt.Errorf("animcatalog: block %d: expected %d %s entries, found %d", id, count, array, n)
			}
			items = append(items, template.NewBorrowedStr(v))
		}
		members = append(members, template.Member{Key: array, Value: template.NewArray(items...)})

		root.Object = append(root.Object, template.Member{Key: blockKey(id), Value: template.NewObject(members...)})
	}

	return root, nil
}

// SerializeTree regenerates catalog text from a merged tree, preserving
// block order and recomputing counts. Any block key not already a
// well-formed "#dddd" identifier (one introduced by a patch's Add) is
// assigned a fresh id from alloc only after every block id already
// present has been registered against alloc, so fresh ids never collide
// with ids retained from the pristine file.
func SerializeTree(kind Kind, root *template.Node, alloc *ClipIDAllocator) (string, error) {
	fields := schema[kind]
	array := arrayField[kind]

	for _, m := range root.Object {
		if id, ok := parseBlockKey(m.Key); ok {
			alloc.Register(id)
		}
	}

	var b strings.Builder
	for _, m := range root.Object {
		id, ok := parseBlockKey(m.Key)
		if !ok {
			next, avail := alloc.Next()
			if !avail {
				return "", fmt.Errorf("animcatalog: clip id pool exhausted assigning block %q", m.Key)
			}
			id = next
		}
		fmt.Fprintln(&b, id)

		block := m.Value
		for _, f := range fields {
			v := block.Get(f)
			if v == nil {
				return "", fmt.Errorf("animcatalog: block %d: missing field %q", id, f)
			}
			fmt.Fprintln(&b, scalarText(v))
		}

		items := block.Get(array)
		if items == nil || items.Kind != template.KindArray {
			return "", fmt.Errorf("animcatalog: block %d: missing array field %q", id, array)
		}
		fmt.Fprintln(&b, len(items.Array))
		for _, it := range items.Array {
			fmt.Fprintln(&b, scalarText(it))
		}
	}

	return b.String(), nil
}

func parseBlockKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "#") {
		return 0, false
	}
	id, err := strconv.Atoi(key[1:])
	if err != nil {
		return 0, false
	}
	return id, true
}

func scalarText(n *template.Node) string {
	switch n.Kind {
	case template.KindStr:
		return n.Str
	case template.KindI64:
		return strconv.FormatInt(n.I64, 10)
	case template.KindF64:
		return strconv.FormatFloat(n.F64, 'g', -1, 64)
	case template.KindBool:
		return strconv.FormatBool(n.Bool)
	default:
		return ""
	}
}

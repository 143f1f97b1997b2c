package codec

import "github.com/sardonyx-sard/dmerge/pkg/template"

var refPattern = func(s string) bool {
	return len(s) > 1 && s[0] == '#'
}

// TopologicalOrder returns root's top-level object keys ordered so that
// every object appears before any other object that references it by its
// #dddd identifier, ties broken by on-disk (insertion) order. Reference
// edges are detected heuristically: any string-valued leaf whose value
// looks like an object identifier is treated as a pointer to that object.
func TopologicalOrder(root *template.Node) []string {
	if root == nil || root.Kind != template.KindObject {
		return nil
	}

	order := make([]string, 0, len(root.Object))
	index := map[string]int{}
	for i, m := range root.Object {
		order = append(order, m.Key)
		index[m.Key] = i
	}

	refs := make(map[string][]string, len(order))
	for _, m := range root.Object {
		refs[m.Key] = collectRefs(m.Value, index)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(order))
	result := make([]string, 0, len(order))

	var visit func(key string)
	visit = func(key string) {
		if state[key] == visited || state[key] == visiting {
			return
		}
		state[key] = visiting
		for _, dep := range refs[key] {
			visit(dep)
		}
		state[key] = visited
		result = append(result, key)
	}

	for _, key := range order {
		visit(key)
	}
	return result
}

func collectRefs(n *template.Node, known map[string]int) []string {
	var out []string
	var walk func(n *template.Node)
	walk = func(n *template.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case template.KindStr:
			if refPattern(n.Str) {
				if _, ok := known[n.Str]; ok {
					out = append(out, n.Str)
				}
			}
		case template.KindArray:
			for _, c := range n.Array {
				walk(c)
			}
		case template.KindObject:
			for _, m := range n.Object {
				walk(m.Value)
			}
		}
	}
	walk(n)
	return out
}

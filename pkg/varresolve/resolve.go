// Package varresolve implements C8: resolving Nemesis variable literals
// against a behavior graph's string-data object, then rewriting synthetic
// object identifiers to unique #dddd forms.
package varresolve

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

const stringDataClass = "hkbBehaviorGraphStringData"

var (
	reEventID    = regexp.MustCompile(`\$eventID\[([^\]]*)\]\$`)
	reVariableID = regexp.MustCompile(`\$variableID\[([^\]]*)\]\$`)
	reSyntheticID = regexp.MustCompile(`^#\d+$`)
)

// UnknownVariableError reports an $eventID[...]$/$variableID[...]$ literal
// whose name has no entry in the resolved map.
type UnknownVariableError struct {
	Literal string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("varresolve: unknown variable literal %q", e.Literal)
}

// NameMaps holds the event/variable name→index maps discovered from one
// behavior graph's string-data object.
type NameMaps struct {
	Events    map[string]int
	Variables map[string]int
}

// FindStringDataObjectID returns hint if non-empty (the identifier C2
// recorded while parsing, if any patch touched the string-data object), or
// else scans root for the unique object whose class is
// hkbBehaviorGraphStringData.
func FindStringDataObjectID(root *template.Node, hint string) (string, bool) {
	if hint != "" {
		return hint, true
	}
	if root == nil || root.Kind != template.KindObject {
		return "", false
	}
	for _, m := range root.Object {
		obj := m.Value
		if obj == nil || obj.Kind != template.KindObject {
			continue
		}
		if class := obj.Get("class"); class != nil && class.IsString() && class.Str == stringDataClass {
			return m.Key, true
		}
	}
	return "", false
}

// BuildNameMaps reads eventNames/variableNames off the string-data object
// (addressed by objectID within root) and returns name→index maps, indices
// being positions in the post-apply array.
func BuildNameMaps(root *template.Node, objectID string) (*NameMaps, error) {
	obj := root.Get(objectID)
	if obj == nil {
		return nil, fmt.Errorf("varresolve: string-data object %q not found", objectID)
	}

	maps := &NameMaps{Events: map[string]int{}, Variables: map[string]int{}}

	if events := obj.Get("eventNames"); events != nil && events.Kind == template.KindArray {
		for i, n := range events.Array {
			if n.IsString() {
				maps.Events[n.Str] = i
			}
		}
	}
	if vars := obj.Get("variableNames"); vars != nil && vars.Kind == template.KindArray {
		for i, n := range vars.Array {
			if n.IsString() {
				maps.Variables[n.Str] = i
			}
		}
	}
	return maps, nil
}

// RewriteVariables walks root in place, replacing every string leaf that
// matches $eventID[name]$ or $variableID[name]$ with the decimal index of
// name in the corresponding map.
func RewriteVariables(root *template.Node, maps *NameMaps) error {
	return walkStrings(root, func(n *template.Node) error {
		if m := reEventID.FindStringSubmatch(n.Str); m != nil {
			idx, ok := maps.Events[m[1]]
			if !ok {
				return &UnknownVariableError{Literal: m[0]}
			}
			n.Str = strconv.Itoa(idx)
			return nil
		}
		if m := reVariableID.FindStringSubmatch(n.Str); m != nil {
			idx, ok := maps.Variables[m[1]]
			if !ok {
				return &UnknownVariableError{Literal: m[0]}
			}
			n.Str = strconv.Itoa(idx)
			return nil
		}
		return nil
	})
}

// RewriteSyntheticIDs treats root's top-level member keys as the Nemesis
// object-identifier namespace (the same "name" attribute pkg/nemesisxml
// uses to build a patch's path), and assigns each key that is not already a
// well-formed #dddd identifier the smallest unused non-negative integer id.
// The rewrite is applied to the member's own key, its "name" field value
// (when present and equal to the old key), and any string-valued pointer
// field elsewhere in the tree that references the old key.
func RewriteSyntheticIDs(root *template.Node) {
	if root == nil || root.Kind != template.KindObject {
		return
	}

	used := map[int]bool{}
	var synthetic []string
	for _, m := range root.Object {
		if reSyntheticID.MatchString(m.Key) {
			if id, err := strconv.Atoi(m.Key[1:]); err == nil {
				used[id] = true
			}
		} else {
			synthetic = append(synthetic, m.Key)
		}
	}
	if len(synthetic) == 0 {
		return
	}
	sort.Strings(synthetic)

	rewrite := map[string]string{}
	next := 0
	nextID := func() int {
		for used[next] {
			next++
		}
		id := next
		used[id] = true
		return id
	}
	for _, key := range synthetic {
		rewrite[key] = formatID(nextID())
	}

	for i := range root.Object {
		if repl, ok := rewrite[root.Object[i].Key]; ok {
			root.Object[i].Key = repl
		}
	}

	var apply func(n *template.Node)
	apply = func(n *template.Node) {
		if n == nil {
			return
		}
		switch n.Kind {
		case template.KindObject:
			for i := range n.Object {
				if n.Object[i].Value.IsString() {
					if repl, ok := rewrite[n.Object[i].Value.Str]; ok {
						n.Object[i].Value.Str = repl
					}
				}
				apply(n.Object[i].Value)
			}
		case template.KindArray:
			for _, c := range n.Array {
				apply(c)
			}
		}
	}
	apply(root)
}

func formatID(id int) string {
	if id <= 9999 {
		return fmt.Sprintf("#%04d", id)
	}
	return fmt.Sprintf("#%d", id)
}

func walkStrings(n *template.Node, fn func(*template.Node) error) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case template.KindStr:
		return fn(n)
	case template.KindArray:
		for _, c := range n.Array {
			if err := walkStrings(c, fn); err != nil {
				return err
			}
		}
	case template.KindObject:
		for _, m := range n.Object {
			if err := walkStrings(m.Value, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Package applyengine implements C7: interpreting a merge plan against one
// template tree, mutating it in place.
package applyengine

import (
	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/mergeplan"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// Apply mutates root according to every point and sequence operation in
// plan. A single failing operation is recorded and the engine continues
// with the rest of the plan rather than aborting the whole template.
func Apply(root *template.Node, plan *mergeplan.Plan) []error {
	var errs []error

	for _, entry := range plan.Points {
		if err := applyPoint(root, plan.TemplateKey, entry); err != nil {
			errs = append(errs, err)
		}
	}

	for _, path := range mergeplan.ExecutionOrder(plan) {
		for _, entry := range plan.Sequences[path] {
			if err := applySeq(root, plan.TemplateKey, entry); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errs
}

func applyPoint(root *template.Node, templateKey string, entry mergeplan.PointEntry) error {
	path := entry.Patch.Path
	if len(path) == 0 {
		return &OpError{TemplateKey: templateKey, Path: entry.Path, Kind: KindInvalidTarget, Reason: "empty path"}
	}

	parent, last, err := walkToParent(root, path, templateKey, entry.Path)
	if err != nil {
		return err
	}

	switch entry.Op {
	case jsonpatch.OpAdd:
		return applyAdd(parent, last, entry.Patch.Value, templateKey, entry.Path)
	case jsonpatch.OpRemove:
		return applyRemove(parent, last, templateKey, entry.Path)
	case jsonpatch.OpReplace:
		return applyReplace(parent, last, entry.Patch.Value, templateKey, entry.Path)
	default:
		return &OpError{TemplateKey: templateKey, Path: entry.Path, Kind: KindInvalidTarget, Reason: "unknown point op"}
	}
}

func walkToParent(root *template.Node, path template.Path, templateKey, displayPath string) (*template.Node, template.Segment, error) {
	cur := root
	for _, seg := range path[:len(path)-1] {
		if seg.IsIndex {
			if cur.Kind != template.KindArray {
				return nil, template.Segment{}, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected array"}
			}
			if seg.Index < 0 || seg.Index >= len(cur.Array) {
				return nil, template.Segment{}, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindIndexOutOfBounds, Reason: "intermediate index out of bounds"}
			}
			cur = cur.Array[seg.Index]
			continue
		}
		if cur.Kind != template.KindObject {
			return nil, template.Segment{}, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected object"}
		}
		next := cur.Get(seg.Key)
		if next == nil {
			return nil, template.Segment{}, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "intermediate key not found: " + seg.Key}
		}
		cur = next
	}
	last, _ := path.Last()
	return cur, last, nil
}

func applyAdd(parent *template.Node, last template.Segment, value *template.Node, templateKey, displayPath string) error {
	if last.IsIndex {
		if parent.Kind != template.KindArray {
			return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected array"}
		}
		if last.Index < 0 || last.Index > len(parent.Array) {
			return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindIndexOutOfBounds, Reason: "add index beyond array length"}
		}
		parent.Array = insertAt(parent.Array, last.Index, value)
		return nil
	}
	if parent.Kind != template.KindObject {
		return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected object"}
	}
	if parent.HasKey(last.Key) {
		return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindDuplicateKey, Reason: "key already exists: " + last.Key}
	}
	parent.Object = append(parent.Object, template.Member{Key: last.Key, Value: value, Owned: true})
	return nil
}

func applyRemove(parent *template.Node, last template.Segment, templateKey, displayPath string) error {
	if last.IsIndex {
		if parent.Kind != template.KindArray || last.Index < 0 || last.Index >= len(parent.Array) {
			return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "remove index not found"}
		}
		parent.Array = removeAt(parent.Array, last.Index)
		return nil
	}
	if parent.Kind != template.KindObject {
		return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected object"}
	}
	for i, m := range parent.Object {
		if m.Key == last.Key {
			parent.Object = append(parent.Object[:i], parent.Object[i+1:]...)
			return nil
		}
	}
	return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "remove key not found: " + last.Key}
}

func applyReplace(parent *template.Node, last template.Segment, value *template.Node, templateKey, displayPath string) error {
	if last.IsIndex {
		if parent.Kind != template.KindArray || last.Index < 0 || last.Index >= len(parent.Array) {
			return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "replace index not found"}
		}
		parent.Array[last.Index] = value
		return nil
	}
	if parent.Kind != template.KindObject {
		return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected object"}
	}
	for i, m := range parent.Object {
		if m.Key == last.Key {
			parent.Object[i].Value = value
			return nil
		}
	}
	return &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "replace key not found: " + last.Key}
}

func applySeq(root *template.Node, templateKey string, entry mergeplan.SeqEntry) error {
	path := entry.Patch.Path
	arr, err := walkToNode(root, path, templateKey, entry.Path)
	if err != nil {
		return err
	}
	if arr.Kind != template.KindArray {
		return &OpError{TemplateKey: templateKey, Path: entry.Path, Kind: KindInvalidTarget, Reason: "sequence op target is not an array"}
	}

	length := len(arr.Array)
	lo, hi := entry.Patch.Range.Resolve(length)

	switch entry.Patch.Op {
	case jsonpatch.SeqAdd:
		if lo >= length {
			arr.Array = append(arr.Array, entry.Patch.Values...)
			return nil
		}
		arr.Array = spliceInsert(arr.Array, lo, entry.Patch.Values)
		return nil

	case jsonpatch.SeqReplace:
		s := minInt(lo, length)
		e := minInt(hi, length)
		n := e - s
		if n < 0 {
			n = 0
		}
		values := entry.Patch.Values
		var first, rest []*template.Node
		if len(values) >= n {
			first, rest = values[:n], values[n:]
		} else {
			first = values
		}
		arr.Array = spliceReplace(arr.Array, s, e, first)
		if len(rest) > 0 {
			arr.Array = append(arr.Array, rest...)
		}
		return nil

	case jsonpatch.SeqRemove:
		s := minInt(lo, length)
		e := minInt(hi, length)
		if e <= s {
			return nil
		}
		arr.Array = append(arr.Array[:s:s], arr.Array[e:]...)
		return nil

	default:
		return &OpError{TemplateKey: templateKey, Path: entry.Path, Kind: KindInvalidTarget, Reason: "unknown sequence op"}
	}
}

func walkToNode(root *template.Node, path template.Path, templateKey, displayPath string) (*template.Node, error) {
	cur := root
	for _, seg := range path {
		if seg.IsIndex {
			if cur.Kind != template.KindArray || seg.Index < 0 || seg.Index >= len(cur.Array) {
				return nil, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindIndexOutOfBounds, Reason: "path index out of bounds"}
			}
			cur = cur.Array[seg.Index]
			continue
		}
		if cur.Kind != template.KindObject {
			return nil, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindInvalidTarget, Reason: "expected object"}
		}
		next := cur.Get(seg.Key)
		if next == nil {
			return nil, &OpError{TemplateKey: templateKey, Path: displayPath, Kind: KindNotFoundTarget, Reason: "key not found: " + seg.Key}
		}
		cur = next
	}
	return cur, nil
}

func insertAt(arr []*template.Node, idx int, v *template.Node) []*template.Node {
	out := make([]*template.Node, 0, len(arr)+1)
	out = append(out, arr[:idx]...)
	out = append(out, v)
	out = append(out, arr[idx:]...)
	return out
}

func removeAt(arr []*template.Node, idx int) []*template.Node {
	return append(arr[:idx:idx], arr[idx+1:]...)
}

func spliceInsert(arr []*template.Node, idx int, values []*template.Node) []*template.Node {
	out := make([]*template.Node, 0, len(arr)+len(values))
	out = append(out, arr[:idx]...)
	out = append(out, values...)
	out = append(out, arr[idx:]...)
	return out
}

func spliceReplace(arr []*template.Node, s, e int, values []*template.Node) []*template.Node {
	out := make([]*template.Node, 0, len(arr)-(e-s)+len(values))
	out = append(out, arr[:s]...)
	out = append(out, values...)
	out = append(out, arr[e:]...)
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

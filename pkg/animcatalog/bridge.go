package animcatalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// ToPatches converts a catalog parse Result into the same jsonpatch.Patch /
// jsonpatch.SeqPatch shapes pkg/nemesisxml emits, addressed at
// "#<blockID>.<field>" paths within templateKey, so pkg/mergeplan resolves
// catalog and behavior-graph patches identically, per the priority-resolved-
// the-same-way requirement this package's diff types exist to satisfy.
func ToPatches(res *Result, templateKey string) ([]jsonpatch.Patch, []jsonpatch.SeqPatch) {
	var patches []jsonpatch.Patch
	var seq []jsonpatch.SeqPatch

	for _, f := range res.Fields {
		patches = append(patches, jsonpatch.Patch{
			TemplateKey: templateKey,
			Path:        template.Path{template.KeySeg(blockKey(f.BlockID)), template.KeySeg(f.Field)},
			Op:          f.Op,
			Value:       parseScalarString(f.Value),
			Priority:    f.Priority,
		})
	}

	for _, r := range res.Ranges {
		values := make([]*template.Node, len(r.Values))
		for i, v := range r.Values {
			values[i] = parseScalarString(v)
		}
		seq = append(seq, jsonpatch.SeqPatch{
			TemplateKey: templateKey,
			Path:        template.Path{template.KeySeg(blockKey(r.BlockID)), template.KeySeg(r.Array)},
			Op:          r.Op,
			Range:       jsonpatch.NewRange(r.Lo, r.Hi),
			Values:      values,
			Priority:    r.Priority,
		})
	}

	return patches, seq
}

func blockKey(id int) string {
	return fmt.Sprintf("#%04d", id)
}

func parseScalarString(s string) *template.Node {
	s = strings.TrimSpace(s)
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
	return template.NewOwnedStr(s)
}

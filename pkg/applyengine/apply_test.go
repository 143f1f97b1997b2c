package applyengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/mergeplan"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

func kpath(segs ...string) template.Path {
	p := make(template.Path, len(segs))
	for i, s := range segs {
		p[i] = template.KeySeg(s)
	}
	return p
}

func TestApplyReplaceField(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#1", Value: template.NewObject(
			template.Member{Key: "userData", Value: template.NewI64(0)},
		)},
	)
	plan := &mergeplan.Plan{
		TemplateKey: "0_master",
		Points: map[string]mergeplan.PointEntry{
			"#1.userData": {
				Path: "#1.userData",
				Op:   jsonpatch.OpReplace,
				Patch: jsonpatch.Patch{
					Path:  kpath("#1", "userData"),
					Op:    jsonpatch.OpReplace,
					Value: template.NewI64(7),
				},
			},
		},
		Sequences: map[string][]mergeplan.SeqEntry{},
	}

	errs := Apply(root, plan)
	require.Empty(t, errs)
	got := root.Get("#1").Get("userData")
	assert.EqualValues(t, 7, got.I64)
}

func TestApplyRemoveMissingKeyErrors(t *testing.T) {
	root := template.NewObject(template.Member{Key: "#1", Value: template.NewObject()})
	plan := &mergeplan.Plan{
		TemplateKey: "0_master",
		Points: map[string]mergeplan.PointEntry{
			"#1.missing": {
				Op: jsonpatch.OpRemove,
				Patch: jsonpatch.Patch{
					Path: kpath("#1", "missing"),
					Op:   jsonpatch.OpRemove,
				},
			},
		},
		Sequences: map[string][]mergeplan.SeqEntry{},
	}

	errs := Apply(root, plan)
	require.Len(t, errs, 1)
	opErr, ok := errs[0].(*OpError)
	require.True(t, ok)
	assert.Equal(t, KindNotFoundTarget, opErr.Kind)
}

func TestApplySeqAddAppends(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#1", Value: template.NewObject(
			template.Member{Key: "arr", Value: template.NewArray(template.NewI64(1), template.NewI64(2))},
		)},
	)
	plan := &mergeplan.Plan{
		TemplateKey: "0_master",
		Points:      map[string]mergeplan.PointEntry{},
		Sequences: map[string][]mergeplan.SeqEntry{
			"#1.arr": {
				{
					Path: "#1.arr",
					Patch: jsonpatch.SeqPatch{
						Path:   kpath("#1", "arr"),
						Op:     jsonpatch.SeqAdd,
						Range:  jsonpatch.NewRange(2, 3),
						Values: []*template.Node{template.NewI64(3)},
					},
				},
			},
		},
	}

	errs := Apply(root, plan)
	require.Empty(t, errs)
	arr := root.Get("#1").Get("arr")
	require.Len(t, arr.Array, 3)
	assert.EqualValues(t, 3, arr.Array[2].I64)
}

func TestApplySeqRemoveDrainsRange(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#1", Value: template.NewObject(
			template.Member{Key: "arr", Value: template.NewArray(
				template.NewI64(1), template.NewI64(2), template.NewI64(3), template.NewI64(4), template.NewI64(5),
			)},
		)},
	)
	plan := &mergeplan.Plan{
		TemplateKey: "0_master",
		Points:      map[string]mergeplan.PointEntry{},
		Sequences: map[string][]mergeplan.SeqEntry{
			"#1.arr": {
				{
					Path: "#1.arr",
					Patch: jsonpatch.SeqPatch{
						Path:  kpath("#1", "arr"),
						Op:    jsonpatch.SeqRemove,
						Range: jsonpatch.NewRange(1, 3),
					},
				},
			},
		},
	}

	errs := Apply(root, plan)
	require.Empty(t, errs)
	arr := root.Get("#1").Get("arr")
	want := []int64{1, 4, 5}
	require.Len(t, arr.Array, len(want))
	for i, w := range want {
		assert.Equal(t, w, arr.Array[i].I64)
	}
}

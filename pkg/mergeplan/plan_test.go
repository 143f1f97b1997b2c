package mergeplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

func path(segs ...string) template.Path {
	p := make(template.Path, len(segs))
	for i, s := range segs {
		p[i] = template.KeySeg(s)
	}
	return p
}

func TestBuildPriorityOverride(t *testing.T) {
	low := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX", "f"), Op: jsonpatch.OpReplace, Value: template.NewI64(1), Priority: 1}
	high := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX", "f"), Op: jsonpatch.OpReplace, Value: template.NewI64(2), Priority: 2}

	plans, err := Build([]jsonpatch.Patch{low, high}, nil)
	require.NoError(t, err)
	plan := plans["0_master"]
	entry := plan.Points["#1.hkbX.f"]
	assert.Equal(t, 2, entry.Priority)
	assert.EqualValues(t, 2, entry.Patch.Value.I64)
}

func TestBuildEqualPriorityConflict(t *testing.T) {
	a := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX", "f"), Op: jsonpatch.OpReplace, Value: template.NewI64(1), Priority: 1}
	b := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX", "f"), Op: jsonpatch.OpReplace, Value: template.NewI64(2), Priority: 1}

	_, err := Build([]jsonpatch.Patch{a, b}, nil)
	assert.Error(t, err, "expected ConflictError for equal-priority collision")
}

func TestBuildDedupIdenticalPatches(t *testing.T) {
	p := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX", "f"), Op: jsonpatch.OpReplace, Value: template.NewI64(1), Priority: 1}

	plans, err := Build([]jsonpatch.Patch{p, p}, nil)
	require.NoError(t, err)
	assert.Len(t, plans["0_master"].Points, 1)
}

func TestBuildOverlappingSequencesRetainedInPriorityOrder(t *testing.T) {
	low := jsonpatch.SeqPatch{TemplateKey: "0_master", Path: path("#1", "hkbX", "arr"), Op: jsonpatch.SeqAdd, Range: jsonpatch.NewRange(0, 1), Values: []*template.Node{template.NewI64(1)}, Priority: 1}
	high := jsonpatch.SeqPatch{TemplateKey: "0_master", Path: path("#1", "hkbX", "arr"), Op: jsonpatch.SeqAdd, Range: jsonpatch.NewRange(0, 1), Values: []*template.Node{template.NewI64(2)}, Priority: 2}

	plans, err := Build(nil, []jsonpatch.SeqPatch{low, high})
	require.NoError(t, err)
	entries := plans["0_master"].Sequences["#1.hkbX.arr"]
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Priority)
	assert.Equal(t, 1, entries[1].Priority)
}

func TestBuildSeqDiscardedWhenAncestorReplaced(t *testing.T) {
	ancestor := jsonpatch.Patch{TemplateKey: "0_master", Path: path("#1", "hkbX"), Op: jsonpatch.OpReplace, Value: template.NewI64(0), Priority: 5}
	seq := jsonpatch.SeqPatch{TemplateKey: "0_master", Path: path("#1", "hkbX", "arr"), Op: jsonpatch.SeqAdd, Range: jsonpatch.NewRange(0, 1), Values: []*template.Node{template.NewI64(1)}, Priority: 1}

	plans, err := Build([]jsonpatch.Patch{ancestor}, []jsonpatch.SeqPatch{seq})
	require.NoError(t, err)
	plan := plans["0_master"]
	assert.Empty(t, plan.Sequences)
	assert.Len(t, plan.Warnings, 1)
}

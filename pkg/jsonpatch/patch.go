package jsonpatch

import "github.com/sardonyx-sard/dmerge/pkg/template"

// Patch is a single point (non-range) operation targeting one field or
// object, carrying the priority of the mod that authored it. Priority
// equals the rank of the mod directory in the user-supplied order — higher
// wins conflicts.
type Patch struct {
	TemplateKey string
	Path        template.Path
	Op          Op
	Value       *template.Node
	Priority    int
}

// SeqPatch is a single sequence (range) operation targeting a contiguous
// subsequence of an array.
type SeqPatch struct {
	TemplateKey string
	Path        template.Path
	Op          SeqOp
	Range       Range
	Values      []*template.Node
	Priority    int
}

// Equal does a structural comparison used by the merge planner's
// deduplication pre-pass (two mods accidentally emitting byte-identical
// operations should not trip a tie error).
func (p Patch) Equal(other Patch) bool {
	return p.TemplateKey == other.TemplateKey &&
		p.Path.Equal(other.Path) &&
		p.Op == other.Op &&
		p.Priority == other.Priority &&
		template.Equal(p.Value, other.Value)
}

// Equal does a structural comparison for sequence patches.
func (p SeqPatch) Equal(other SeqPatch) bool {
	if p.TemplateKey != other.TemplateKey || !p.Path.Equal(other.Path) ||
		p.Op != other.Op || p.Priority != other.Priority || p.Range != other.Range {
		return false
	}
	if len(p.Values) != len(other.Values) {
		return false
	}
	for i := range p.Values {
		if !template.Equal(p.Values[i], other.Values[i]) {
			return false
		}
	}
	return true
}

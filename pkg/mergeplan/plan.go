// Package mergeplan implements C5: folding every mod's point and sequence
// patches against one template into a single ordered plan, resolving
// conflicts deterministically by priority.
package mergeplan

import (
	"fmt"
	"sort"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
)

// PointEntry is one resolved point operation, the winner of however many
// patches targeted its path.
type PointEntry struct {
	Path     string
	Op       jsonpatch.Op
	Patch    jsonpatch.Patch
	Priority int
}

// SeqEntry is one surviving sequence operation at a path, retained in a
// list because overlapping ranges at the same path are never discarded.
type SeqEntry struct {
	Path     string
	Patch    jsonpatch.SeqPatch
	Priority int
}

// Plan is the merge result for a single template: every point op that won
// its path, and every seq op that survived conflict resolution, grouped by
// path and ordered by descending priority.
type Plan struct {
	TemplateKey string
	Points      map[string]PointEntry
	Sequences   map[string][]SeqEntry
	Warnings    []string
}

// ConflictError reports two point patches of equal priority targeting the
// same path — a caller contract violation the planner refuses to silently
// resolve.
type ConflictError struct {
	TemplateKey string
	Path        string
	Priority    int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mergeplan: %s: conflicting point operations at %s with equal priority %d",
		e.TemplateKey, e.Path, e.Priority)
}

// Build groups patches by template key and folds them into one Plan per
// template. Structurally identical patches (the same op, path, value, and
// priority emitted twice, e.g. by a mod whose patch directory is scanned
// more than once) are deduplicated before resolution, mirroring a dedup
// pre-pass against already-kept patches.
func Build(patches []jsonpatch.Patch, seqPatches []jsonpatch.SeqPatch) (map[string]*Plan, error) {
	plans := map[string]*Plan{}

	getPlan := func(key string) *Plan {
		p, ok := plans[key]
		if !ok {
			p = &Plan{TemplateKey: key, Points: map[string]PointEntry{}, Sequences: map[string][]SeqEntry{}}
			plans[key] = p
		}
		return p
	}

	dedupedPoints := dedupPoints(patches)
	dedupedSeq := dedupSeq(seqPatches)

	for _, p := range dedupedPoints {
		getPlan(p.TemplateKey)
	}
	for _, s := range dedupedSeq {
		getPlan(s.TemplateKey)
	}

	// Resolve point ops first: later seq-op ancestor checks need the
	// winning point op already in place.
	byTemplatePoints := map[string][]jsonpatch.Patch{}
	for _, p := range dedupedPoints {
		byTemplatePoints[p.TemplateKey] = append(byTemplatePoints[p.TemplateKey], p)
	}
	for key, plan := range plans {
		if err := resolvePoints(plan, byTemplatePoints[key]); err != nil {
			return nil, err
		}
	}

	byTemplateSeq := map[string][]jsonpatch.SeqPatch{}
	for _, s := range dedupedSeq {
		byTemplateSeq[s.TemplateKey] = append(byTemplateSeq[s.TemplateKey], s)
	}
	for key, plan := range plans {
		resolveSequences(plan, byTemplateSeq[key])
	}

	return plans, nil
}

func resolvePoints(plan *Plan, patches []jsonpatch.Patch) error {
	for _, p := range patches {
		path := p.Path.String()
		existing, ok := plan.Points[path]
		if !ok || p.Priority > existing.Priority {
			plan.Points[path] = PointEntry{Path: path, Op: p.Op, Patch: p, Priority: p.Priority}
			continue
		}
		if p.Priority == existing.Priority {
			return &ConflictError{TemplateKey: plan.TemplateKey, Path: path, Priority: p.Priority}
		}
		// lower priority: discarded.
	}
	return nil
}

func resolveSequences(plan *Plan, patches []jsonpatch.SeqPatch) {
	byPath := map[string][]jsonpatch.SeqPatch{}
	for _, s := range patches {
		byPath[s.Path.String()] = append(byPath[s.Path.String()], s)
	}

	for path, group := range byPath {
		discarded := false
		for anc := group[0].Path.Parent(); len(anc) > 0 && !discarded; anc = anc.Parent() {
			ancestor, ok := plan.Points[anc.String()]
			if ok && (ancestor.Op == jsonpatch.OpRemove || ancestor.Op == jsonpatch.OpReplace) {
				plan.Warnings = append(plan.Warnings,
					fmt.Sprintf("sequence op at %s discarded: ancestor point op at %s is %s", path, ancestor.Path, ancestor.Op))
				discarded = true
			}
		}
		if discarded {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool { return group[i].Priority > group[j].Priority })

		entries := make([]SeqEntry, 0, len(group))
		for _, s := range group {
			entries = append(entries, SeqEntry{Path: path, Patch: s, Priority: s.Priority})
		}
		plan.Sequences[path] = entries
	}
}

func dedupPoints(patches []jsonpatch.Patch) []jsonpatch.Patch {
	var out []jsonpatch.Patch
	for _, p := range patches {
		dup := false
		for _, seen := range out {
			if seen.Equal(p) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func dedupSeq(patches []jsonpatch.SeqPatch) []jsonpatch.SeqPatch {
	var out []jsonpatch.SeqPatch
	for _, p := range patches {
		dup := false
		for _, seen := range out {
			if seen.Equal(p) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

// ExecutionOrder returns this plan's sequence-operation paths ordered
// deterministically by (path, -priority): path ascending, and within equal
// paths (impossible here since Sequences is keyed by path, but kept for
// clarity when flattening to a single ordered list) priority descending.
func ExecutionOrder(plan *Plan) []string {
	paths := make([]string, 0, len(plan.Sequences))
	for p := range plan.Sequences {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

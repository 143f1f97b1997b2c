// Package pipeline implements C10: orchestrating discovery, parsing,
// planning, apply and emission across every mod root and touched template,
// accumulating errors instead of aborting on the first one.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sardonyx-sard/dmerge/pkg/animcatalog"
	"github.com/sardonyx-sard/dmerge/pkg/applyengine"
	"github.com/sardonyx-sard/dmerge/pkg/behaviorpath"
	"github.com/sardonyx-sard/dmerge/pkg/codec"
	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/mergeplan"
	"github.com/sardonyx-sard/dmerge/pkg/nemesisxml"
	"github.com/sardonyx-sard/dmerge/pkg/template"
	"github.com/sardonyx-sard/dmerge/pkg/templatestore"
	"github.com/sardonyx-sard/dmerge/pkg/varresolve"
)

// Driver runs a single merge over a Config. One Driver is used for one Run;
// it holds no state across runs.
type Driver struct {
	cfg Config
}

// NewDriver builds a Driver over cfg.
func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Run executes all five stages to completion, accumulating errors along the
// way rather than aborting. It returns a non-nil error, carrying Summary's
// counts, only if any stage recorded at least one error; callers inspect
// the returned Summary either way. ctx is honored as a cancellation handle:
// cancelling it stops scheduling new work once in-flight work reaches its
// next checkpoint, per the driver's cooperative-cancellation contract.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	acc := &errorLog{}

	candidates, discoverErrs := d.discover(ctx)
	for _, e := range discoverErrs {
		acc.addParse(e)
	}

	catalogKind := map[string]animcatalog.Kind{}
	for _, c := range candidates {
		if c.isCatalog {
			catalogKind[c.templateKey] = c.catalogKind
		}
	}

	patches, seqPatches, stringDataHint := d.parseStage(ctx, candidates, acc)

	for key := range plansKeys(patches, seqPatches) {
		if err := d.writePatchDebug(key, patches[key], seqPatches[key]); err != nil {
			acc.addEmit(err)
		}
	}

	plans := d.planStage(ctx, patches, seqPatches, acc)

	trees := d.applyStage(ctx, plans, catalogKind, acc)

	for _, t := range trees {
		if err := d.writeMergedJSONDebug(t.templateKey, t.root); err != nil {
			acc.addEmit(err)
		}
		if err := d.writeMergedXMLDebug(t.templateKey, t.root); err != nil {
			acc.addEmit(err)
		}
	}

	d.emitStage(ctx, trees, catalogKind, stringDataHint, acc)

	summary := acc.summary()
	if summary.total() == 0 {
		return summary, nil
	}
	if err := d.writeErrorLog(acc); err != nil {
		acc.addEmit(fmt.Errorf("pipeline: writing error log: %w", err))
		summary = acc.summary()
	}
	return summary, fmt.Errorf("pipeline: %d parse, %d apply, %d emit error(s); see %s",
		summary.ParseErrors, summary.ApplyErrors, summary.EmitErrors,
		filepath.Join(d.cfg.OutputDir, "d_merge_errors.log"))
}

// plansKeys is the set of template keys touched by either patches or
// sequence patches, shared between debug-dump and plan-stage key selection.
func plansKeys(patches map[string][]jsonpatch.Patch, seqPatches map[string][]jsonpatch.SeqPatch) map[string]bool {
	keys := map[string]bool{}
	for k := range patches {
		keys[k] = true
	}
	for k := range seqPatches {
		keys[k] = true
	}
	return keys
}

func (d *Driver) writeErrorLog(acc *errorLog) error {
	if err := os.MkdirAll(d.cfg.OutputDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d.cfg.OutputDir, "d_merge_errors.log")
	return os.WriteFile(path, []byte(acc.render()), 0o644)
}

// candidatePath is one patch file discovery has classified and ranked.
type candidatePath struct {
	absPath     string
	templateKey string
	priority    int
	isCatalog   bool
	catalogKind animcatalog.Kind
}

// discover walks every configured patch root, classifying each candidate
// file concurrently. Stage 1 is parallel across paths.
func (d *Driver) discover(ctx context.Context) ([]candidatePath, []error) {
	marker := d.cfg.ModRootMarker
	if marker == "" {
		marker = behaviorpath.DefaultModRootMarker
	}

	var files []string
	for _, root := range d.cfg.PatchRoots {
		_ = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".txt") {
				files = append(files, path)
			}
			return nil
		})
	}

	total := len(files)
	sem := semaphore.NewWeighted(d.cfg.concurrency())
	eg, egCtx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var candidates []candidatePath
	var errs []error
	done := 0

	for _, f := range files {
		f := f
		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			cand, err := classifyPath(f, marker, d.cfg.ModOrder)

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				if _, skip := err.(skipError); !skip {
					errs = append(errs, err)
				}
			} else if cand != nil {
				candidates = append(candidates, *cand)
			}
			d.cfg.report(StageDiscover, done, total)
			return nil
		})
	}
	_ = eg.Wait()
	return candidates, errs
}

// skipError marks a file that discovery silently ignores: it does not sit
// under the mod-root marker, or belongs to a mod not present in ModOrder (a
// disabled mod).
type skipError struct{}

func (skipError) Error() string { return "not a recognised, enabled patch file" }

func classifyPath(path, marker string, modOrder []string) (*candidatePath, error) {
	parsed, err := behaviorpath.ParsePatchPath(path, marker)
	if err != nil {
		// A file outside every mod root is not a patch file; any other
		// path error is reported.
		if perr, ok := err.(*behaviorpath.ParseError); ok && strings.HasPrefix(perr.Reason, "missing mod-root marker") {
			return nil, skipError{}
		}
		return nil, err
	}
	priority, ok := behaviorpath.Rank(parsed.ModCode, modOrder)
	if !ok {
		return nil, skipError{}
	}

	if parsed.Catalog != "" {
		kind := animcatalog.KindAnimData
		if parsed.Catalog == animcatalog.KindAnimSetData.String() {
			kind = animcatalog.KindAnimSetData
		}
		templateKey, ok := behaviorpath.CanonicalTemplates[parsed.Catalog]
		if !ok {
			return nil, &behaviorpath.ParseError{Path: path, Reason: "no canonical path for catalog " + parsed.Catalog}
		}
		return &candidatePath{absPath: path, templateKey: templateKey, priority: priority, isCatalog: true, catalogKind: kind}, nil
	}

	return &candidatePath{absPath: path, templateKey: parsed.TemplateKey, priority: priority}, nil
}

// parseStage reads and parses every candidate file concurrently (stage 2,
// parallel across patch files), folding every patch into per-template
// patch/sequence sets.
func (d *Driver) parseStage(ctx context.Context, candidates []candidatePath, acc *errorLog) (
	map[string][]jsonpatch.Patch, map[string][]jsonpatch.SeqPatch, map[string]string,
) {
	patches := map[string][]jsonpatch.Patch{}
	seq := map[string][]jsonpatch.SeqPatch{}
	stringDataHint := map[string]string{}

	sem := semaphore.NewWeighted(d.cfg.concurrency())
	eg, egCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	total := len(candidates)
	done := 0

	for _, c := range candidates {
		c := c
		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)

			content, err := os.ReadFile(c.absPath)
			if err != nil {
				acc.addParse(fmt.Errorf("reading %s: %w", c.absPath, err))
				mu.Lock()
				done++
				d.cfg.report(StageParse, done, total)
				mu.Unlock()
				return nil
			}

			var pp []jsonpatch.Patch
			var sp []jsonpatch.SeqPatch
			var stringDataID string

			if c.isCatalog {
				res, err := animcatalog.Parse(c.absPath, c.catalogKind, string(content), c.priority)
				if err != nil {
					acc.addParse(err)
				} else {
					pp, sp = animcatalog.ToPatches(res, c.templateKey)
				}
			} else {
				res, err := nemesisxml.Parse(c.absPath, c.templateKey, string(content), c.priority, nemesisxml.HackOptions(d.cfg.HackOptions))
				if err != nil {
					acc.addParse(err)
				} else {
					pp, sp, stringDataID = res.Patches, res.Seq, res.StringDataObjectID
				}
			}

			mu.Lock()
			patches[c.templateKey] = append(patches[c.templateKey], pp...)
			seq[c.templateKey] = append(seq[c.templateKey], sp...)
			if stringDataID != "" {
				stringDataHint[c.templateKey] = stringDataID
			}
			done++
			d.cfg.report(StageParse, done, total)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return patches, seq, stringDataHint
}

// planStage builds one merge plan per touched template concurrently (stage
// 3, parallel across templates). A hard tie conflict within one template is
// recorded and that template is dropped from the result; other templates
// are unaffected.
func (d *Driver) planStage(ctx context.Context, patches map[string][]jsonpatch.Patch, seqPatches map[string][]jsonpatch.SeqPatch, acc *errorLog) map[string]*mergeplan.Plan {
	keys := plansKeys(patches, seqPatches)

	sem := semaphore.NewWeighted(d.cfg.concurrency())
	eg, egCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	plans := map[string]*mergeplan.Plan{}
	total := len(keys)
	done := 0

	for k := range keys {
		k := k
		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			built, err := mergeplan.Build(patches[k], seqPatches[k])

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				// A conflicting-tie error is a per-template planning
				// failure, not a parse error; it prevents that template
				// from reaching apply, so it is counted there.
				acc.addApply(err)
			} else if p, ok := built[k]; ok {
				plans[k] = p
				for _, w := range p.Warnings {
					acc.addApply(fmt.Errorf("%s: %s", k, w))
				}
			}
			d.cfg.report(StagePlan, done, total)
			return nil
		})
	}
	_ = eg.Wait()
	return plans
}

// resolvedTree is one template's post-apply tree, carried from stage 4 into
// stage 5.
type resolvedTree struct {
	templateKey string
	root        *template.Node
}

// applyStage loads every plan's template (behavior-graph templates through
// templatestore, catalogs through animcatalog's flat-text tree loader) and
// applies its plan. Stage 4 is parallel across templates; a single
// template's own apply pass runs sequentially, per the exclusive-write
// contract.
func (d *Driver) applyStage(ctx context.Context, plans map[string]*mergeplan.Plan, catalogKind map[string]animcatalog.Kind, acc *errorLog) []resolvedTree {
	store := templatestore.New(&templatestore.XMLLoader{ResourceDir: d.cfg.ResourceDir})

	sem := semaphore.NewWeighted(d.cfg.concurrency())
	eg, egCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var out []resolvedTree
	total := len(plans)
	done := 0

	for key, plan := range plans {
		key, plan := key, plan
		if err := sem.Acquire(egCtx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)

			var root *template.Node
			var err error
			if kind, ok := catalogKind[key]; ok {
				root, err = d.loadCatalogTree(kind, key)
			} else {
				root, err = store.Get(egCtx, key)
			}
			if err != nil {
				acc.addApply(errors.Wrapf(err, "loading %s", key))
				mu.Lock()
				done++
				d.cfg.report(StageApplyLoad, done, total)
				mu.Unlock()
				return nil
			}

			for _, applyErr := range applyengine.Apply(root, plan) {
				acc.addApply(applyErr)
			}

			mu.Lock()
			out = append(out, resolvedTree{templateKey: key, root: root})
			done++
			d.cfg.report(StageApplyLoad, done, total)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

func (d *Driver) loadCatalogTree(kind animcatalog.Kind, templateKey string) (*template.Node, error) {
	content, err := os.ReadFile(filepath.Join(d.cfg.ResourceDir, templateKey))
	if err != nil {
		return nil, err
	}
	return animcatalog.LoadTree(kind, string(content))
}

// emitStage resolves variables/synthetic ids and encodes every tree
// concurrently (stage 5, parallel across templates).
func (d *Driver) emitStage(ctx context.Context, trees []resolvedTree, catalogKind map[string]animcatalog.Kind, stringDataHint map[string]string, acc *errorLog) {
	clipIDs := animcatalog.NewClipIDAllocator()
	for _, t := range trees {
		if _, ok := catalogKind[t.templateKey]; ok {
			registerExistingClipIDs(t.root, clipIDs)
		}
	}

	sem := semaphore.NewWeighted(d.cfg.concurrency())
	eg, _ := errgroup.WithContext(ctx)
	total := len(trees)
	var mu sync.Mutex
	done := 0

	for _, t := range trees {
		t := t
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			d.emitOne(t, catalogKind, stringDataHint, clipIDs, acc)
			mu.Lock()
			done++
			d.cfg.report(StageResolveEmit, done, total)
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
}

func (d *Driver) emitOne(t resolvedTree, catalogKind map[string]animcatalog.Kind, stringDataHint map[string]string, clipIDs *animcatalog.ClipIDAllocator, acc *errorLog) {
	outPath := filepath.Join(d.cfg.OutputDir, t.templateKey)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		acc.addEmit(fmt.Errorf("creating output directory for %s: %w", t.templateKey, err))
		return
	}

	if kind, ok := catalogKind[t.templateKey]; ok {
		text, err := animcatalog.SerializeTree(kind, t.root, clipIDs)
		if err != nil {
			acc.addEmit(fmt.Errorf("serializing catalog %s: %w", t.templateKey, err))
			return
		}
		if err := codec.WriteAtomic(outPath, []byte(text), 0o644); err != nil {
			acc.addEmit(err)
		}
		return
	}

	objectID, found := varresolve.FindStringDataObjectID(t.root, stringDataHint[t.templateKey])
	if found {
		maps, err := varresolve.BuildNameMaps(t.root, objectID)
		if err != nil {
			acc.addEmit(fmt.Errorf("%s: %w", t.templateKey, err))
			return
		}
		if err := varresolve.RewriteVariables(t.root, maps); err != nil {
			acc.addEmit(fmt.Errorf("%s: %w", t.templateKey, err))
			return
		}
	}
	varresolve.RewriteSyntheticIDs(t.root)

	reorderByTopologicalSort(t.root)

	data, err := d.cfg.codecOrDefault().Encode(t.root, d.cfg.OutputTarget)
	if err != nil {
		acc.addEmit(err)
		return
	}
	if err := codec.WriteAtomic(outPath, data, 0o644); err != nil {
		acc.addEmit(err)
	}
}

// reorderByTopologicalSort reorders root's top-level members into the
// order codec.TopologicalOrder computes, so any Codec that serializes
// Object in iteration order already sees a dependency-first layout.
func reorderByTopologicalSort(root *template.Node) {
	order := codec.TopologicalOrder(root)
	byKey := make(map[string]*template.Node, len(root.Object))
	for _, m := range root.Object {
		byKey[m.Key] = m.Value
	}
	reordered := make([]template.Member, 0, len(root.Object))
	seen := map[string]bool{}
	for _, key := range order {
		if v, ok := byKey[key]; ok && !seen[key] {
			reordered = append(reordered, template.Member{Key: key, Value: v})
			seen[key] = true
		}
	}
	for _, m := range root.Object {
		if !seen[m.Key] {
			reordered = append(reordered, m)
			seen[m.Key] = true
		}
	}
	root.Object = reordered
}

func registerExistingClipIDs(root *template.Node, alloc *animcatalog.ClipIDAllocator) {
	if root == nil {
		return
	}
	for _, m := range root.Object {
		if strings.HasPrefix(m.Key, "#") {
			var id int
			if _, err := fmt.Sscanf(m.Key, "#%d", &id); err == nil {
				alloc.Register(id)
			}
		}
	}
}

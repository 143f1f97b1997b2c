package pipeline

import "github.com/sardonyx-sard/dmerge/pkg/codec"

// DebugOptions controls emission of intermediate artefacts to
// <output_dir>/.debug/ for inspection.
type DebugOptions struct {
	OutputPatchJSON  bool
	OutputMergedJSON bool
	OutputMergedXML  bool
}

// Stage names a pipeline phase, reported through Config.StatusReport.
type Stage int

const (
	StageDiscover Stage = iota
	StageParse
	StagePlan
	StageApplyLoad
	StageResolveEmit
)

func (s Stage) String() string {
	switch s {
	case StageDiscover:
		return "discover"
	case StageParse:
		return "parse"
	case StagePlan:
		return "plan"
	case StageApplyLoad:
		return "apply_load"
	case StageResolveEmit:
		return "resolve_emit"
	default:
		return "unknown"
	}
}

// Status is one progress callback invocation. Index/Total describe
// progress within Stage; callbacks may arrive out of order and must be
// treated as thread-safe by the caller.
type Status struct {
	Stage Stage
	Index int
	Total int
}

// Config collects every recognised pipeline option.
type Config struct {
	ResourceDir  string
	OutputDir    string
	OutputTarget codec.Target
	HackOptions  uint32

	Debug DebugOptions

	// PatchRoots are the directories discovery walks for patch files. Each
	// is expected to contain ModRootMarker somewhere in its tree (Nemesis'
	// conventional "Nemesis_Engine/mod" layout).
	PatchRoots []string

	// ModRootMarker overrides pkg/behaviorpath.DefaultModRootMarker; empty
	// means use the default.
	ModRootMarker string

	// ModOrder is the user-supplied mod priority sequence; later entries
	// override earlier ones, per pkg/behaviorpath.Rank. A mod whose code is
	// absent from ModOrder is treated as disabled and its patches skipped.
	ModOrder []string

	// MaxConcurrency bounds how many units of work a single stage runs at
	// once. Zero means "pick a reasonable default".
	MaxConcurrency int64

	// Codec encodes a merged template tree to its external byte form. A nil
	// Codec defaults to codec.Unimplemented{}, which always fails at stage
	// 5 — this module ships no Havok encoder.
	Codec codec.Codec

	StatusReport func(Status)
}

func (c *Config) codecOrDefault() codec.Codec {
	if c.Codec != nil {
		return c.Codec
	}
	return codec.Unimplemented{}
}

func (c *Config) report(stage Stage, index, total int) {
	if c.StatusReport != nil {
		c.StatusReport(Status{Stage: stage, Index: index, Total: total})
	}
}

func (c *Config) concurrency() int64 {
	if c.MaxConcurrency > 0 {
		return c.MaxConcurrency
	}
	return 4
}

// Package animcatalog implements C3: parsing patches to the two line-oriented
// animation catalogs (animationdatasinglefile, animationsetdatasinglefile)
// and regenerating them after merge.
//
// Unlike the Havok XML patched by pkg/nemesisxml, these catalogs are flat
// text with a strict per-line schema: a bare integer clip id starts each
// block, followed by a fixed sequence of scalar fields. Patches use the same
// MOD_CODE/ORIGINAL/CLOSE convention as pkg/nemesisxml, but at line
// granularity rather than XML-element granularity.
package animcatalog

import "github.com/sardonyx-sard/dmerge/pkg/jsonpatch"

// Kind distinguishes the two catalog files this package understands.
type Kind int

const (
	KindAnimData Kind = iota
	KindAnimSetData
)

func (k Kind) String() string {
	if k == KindAnimSetData {
		return "animationsetdatasinglefile"
	}
	return "animationdatasinglefile"
}

// schema lists the fixed per-block scalar field names, in on-disk order,
// following a block's leading clip-id line. This is a representative subset
// of the real catalog's field set, sufficient to express field and range
// diffs; it is not an exhaustive transcription of every field the real
// format carries.
var schema = map[Kind][]string{
	KindAnimData:    {"playbackSpeed", "cropStartLocalTime", "cropEndLocalTime", "tag"},
	KindAnimSetData: {"animationName", "movementData", "tag"},
}

// arrayField names the per-block array this catalog's range diffs target
// (the list of motion/clip entries hung off a block).
var arrayField = map[Kind]string{
	KindAnimData:    "clipGenerators",
	KindAnimSetData: "animations",
}

// FieldDiff is a point patch against one scalar field of one catalog block.
type FieldDiff struct {
	Catalog  Kind
	BlockID  int
	Field    string
	Op       jsonpatch.Op
	Value    string
	Priority int
}

// RangeDiff is a patch against a contiguous run of a block's array field.
type RangeDiff struct {
	Catalog  Kind
	BlockID  int
	Array    string
	Op       jsonpatch.SeqOp
	Lo, Hi   int
	Values   []string
	Priority int
}

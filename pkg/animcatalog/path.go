package animcatalog

import (
	"fmt"
	"strings"
)

// ParserKind distinguishes a patch targeting an animationdatasinglefile
// (Anim) from one targeting the motion-list side keyed by clip name
// (Motion); both live under the same animationdatasinglefile directory.
type ParserKind int

const (
	KindAnim ParserKind = iota
	KindMotion
)

func (k ParserKind) String() string {
	if k == KindMotion {
		return "motion"
	}
	return "anim"
}

// ParsedPath is the result of parsing one catalog patch path.
type ParsedPath struct {
	ModCode string
	Target  string
	Kind    ParserKind
}

// PathError reports a malformed catalog patch path.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("animcatalog: %s: %s", e.Path, e.Reason)
}

// ParsePath extracts the mod code, animation-set target, and anim/motion
// distinction from a catalog patch path of the form:
//
//	<mod-root>/<mod-code>/animationdatasinglefile/<target>~1/<file>.txt
//
// The file name distinguishes Anim from Motion: a Motion patch's file name
// carries a "~" separating the clip name from the generator id (e.g.
// "SprintSlide~dmco$11.txt"); an Anim patch's does not (e.g. "dmco$1.txt").
func ParsePath(path string) (*ParsedPath, error) {
	norm := strings.ReplaceAll(path, "\\", "/")
	components := strings.Split(norm, "/")

	animDataIdx := -1
	for i, c := range components {
		if strings.EqualFold(c, "animationdatasinglefile") {
			animDataIdx = i
			break
		}
	}
	if animDataIdx < 0 {
		return nil, &PathError{Path: path, Reason: "missing animationdatasinglefile component"}
	}
	if animDataIdx < 1 || len(components) <= animDataIdx+2 {
		return nil, &PathError{Path: path, Reason: "not enough path components to extract mod code and target"}
	}

	modCode := components[animDataIdx-1]
	targetComp := components[animDataIdx+1]

	target, _, ok := strings.Cut(targetComp, "~")
	if !ok {
		return nil, &PathError{Path: path, Reason: "target component missing ~1 suffix"}
	}

	fileName := components[len(components)-1]
	kind := KindAnim
	if strings.Contains(fileName, "~") {
		kind = KindMotion
	}

	return &ParsedPath{ModCode: modCode, Target: target, Kind: kind}, nil
}

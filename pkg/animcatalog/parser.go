package animcatalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
)

var (
	reOpen     = regexp.MustCompile(`<!--\s*MOD_CODE\s*~([^~]*)~\s*OPEN\s*-->`)
	reOriginal = regexp.MustCompile(`<!--\s*ORIGINAL\s*-->`)
	reClose    = regexp.MustCompile(`<!--\s*CLOSE\s*-->`)
	reInt      = regexp.MustCompile(`^-?\d+$`)
)

// ParseError reports a syntax error in a catalog patch.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("animcatalog: %s:%d: %s", e.File, e.Line, e.Reason)
}

// Result is everything parsing one catalog patch file produces.
type Result struct {
	Fields []FieldDiff
	Ranges []RangeDiff
}

// Parse scans a catalog patch file's content line by line. blockID tracks
// the clip id of the nearest preceding bare-integer line outside any diff
// block; fieldIdx cycles through the catalog's fixed schema as plain
// (non-diff) lines are consumed, the same way the block's on-disk field
// sequence does.
func Parse(file string, kind Kind, content string, priority int) (*Result, error) {
	lines := strings.Split(content, "\n")
	fields := schema[kind]

	res := &Result{}

	var inBlock bool
	var inOriginal bool
	var blockLine int
	var added, original []string

	blockID := 0
	fieldIdx := 0

	flush := func() error {
		fieldName := ""
		if fieldIdx < len(fields) {
			fieldName = fields[fieldIdx]
		}

		addedVals := cleanLines(added)
		originalVals := cleanLines(original)

		if len(addedVals) <= 1 && len(originalVals) <= 1 {
			op, val, err := resolvePointOp(addedVals, originalVals)
			if err != nil {
				return &ParseError{File: file, Line: blockLine, Reason: err.Error()}
			}
			res.Fields = append(res.Fields, FieldDiff{
				Catalog:  kind,
				BlockID:  blockID,
				Field:    fieldName,
				Op:       op,
				Value:    val,
				Priority: priority,
			})
			return nil
		}

		lo := fieldIdx
		hi := lo + maxInt(len(addedVals), len(originalVals))
		seqOp, values, err := resolveSeqOp(addedVals, originalVals)
		if err != nil {
			return &ParseError{File: file, Line: blockLine, Reason: err.Error()}
		}
		res.Ranges = append(res.Ranges, RangeDiff{
			Catalog:  kind,
			BlockID:  blockID,
			Array:    arrayField[kind],
			Op:       seqOp,
			Lo:       lo,
			Hi:       hi,
			Values:   values,
			Priority: priority,
		})
		return nil
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := raw

		if reOpen.MatchString(line) {
			if inBlock {
				return nil, &ParseError{File: file, Line: lineNo, Reason: "nested OPEN without CLOSE"}
			}
			inBlock = true
			inOriginal = false
			blockLine = lineNo
			added = nil
			original = nil
			continue
		}
		if reOriginal.MatchString(line) {
			if !inBlock {
				return nil, &ParseError{File: file, Line: lineNo, Reason: "ORIGINAL marker without matching OPEN"}
			}
			inOriginal = true
			continue
		}
		if reClose.MatchString(line) {
			if !inBlock {
				return nil, &ParseError{File: file, Line: lineNo, Reason: "CLOSE marker without matching OPEN"}
			}
			if err := flush(); err != nil {
				return nil, err
			}
			fieldIdx++
			if fieldIdx >= len(fields) {
				fieldIdx = 0
			}
			inBlock = false
			inOriginal = false
			continue
		}

		if inBlock {
			if inOriginal {
				original = append(original, line)
			} else {
				added = append(added, line)
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if reInt.MatchString(trimmed) && fieldIdx == 0 {
			id, _ := strconv.Atoi(trimmed)
			blockID = id
			continue
		}
		fieldIdx++
		if fieldIdx >= len(fields) {
			fieldIdx = 0
		}
	}

	if inBlock {
		return nil, &ParseError{File: file, Line: blockLine, Reason: "unbalanced marker: OPEN without CLOSE"}
	}

	return res, nil
}

func cleanLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func resolvePointOp(added, original []string) (jsonpatch.Op, string, error) {
	switch {
	case len(added) == 0 && len(original) > 0:
		return jsonpatch.OpRemove, "", nil
	case len(added) > 0 && len(original) == 0:
		return jsonpatch.OpAdd, added[0], nil
	case len(added) > 0 && len(original) > 0:
		return jsonpatch.OpReplace, added[0], nil
	default:
		return 0, "", fmt.Errorf("empty diff block: neither added nor original content present")
	}
}

func resolveSeqOp(added, original []string) (jsonpatch.SeqOp, []string, error) {
	switch {
	case len(added) == 0 && len(original) > 0:
		return jsonpatch.SeqRemove, nil, nil
	case len(added) > 0 && len(original) == 0:
		return jsonpatch.SeqAdd, added, nil
	case len(added) > 0 && len(original) > 0:
		return jsonpatch.SeqReplace, added, nil
	default:
		return 0, nil, fmt.Errorf("empty diff block: neither added nor original content present")
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Package nemesisxml implements C2: parsing a Nemesis-style XML patch file
// (a Havok object fragment carrying embedded OPEN/ORIGINAL/CLOSE diff
// markers) into language-neutral jsonpatch entries.
//
// A Nemesis patch fragment is not a complete, well-formed XML document, so
// this parser scans it line by line rather than handing it to
// encoding/xml's tokenizer wholesale: it tracks the nearest enclosing
// <hkobject name="#dddd" class="..."> and <hkparam name="..."> as context,
// and treats the MOD_CODE/ORIGINAL/CLOSE comments as region delimiters
// within that context.
package nemesisxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// ErrorKind tags why one patch file failed to parse.
type ErrorKind int

const (
	// KindSyntax covers marker-grammar errors: unbalanced OPEN/CLOSE,
	// nested OPEN, a marker outside any hkobject, an empty diff block.
	KindSyntax ErrorKind = iota
	// KindUnknownClass means the patch targets a Havok class absent from
	// classSchema.
	KindUnknownClass
	// KindUnknownField means the patch targets a field absent from its
	// class's entry in classSchema.
	KindUnknownField
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnknownClass:
		return "UnknownClass"
	case KindUnknownField:
		return "UnknownField"
	default:
		return "Syntax"
	}
}

// ParseError records a syntax or schema error in an XML patch, with the
// line of the offending comment marker.
type ParseError struct {
	File   string
	Line   int
	Kind   ErrorKind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nemesisxml: %s:%d: %s: %s", e.File, e.Line, e.Kind, e.Reason)
}

// Result is everything parsing a single patch file can produce.
type Result struct {
	Patches []jsonpatch.Patch
	Seq     []jsonpatch.SeqPatch
	// StringDataObjectID is set when this patch targets the behavior
	// graph's hkbBehaviorGraphStringData object (or equivalent), recording
	// its Nemesis identifier per spec §3 "String-data map".
	StringDataObjectID string
}

type objectFrame struct {
	id    string
	class string
	depth int
}

type fieldFrame struct {
	name      string
	isArray   bool
	depth     int
	itemIndex int // position in the pristine array consumed so far
}

const stringDataClass = "hkbBehaviorGraphStringData"

// Parse parses the content of one Nemesis patch file (already read into
// memory) into a Result. priority is the mod's rank from
// pkg/behaviorpath.Rank; templateKey identifies which template this patch's
// operations target.
func Parse(file, templateKey string, content string, priority int, hacks HackOptions) (*Result, error) {
	lines := strings.Split(content, "\n")

	res := &Result{}

	var objStack []objectFrame
	var fieldStack []fieldFrame
	depth := 0

	var inBlock bool
	var inOriginal bool
	var blockLine int
	var added, original []string

	flush := func() error {
		if len(objStack) == 0 {
			return &ParseError{File: file, Line: blockLine, Reason: "diff block outside any hkobject"}
		}
		obj := objStack[len(objStack)-1]
		var field fieldFrame
		if len(fieldStack) > 0 {
			field = fieldStack[len(fieldStack)-1]
		}

		fieldName := applyHacks(hacks, field.name)

		if !classKnown(obj.class) {
			return &ParseError{File: file, Line: blockLine, Kind: KindUnknownClass, Reason: fmt.Sprintf("unknown class %q", obj.class)}
		}
		if !fieldKnown(obj.class, fieldName) {
			return &ParseError{File: file, Line: blockLine, Kind: KindUnknownField, Reason: fmt.Sprintf("unknown field %q for class %q", fieldName, obj.class)}
		}

		if obj.class == stringDataClass && res.StringDataObjectID == "" {
			res.StringDataObjectID = obj.id
		}

		addedVals := cleanLines(added)
		originalVals := cleanLines(original)

		// Addressed as "#id.field": the tree has no separate class-keyed
		// level (class is a flat sibling field on the object, the same
		// shape pkg/templatexml decodes and pkg/applyengine walks).
		path := template.Path{template.KeySeg(obj.id), template.KeySeg(fieldName)}

		if !field.isArray {
			op, val, err := resolvePointOp(addedVals, originalVals)
			if err != nil {
				return &ParseError{File: file, Line: blockLine, Reason: err.Error()}
			}
			res.Patches = append(res.Patches, jsonpatch.Patch{
				TemplateKey: templateKey,
				Path:        path,
				Op:          op,
				Value:       val,
				Priority:    priority,
			})
			return nil
		}

		lo := field.itemIndex
		hi := lo + maxInt(len(addedVals), len(originalVals))
		seqOp, values, err := resolveSeqOp(addedVals, originalVals)
		if err != nil {
			return &ParseError{File: file, Line: blockLine, Reason: err.Error()}
		}
		res.Seq = append(res.Seq, jsonpatch.SeqPatch{
			TemplateKey: templateKey,
			Path:        path,
			Op:          seqOp,
			Range:       jsonpatch.NewRange(lo, hi),
			Values:      values,
			Priority:    priority,
		})

		if len(fieldStack) > 0 {
			fieldStack[len(fieldStack)-1].itemIndex += len(originalVals)
		}
		return nil
	}

	for i, raw := range lines {
		lineNo := i + 1
		line := raw

		if m := reOpen.FindStringSubmatch(line); m != nil {
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
			// Lines inside a diff block describe alternative content, not
			// both-present content, so object/field/depth bookkeeping is
			// intentionally not updated from them.
			continue
		}

		updateContext(line, &depth, &objStack, &fieldStack)
	}

	if inBlock {
		return nil, &ParseError{File: file, Line: blockLine, Reason: "unbalanced marker: OPEN without CLOSE"}
	}

	return res, nil
}

func updateContext(line string, depth *int, objStack *[]objectFrame, fieldStack *[]fieldFrame) {
	if m := reObjectOpen.FindStringSubmatch(line); m != nil && !reObjectSelf.MatchString(line) {
		// An hkobject directly inside an array field is one array item.
		if n := len(*fieldStack); n > 0 && (*fieldStack)[n-1].isArray && (*fieldStack)[n-1].depth == *depth {
			(*fieldStack)[n-1].itemIndex++
		}
		attrs := m[1]
		id := firstSubmatch(reNameAttr, attrs)
		class := firstSubmatch(reObjectCls, attrs)
		*depth++
		*objStack = append(*objStack, objectFrame{id: id, class: class, depth: *depth})
		return
	}
	if reObjectClose.MatchString(line) {
		if len(*objStack) > 0 && (*objStack)[len(*objStack)-1].depth == *depth {
			*objStack = (*objStack)[:len(*objStack)-1]
		}
		*depth--
		return
	}
	if reParamInlineVal.MatchString(line) {
		// scalar field fully on one line, e.g. <hkparam name="userData">0</hkparam>
		// does not change field-nesting state.
		return
	}
	if m := reParamOpen.FindStringSubmatch(line); m != nil {
		attrs := m[1]
		selfClosed := m[2] == "/"
		name := firstSubmatch(reNameAttr, attrs)
		isArray := reNumElements.MatchString(attrs)
		if selfClosed {
			return
		}
		*depth++
		*fieldStack = append(*fieldStack, fieldFrame{name: name, isArray: isArray, depth: *depth})
		return
	}
	if reParamClose.MatchString(line) {
		if len(*fieldStack) > 0 && (*fieldStack)[len(*fieldStack)-1].depth == *depth {
			*fieldStack = (*fieldStack)[:len(*fieldStack)-1]
		}
		*depth--
		return
	}
	// Any other non-blank line directly inside an array field is one
	// pristine array item.
	if n := len(*fieldStack); n > 0 && strings.TrimSpace(line) != "" &&
		(*fieldStack)[n-1].isArray && (*fieldStack)[n-1].depth == *depth {
		(*fieldStack)[n-1].itemIndex++
	}
}

func firstSubmatch(re interface{ FindStringSubmatch(string) []string }, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// cleanLines drops blank lines and trims whitespace, yielding one string per
// logical array item or, for a scalar field, the single remaining line.
func cleanLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, stripTags(t))
	}
	return out
}

func stripTags(s string) string {
	for {
		start := strings.IndexByte(s, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], '>')
		if end < 0 {
			break
		}
		s = s[:start] + s[start+end+1:]
	}
	return strings.TrimSpace(s)
}

func resolvePointOp(added, original []string) (jsonpatch.Op, *template.Node, error) {
	switch {
	case len(added) == 0 && len(original) > 0:
		return jsonpatch.OpRemove, nil, nil
	case len(added) > 0 && len(original) == 0:
		return jsonpatch.OpAdd, parseScalar(strings.Join(added, " ")), nil
	case len(added) > 0 && len(original) > 0:
		return jsonpatch.OpReplace, parseScalar(strings.Join(added, " ")), nil
	default:
		return 0, nil, fmt.Errorf("empty diff block: neither added nor original content present")
	}
}

func resolveSeqOp(added, original []string) (jsonpatch.SeqOp, []*template.Node, error) {
	values := make([]*template.Node, len(added))
	for i, v := range added {
		values[i] = parseScalar(v)
	}
	switch {
	case len(added) == 0 && len(original) > 0:
		return jsonpatch.SeqRemove, nil, nil
	case len(added) > 0 && len(original) == 0:
		return jsonpatch.SeqAdd, values, nil
	case len(added) > 0 && len(original) > 0:
		return jsonpatch.SeqReplace, values, nil
	default:
		return 0, nil, fmt.Errorf("empty diff block: neither added nor original content present")
	}
}

// parseScalar interprets a patch-supplied literal as the narrowest Node kind
// it fits: integer, float, boolean, else a string leaf owned by the patch.
func parseScalar(s string) *template.Node {
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

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

// debugDir is where DebugOptions artefacts land, relative to OutputDir.
const debugDir = ".debug"

// patchDump is the JSON-friendly shape OutputPatchJSON writes per template:
// the patch/sequence sets a template's plan was built from, before
// mergeplan.Build resolves priority conflicts.
type patchDump struct {
	TemplateKey string              `json:"template_key"`
	Patches     []jsonpatch.Patch   `json:"patches"`
	Sequences   []jsonpatch.SeqPatch `json:"sequences"`
}

func (d *Driver) writePatchDebug(templateKey string, patches []jsonpatch.Patch, seq []jsonpatch.SeqPatch) error {
	if !d.cfg.Debug.OutputPatchJSON {
		return nil
	}
	data, err := json.MarshalIndent(patchDump{TemplateKey: templateKey, Patches: patches, Sequences: seq}, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshaling patch debug dump for %s: %w", templateKey, err)
	}
	return d.writeDebugArtifact(templateKey, "patch.json", data)
}

func (d *Driver) writeMergedJSONDebug(templateKey string, root *template.Node) error {
	if !d.cfg.Debug.OutputMergedJSON {
		return nil
	}
	data, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshaling merged tree debug dump for %s: %w", templateKey, err)
	}
	return d.writeDebugArtifact(templateKey, "merged.json", data)
}

func (d *Driver) writeMergedXMLDebug(templateKey string, root *template.Node) error {
	if !d.cfg.Debug.OutputMergedXML {
		return nil
	}
	return d.writeDebugArtifact(templateKey, "merged.xml", []byte(encodeDebugXML(root)))
}

func (d *Driver) writeDebugArtifact(templateKey, suffix string, data []byte) error {
	path := filepath.Join(d.cfg.OutputDir, debugDir, templateKey+"."+suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pipeline: creating debug directory for %s: %w", templateKey, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// encodeDebugXML renders a merged tree back into Havok-style XML, the
// inverse of pkg/templatexml's decode grammar. It is a readability aid for
// inspecting a merge result, not a byte-accurate Havok encoder — that role
// belongs to a real codec.Codec, which this module does not ship.
func encodeDebugXML(root *template.Node) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"ascii\"?>\n<hkpackfile>\n")
	for _, m := range root.Object {
		encodeDebugObject(&b, m.Key, m.Value)
	}
	b.WriteString("</hkpackfile>\n")
	return b.String()
}

func encodeDebugObject(b *strings.Builder, id string, obj *template.Node) {
	class := ""
	if c := obj.Get("class"); c != nil {
		class = c.Str
	}
	fmt.Fprintf(b, "<hkobject name=%q class=%q signature=\"0x0\">\n", id, class)
	for _, m := range obj.Object {
		if m.Key == "class" {
			continue
		}
		encodeDebugParam(b, m.Key, m.Value)
	}
	b.WriteString("</hkobject>\n")
}

func encodeDebugParam(b *strings.Builder, name string, v *template.Node) {
	if v.Kind == template.KindArray {
		fmt.Fprintf(b, "<hkparam name=%q numelements=\"%d\">\n", name, len(v.Array))
		for _, item := range v.Array {
			if item.Kind == template.KindObject {
				id := ""
				if n := item.Get("name"); n != nil {
					id = n.Str
				}
				encodeDebugObject(b, id, item)
			} else {
				b.WriteString(encodeDebugScalar(item))
				b.WriteString("\n")
			}
		}
		b.WriteString("</hkparam>\n")
		return
	}
	fmt.Fprintf(b, "<hkparam name=%q>%s</hkparam>\n", name, encodeDebugScalar(v))
}

func encodeDebugScalar(v *template.Node) string {
	switch v.Kind {
	case template.KindBool:
		return strconv.FormatBool(v.Bool)
	case template.KindI64:
		return strconv.FormatInt(v.I64, 10)
	case template.KindU64:
		return strconv.FormatUint(v.U64, 10)
	case template.KindF64:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case template.KindStr:
		return v.Str
	default:
		return ""
	}
}

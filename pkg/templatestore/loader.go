package templatestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sardonyx-sard/dmerge/pkg/template"
	"github.com/sardonyx-sard/dmerge/pkg/templatexml"
)

// XMLLoader loads a template key's tree from resourceDir, preferring a
// compact pre-serialised binary form (a sibling file with a ".bin"
// extension) when present, falling back to parsing the Havok XML source.
//
// templateKey is already the canonical on-disk relative path resolved by
// pkg/behaviorpath.LookupTemplate (e.g.
// "meshes/actors/character/behaviors/0_master.hkx"), not a template-name
// component, so it is joined onto ResourceDir directly.
type XMLLoader struct {
	ResourceDir string
	// DecodeBinary decodes a pre-serialised binary template, when present.
	// Left nil, binary templates are never preferred and XML is always
	// parsed; no binary format is defined by this module.
	DecodeBinary func([]byte) (*template.Node, error)
}

func (l *XMLLoader) Load(_ context.Context, templateKey string) (*template.Node, error) {
	if l.DecodeBinary != nil {
		binPath := filepath.Join(l.ResourceDir, templateKey) + ".bin"
		if data, err := os.ReadFile(binPath); err == nil {
			return l.DecodeBinary(data)
		}
	}

	xmlPath := filepath.Join(l.ResourceDir, templateKey)
	node, err := templatexml.Load(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("templatestore: loading %s: %w", templateKey, err)
	}
	return node, nil
}

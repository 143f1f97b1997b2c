package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/codec"
	"github.com/sardonyx-sard/dmerge/pkg/template"
)

type fakeCodec struct{}

func (fakeCodec) Encode(root *template.Node, _ codec.Target) ([]byte, error) {
	obj := root.Get("#0001")
	enable := obj.Get("enable")
	if enable.Bool {
		return []byte("enabled"), nil
	}
	return []byte("disabled"), nil
}

const templateXML = `<?xml version="1.0" encoding="ascii"?>
<hkpackfile>
<hkobject name="#0001" class="hkbStateMachine" signature="0x0">
	<hkparam name="enable">true</hkparam>
</hkobject>
</hkpackfile>
`

const patchContent = `<hkobject name="#0001" class="hkbStateMachine" signature="0x0">
	<hkparam name="enable">
<!-- MOD_CODE ~testmod~ OPEN -->
false
<!-- ORIGINAL -->
true
<!-- CLOSE -->
	</hkparam>
</hkobject>
`

func TestDriverRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	resourceDir := filepath.Join(root, "resources")
	patchRoot := filepath.Join(root, "mods")
	outputDir := filepath.Join(root, "out")

	templatePath := filepath.Join(resourceDir, "meshes/actors/character/behaviors/0_master.hkx")
	require.NoError(t, os.MkdirAll(filepath.Dir(templatePath), 0o755))
	require.NoError(t, os.WriteFile(templatePath, []byte(templateXML), 0o644))

	patchDir := filepath.Join(patchRoot, "Nemesis_Engine/mod/testmod/0_master")
	require.NoError(t, os.MkdirAll(patchDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "#0001.txt"), []byte(patchContent), 0o644))

	cfg := Config{
		ResourceDir: resourceDir,
		OutputDir:   outputDir,
		PatchRoots:  []string{patchRoot},
		ModOrder:    []string{"testmod"},
		Codec:       fakeCodec{},
	}

	d := NewDriver(cfg)
	summary, err := d.Run(context.Background())
	require.NoErrorf(t, err, "summary=%+v", summary)
	assert.Equal(t, Summary{}, summary)

	out, err := os.ReadFile(filepath.Join(outputDir, "meshes/actors/character/behaviors/0_master.hkx"))
	require.NoError(t, err)
	assert.Equal(t, "disabled", string(out))
}

func TestDriverRunDisabledModSkipped(t *testing.T) {
	root := t.TempDir()
	resourceDir := filepath.Join(root, "resources")
	patchRoot := filepath.Join(root, "mods")
	outputDir := filepath.Join(root, "out")

	templatePath := filepath.Join(resourceDir, "meshes/actors/character/behaviors/0_master.hkx")
	require.NoError(t, os.MkdirAll(filepath.Dir(templatePath), 0o755))
	require.NoError(t, os.WriteFile(templatePath, []byte(templateXML), 0o644))

	patchDir := filepath.Join(patchRoot, "Nemesis_Engine/mod/testmod/0_master")
	require.NoError(t, os.MkdirAll(patchDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(patchDir, "#0001.txt"), []byte(patchContent), 0o644))

	cfg := Config{
		ResourceDir: resourceDir,
		OutputDir:   outputDir,
		PatchRoots:  []string{patchRoot},
		ModOrder:    nil, // testmod is not enabled
		Codec:       fakeCodec{},
	}

	d := NewDriver(cfg)
	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.total())

	_, err = os.Stat(filepath.Join(outputDir, "meshes/actors/character/behaviors/0_master.hkx"))
	assert.True(t, os.IsNotExist(err), "expected no output file for an untouched template")
}

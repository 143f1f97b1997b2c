package nemesisxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/jsonpatch"
)

const scenarioAFragment = `<hkobject name="#0029" class="hkbObject" signature="0x0">
	<hkparam name="userData">
		<!-- MOD_CODE ~dmco~ OPEN -->
		7
		<!-- ORIGINAL -->
		0
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`

func TestParseScenarioAReplace(t *testing.T) {
	res, err := Parse("patch.txt", "meshes/actors/character/behaviors/0_master.hkx", scenarioAFragment, 1, 0)
	require.NoError(t, err)
	require.Len(t, res.Patches, 1)
	p := res.Patches[0]
	assert.Equal(t, jsonpatch.OpReplace, p.Op)
	assert.Equal(t, "#0029.userData", p.Path.String())
	assert.EqualValues(t, 7, p.Value.I64)
}

const removeFragment = `<hkobject name="#0050" class="hkbObject" signature="0x0">
	<hkparam name="userData">
		<!-- MOD_CODE ~dmco~ OPEN -->
		<!-- ORIGINAL -->
		bar
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`

func TestParseRemove(t *testing.T) {
	res, err := Parse("patch.txt", "tmpl", removeFragment, 1, 0)
	require.NoError(t, err)
	require.Len(t, res.Patches, 1)
	assert.Equal(t, jsonpatch.OpRemove, res.Patches[0].Op)
}

const seqAddFragment = `<hkobject name="#0010" class="hkbBehaviorGraphStringData" signature="0x0">
	<hkparam name="eventNames" numelements="2">
		a
		b
		<!-- MOD_CODE ~dmco~ OPEN -->
		c
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`

func TestParseSeqAdd(t *testing.T) {
	res, err := Parse("patch.txt", "tmpl", seqAddFragment, 1, 0)
	require.NoError(t, err)
	require.Len(t, res.Seq, 1)
	s := res.Seq[0]
	assert.Equal(t, jsonpatch.SeqAdd, s.Op)
	assert.Equal(t, 2, s.Range.Lo)
	assert.Equal(t, 3, s.Range.Hi)
	require.Len(t, s.Values, 1)
	assert.Equal(t, "c", s.Values[0].Str)
}

func TestParseStringDataObjectID(t *testing.T) {
	res, err := Parse("patch.txt", "tmpl", seqAddFragment, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "#0010", res.StringDataObjectID)
}

func TestParseUnbalancedOpen(t *testing.T) {
	frag := `<hkobject name="#1" class="C">
	<hkparam name="f">
		<!-- MOD_CODE ~x~ OPEN -->
		1
	</hkparam>
</hkobject>
`
	_, err := Parse("patch.txt", "tmpl", frag, 1, 0)
	assert.Error(t, err)
}

func TestParseHackRewrite(t *testing.T) {
	frag := `<hkobject name="#1" class="hkbFootIkControlsModifier" signature="0x0">
	<hkparam name="event">
		<!-- MOD_CODE ~x~ OPEN -->
		Foo
		<!-- ORIGINAL -->
		Bar
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`
	res, err := Parse("patch.txt", "tmpl", frag, 1, HackEventToContactEvent)
	require.NoError(t, err)
	require.Len(t, res.Patches, 1)
	assert.Equal(t, "#1.contactEvent", res.Patches[0].Path.String())
}

func TestParseUnknownClass(t *testing.T) {
	frag := `<hkobject name="#1" class="hkbNotARealClass" signature="0x0">
	<hkparam name="whatever">
		<!-- MOD_CODE ~x~ OPEN -->
		1
		<!-- ORIGINAL -->
		0
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`
	_, err := Parse("patch.txt", "tmpl", frag, 1, 0)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnknownClass, perr.Kind)
}

func TestParseUnknownField(t *testing.T) {
	frag := `<hkobject name="#1" class="hkbObject" signature="0x0">
	<hkparam name="notARealField">
		<!-- MOD_CODE ~x~ OPEN -->
		1
		<!-- ORIGINAL -->
		0
		<!-- CLOSE -->
	</hkparam>
</hkobject>
`
	_, err := Parse("patch.txt", "tmpl", frag, 1, 0)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, KindUnknownField, perr.Kind)
}

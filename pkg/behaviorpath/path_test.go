package behaviorpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatchPathNemesis(t *testing.T) {
	p := "/data/Mods/Dodge/Nemesis_Engine/mod/dmco/0_master/#0001.txt"
	got, err := ParsePatchPath(p, DefaultModRootMarker)
	require.NoError(t, err)
	assert.Equal(t, "dmco", got.ModCode)
	assert.NotEmpty(t, got.TemplateKey)
	assert.False(t, got.IsFirstPerson)
}

func TestParsePatchPathFirstPerson(t *testing.T) {
	p := "/data/Mods/Dodge/Nemesis_Engine/mod/dmco/_1stperson/firstperson/#0001.txt"
	got, err := ParsePatchPath(p, DefaultModRootMarker)
	require.NoError(t, err)
	assert.True(t, got.IsFirstPerson)
}

func TestParsePatchPathCatalog(t *testing.T) {
	p := "/data/Mods/Dodge/Nemesis_Engine/mod/dmco/animationdatasinglefile/DefaultFemale~1/dmco$1.txt"
	got, err := ParsePatchPath(p, DefaultModRootMarker)
	require.NoError(t, err)
	assert.Equal(t, "animationdatasinglefile", got.Catalog)
}

func TestParsePatchPathMissingMarker(t *testing.T) {
	_, err := ParsePatchPath("/data/Mods/Dodge/dmco/0_master/#0001.txt", DefaultModRootMarker)
	assert.Error(t, err)
}

func TestParsePatchPathUnknownTemplate(t *testing.T) {
	_, err := ParsePatchPath("/data/Mods/Dodge/Nemesis_Engine/mod/dmco/not_a_template/#0001.txt", DefaultModRootMarker)
	assert.Error(t, err)
}

func TestParsePatchPathInvalidUTF8(t *testing.T) {
	p := "/data/Mods/Dodge/Nemesis_Engine/mod/dmco/0_master/#000" + string([]byte{0xff, 0xfe}) + "1.txt"
	_, err := ParsePatchPath(p, DefaultModRootMarker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestRank(t *testing.T) {
	order := []string{"aaa", "bbb", "ccc"}
	r, ok := Rank("bbb", order)
	assert.True(t, ok)
	assert.Equal(t, 1, r)

	_, ok = Rank("zzz", order)
	assert.False(t, ok)
}

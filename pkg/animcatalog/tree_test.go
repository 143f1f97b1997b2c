package animcatalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

const sampleCatalog = "11\n1.0\n0.0\n1.0\nruntag\n2\nclipA\nclipB\n"

func TestLoadTreeRoundTrips(t *testing.T) {
	root, err := LoadTree(KindAnimData, sampleCatalog)
	require.NoError(t, err)
	block := root.Get("#0011")
	require.NotNil(t, block)
	assert.Equal(t, "runtag", block.Get("tag").Str)
	clips := block.Get("clipGenerators")
	require.Len(t, clips.Array, 2)
	assert.Equal(t, "clipA", clips.Array[0].Str)

	out, err := SerializeTree(KindAnimData, root, NewClipIDAllocator())
	require.NoError(t, err)
	assert.Equal(t, sampleCatalog, out)
}

func TestSerializeTreeAssignsFreshIDForNewBlock(t *testing.T) {
	root, err := LoadTree(KindAnimData, sampleCatalog)
	require.NoError(t, err)
	root.Object = append(root.Object, template.Member{
		Key: "#newblock",
		Value: template.NewObject(
			template.Member{Key: "playbackSpeed", Value: template.NewBorrowedStr("1.0")},
			template.Member{Key: "cropStartLocalTime", Value: template.NewBorrowedStr("0.0")},
			template.Member{Key: "cropEndLocalTime", Value: template.NewBorrowedStr("1.0")},
			template.Member{Key: "tag", Value: template.NewBorrowedStr("added")},
			template.Member{Key: "clipGenerators", Value: template.NewArray()},
		),
	})

	alloc := NewClipIDAllocator()
	out, err := SerializeTree(KindAnimData, root, alloc)
	require.NoError(t, err)
	assert.NotEqual(t, sampleCatalog, out, "expected serialized output to include the new block")
}

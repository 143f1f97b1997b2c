package varresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

func buildStringDataTree() *template.Node {
	stringData := template.NewObject(
		template.Member{Key: "class", Value: template.NewBorrowedStr(stringDataClass)},
		template.Member{Key: "eventNames", Value: template.NewArray(
			template.NewBorrowedStr("eventSample"),
			template.NewBorrowedStr("eventOther"),
		)},
		template.Member{Key: "variableNames", Value: template.NewArray(
			template.NewBorrowedStr("variableSample"),
		)},
	)
	binding := template.NewObject(
		template.Member{Key: "name", Value: template.NewBorrowedStr("#sample$1")},
		template.Member{Key: "class", Value: template.NewBorrowedStr("hkbVariableBindingSet")},
		template.Member{Key: "variableIndex", Value: template.NewOwnedStr("$variableID[variableSample]$")},
		template.Member{Key: "eventIndex", Value: template.NewOwnedStr("$eventID[eventOther]$")},
	)
	return template.NewObject(
		template.Member{Key: "#0052", Value: stringData},
		template.Member{Key: "#0060", Value: binding},
	)
}

func TestFindStringDataObjectIDScansTree(t *testing.T) {
	root := buildStringDataTree()
	id, ok := FindStringDataObjectID(root, "")
	require.True(t, ok)
	assert.Equal(t, "#0052", id)
}

func TestFindStringDataObjectIDPrefersHint(t *testing.T) {
	root := buildStringDataTree()
	id, ok := FindStringDataObjectID(root, "#0099")
	require.True(t, ok)
	assert.Equal(t, "#0099", id)
}

func TestBuildNameMapsAndRewrite(t *testing.T) {
	root := buildStringDataTree()
	maps, err := BuildNameMaps(root, "#0052")
	require.NoError(t, err)
	assert.Equal(t, 1, maps.Events["eventOther"])
	assert.Equal(t, 0, maps.Variables["variableSample"])

	require.NoError(t, RewriteVariables(root, maps))
	binding := root.Get("#0060")
	assert.Equal(t, "0", binding.Get("variableIndex").Str)
	assert.Equal(t, "1", binding.Get("eventIndex").Str)
}

func TestRewriteVariablesUnknownNameErrors(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#1", Value: template.NewObject(
			template.Member{Key: "x", Value: template.NewOwnedStr("$eventID[doesNotExist]$")},
		)},
	)
	maps := &NameMaps{Events: map[string]int{}, Variables: map[string]int{}}
	err := RewriteVariables(root, maps)
	require.Error(t, err)
	_, ok := err.(*UnknownVariableError)
	assert.True(t, ok)
}

func TestRewriteSyntheticIDsAssignsSmallestUnused(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#0000", Value: template.NewObject(
			template.Member{Key: "ref", Value: template.NewOwnedStr("#sample$1")},
		)},
		template.Member{Key: "#sample$1", Value: template.NewObject(
			template.Member{Key: "name", Value: template.NewOwnedStr("#sample$1")},
		)},
	)

	RewriteSyntheticIDs(root)

	assert.Nil(t, root.Get("#sample$1"), "expected synthetic key to be renamed away")
	synthObj := root.Get("#0001")
	require.NotNil(t, synthObj, "expected synthetic id rewritten to #0001 (smallest unused after #0000)")
	assert.Equal(t, "#0001", synthObj.Get("name").Str)
	assert.Equal(t, "#0001", root.Get("#0000").Get("ref").Str)
}

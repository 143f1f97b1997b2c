package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

func TestTopologicalOrderPutsReferencedObjectsFirst(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#0001", Value: template.NewObject(
			template.Member{Key: "ref", Value: template.NewBorrowedStr("#0002")},
		)},
		template.Member{Key: "#0002", Value: template.NewObject(
			template.Member{Key: "leaf", Value: template.NewI64(1)},
		)},
	)

	order := TopologicalOrder(root)
	posOf := func(k string) int {
		for i, v := range order {
			if v == k {
				return i
			}
		}
		return -1
	}
	assert.Less(t, posOf("#0002"), posOf("#0001"), "expected #0002 (referenced) before #0001 (referencer)")
}

func TestTopologicalOrderHandlesNoReferences(t *testing.T) {
	root := template.NewObject(
		template.Member{Key: "#0001", Value: template.NewObject()},
		template.Member{Key: "#0002", Value: template.NewObject()},
	)
	order := TopologicalOrder(root)
	require.Len(t, order, 2)
}

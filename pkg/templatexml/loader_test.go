package templatexml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplate = `<?xml version="1.0" encoding="ascii"?>
<hkpackfile>
<hkobject name="#0001" class="hkbBehaviorGraphStringData" signature="0x0">
	<hkparam name="eventNames" numelements="2">
		foo
		bar
	</hkparam>
	<hkparam name="userData">0</hkparam>
</hkobject>
<hkobject name="#0002" class="hkbStateMachine" signature="0x0">
	<hkparam name="enable">true</hkparam>
</hkobject>
</hkpackfile>
`

func TestDecodeBuildsObjectsByID(t *testing.T) {
	root, err := Decode(strings.NewReader(sampleTemplate), "test.xml")
	require.NoError(t, err)
	require.Len(t, root.Object, 2)

	first := root.Get("#0001")
	require.NotNil(t, first)
	assert.Equal(t, "hkbBehaviorGraphStringData", first.Get("class").Str)
	events := first.Get("eventNames")
	require.Equal(t, "array", events.Kind.String())
	require.Len(t, events.Array, 2)
	assert.Equal(t, "foo", events.Array[0].Str)
	assert.Equal(t, "bar", events.Array[1].Str)
	assert.EqualValues(t, 0, first.Get("userData").I64)

	second := root.Get("#0002")
	assert.True(t, second.Get("enable").Bool)
}

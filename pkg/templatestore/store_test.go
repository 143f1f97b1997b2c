package templatestore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sardonyx-sard/dmerge/pkg/template"
)

type countingLoader struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (l *countingLoader) Load(_ context.Context, key string) (*template.Node, error) {
	l.calls.Add(1)
	if l.fail[key] {
		return nil, errors.New("boom")
	}
	return template.NewOwnedStr(key), nil
}

func TestGetLoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	s := New(loader)
	ctx := context.Background()

	_, err := s.Get(ctx, "0_master")
	require.NoError(t, err)
	_, err = s.Get(ctx, "0_master")
	require.NoError(t, err)
	assert.EqualValues(t, 1, loader.calls.Load())
}

func TestPreloadCollectsErrors(t *testing.T) {
	loader := &countingLoader{fail: map[string]bool{"bad": true}}
	s := New(loader)
	errs := s.Preload(context.Background(), []string{"0_master", "bad", "mt_behavior"}, 2)
	require.Len(t, errs, 1)
}

func TestPreloadIsConcurrencySafe(t *testing.T) {
	loader := &countingLoader{}
	s := New(loader)
	keys := []string{"a", "b", "c", "d", "e"}
	errs := s.Preload(context.Background(), keys, 2)
	require.Empty(t, errs)
	assert.EqualValues(t, len(keys), loader.calls.Load())
}

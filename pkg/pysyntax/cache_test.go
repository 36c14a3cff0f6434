package pysyntax

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errParse = errors.New("parse failed")

type countingParser struct {
	calls int
	err   error
}

func (c *countingParser) ParseFile(_ context.Context, _ string, content []byte) (*Tree, error) {
	c.calls++

	if c.err != nil {
		return nil, c.err
	}

	return &Tree{Root: &Node{Type: "module"}, Source: content}, nil
}

func TestCachedParser_Hit(t *testing.T) {
	t.Parallel()

	inner := &countingParser{}

	cp, err := NewCachedParser(inner, 2)
	require.NoError(t, err)

	first, err := cp.ParseFile(context.Background(), "a.py", []byte("x"))
	require.NoError(t, err)

	second, err := cp.ParseFile(context.Background(), "a.py", []byte("x"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, cp.Len())
}

func TestCachedParser_EvictsAndPurges(t *testing.T) {
	t.Parallel()

	inner := &countingParser{}

	cp, err := NewCachedParser(inner, 1)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = cp.ParseFile(ctx, "a.py", nil)
	require.NoError(t, err)
	_, err = cp.ParseFile(ctx, "b.py", nil)
	require.NoError(t, err)
	_, err = cp.ParseFile(ctx, "a.py", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, inner.calls)

	cp.Purge()
	assert.Zero(t, cp.Len())
}

func TestCachedParser_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	inner := &countingParser{err: errParse}

	cp, err := NewCachedParser(inner, 0)
	require.NoError(t, err)

	_, err = cp.ParseFile(context.Background(), "a.py", nil)
	require.ErrorIs(t, err, errParse)
	assert.Zero(t, cp.Len())
}

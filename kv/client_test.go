package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), 2)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestHashOps(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.HashSet(ctx, "h", "a", "1", "b", "2"))

	v, err := c.HashGet(ctx, "h", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	_, err = c.HashGet(ctx, "h", "missing")
	assert.ErrorIs(t, err, ErrNil)

	all, err := c.HashGetAll(ctx, "h")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)

	require.NoError(t, c.HashDel(ctx, "h", "a"))
	_, err = c.HashGet(ctx, "h", "a")
	assert.ErrorIs(t, err, ErrNil)

	// Absent key reads as an empty map, not an error.
	empty, err := c.HashGetAll(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStringOpsWithTTL(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.StringSet(ctx, "session", "abc", time.Hour))
	v, err := c.StringGet(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	mr.FastForward(2 * time.Hour)
	_, err = c.StringGet(ctx, "session")
	assert.ErrorIs(t, err, ErrNil)
}

func TestSetOps(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetAdd(ctx, "s", "x", "y"))
	members, err := c.SetMembers(ctx, "s")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, members)

	require.NoError(t, c.SetRem(ctx, "s", "x"))
	members, err = c.SetMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, members)
}

func TestZSetOrdering(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.ZSetAdd(ctx, "z", 30, "third"))
	require.NoError(t, c.ZSetAdd(ctx, "z", 10, "first"))
	require.NoError(t, c.ZSetAdd(ctx, "z", 20, "second"))

	members, err := c.ZSetRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, members)

	require.NoError(t, c.ZSetRem(ctx, "z", "second"))
	members, err = c.ZSetRange(ctx, "z", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "third"}, members)
}

func TestListOpsAndTrim(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for _, v := range []string{"1", "2", "3", "4"} {
		require.NoError(t, c.ListLPush(ctx, "l", v))
	}
	// Keep only the newest two.
	require.NoError(t, c.ListLTrim(ctx, "l", 0, 1))

	items, err := c.ListLRange(ctx, "l", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3"}, items)
}

func TestExists(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.StringSet(ctx, "k", "v", 0))
	ok, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAvailabilityFlag(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	assert.True(t, c.Available())

	// A missing key is not an outage.
	_, err := c.StringGet(ctx, "missing")
	assert.ErrorIs(t, err, ErrNil)
	assert.True(t, c.Available())

	mr.Close()
	_, err = c.StringGet(ctx, "missing")
	require.Error(t, err)
	assert.False(t, c.Available())
}

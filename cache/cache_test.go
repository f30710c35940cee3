/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/assetstore/storagemodels"
)

func newTable(t *testing.T, localIDs ...string) *storagemodels.RowTable {
	t.Helper()
	col := make([]any, len(localIDs))
	for i := range col {
		col[i] = int64(i)
	}
	table, err := storagemodels.NewRowTable(localIDs, map[string][]any{"point": col})
	require.NoError(t, err)
	return table
}

func TestCachePutGet(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)

	table := newTable(t, "a", "b")
	c.Put("res-1", table)

	got, ok := c.Get("res-1")
	require.True(t, ok)
	require.Equal(t, 2, got.Len())
	require.Equal(t, 1, c.Len())

	_, ok = c.Get("res-2")
	require.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	c := New(zaptest.NewLogger(t), 2)

	c.Put("res-1", newTable(t, "a"))
	c.Put("res-2", newTable(t, "b"))

	// Refresh res-1 so res-2 is the cold entry
	_, ok := c.Get("res-1")
	require.True(t, ok)

	c.Put("res-3", newTable(t, "c"))
	require.Equal(t, 2, c.Len())

	_, ok = c.Get("res-2")
	require.False(t, ok, "cold entry should be evicted")
	_, ok = c.Get("res-1")
	require.True(t, ok)
	_, ok = c.Get("res-3")
	require.True(t, ok)
}

func TestCacheDefaultBound(t *testing.T) {
	c := New(zaptest.NewLogger(t), 0)

	for i := 0; i < DefaultMaxEntries+1; i++ {
		c.Put(fmt.Sprintf("res-%d", i), newTable(t, "a"))
	}
	require.Equal(t, DefaultMaxEntries, c.Len())
}

func TestCacheInvalidate(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	c.Put("res-1", newTable(t, "a"))
	c.Put("res-2", newTable(t, "b"))

	c.Invalidate("res-1")
	require.Equal(t, 1, c.Len())
	_, ok := c.Get("res-1")
	require.False(t, ok)
	_, ok = c.Get("res-2")
	require.True(t, ok)

	// Invalidating an absent entry is a no-op
	c.Invalidate("res-9")
	require.Equal(t, 1, c.Len())
}

func TestCacheClear(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	c.Put("res-1", newTable(t, "a"))
	c.Put("res-2", newTable(t, "b"))

	c.Clear()
	require.Equal(t, 0, c.Len())
	_, ok := c.Get("res-1")
	require.False(t, ok)
}

func TestGetOrFill(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	table := newTable(t, "a")

	var fills int64
	fill := func(context.Context) (*storagemodels.RowTable, error) {
		atomic.AddInt64(&fills, 1)
		return table, nil
	}

	got, err := c.GetOrFill(context.Background(), "res-1", fill)
	require.NoError(t, err)
	require.Equal(t, table, got)

	got, err = c.GetOrFill(context.Background(), "res-1", fill)
	require.NoError(t, err)
	require.Equal(t, table, got)

	require.Equal(t, int64(1), atomic.LoadInt64(&fills), "second read should hit the cache")
}

func TestGetOrFillError(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	boom := errors.New("container unreadable")

	var fills int64
	fill := func(context.Context) (*storagemodels.RowTable, error) {
		atomic.AddInt64(&fills, 1)
		return nil, boom
	}

	_, err := c.GetOrFill(context.Background(), "res-1", fill)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, c.Len(), "errors are not cached")

	_, err = c.GetOrFill(context.Background(), "res-1", fill)
	require.ErrorIs(t, err, boom)
	require.Equal(t, int64(2), atomic.LoadInt64(&fills))
}

func TestGetOrFillCollapsesConcurrentFills(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	table := newTable(t, "a")

	var fills int64
	gate := make(chan struct{})
	fill := func(context.Context) (*storagemodels.RowTable, error) {
		atomic.AddInt64(&fills, 1)
		<-gate
		return table, nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]*storagemodels.RowTable, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFill(context.Background(), "res-1", fill)
		}(i)
	}

	close(gate)
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, table, results[i])
	}
	require.Equal(t, int64(1), atomic.LoadInt64(&fills), "concurrent fills should collapse")
}

func TestGetOrFillRacingInvalidate(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	table := newTable(t, "a")

	started := make(chan struct{})
	release := make(chan struct{})
	fill := func(context.Context) (*storagemodels.RowTable, error) {
		close(started)
		<-release
		return table, nil
	}

	done := make(chan struct{})
	var got *storagemodels.RowTable
	var err error
	go func() {
		defer close(done)
		got, err = c.GetOrFill(context.Background(), "res-1", fill)
	}()

	<-started
	c.Invalidate("res-1")
	close(release)
	<-done

	require.NoError(t, err)
	require.Equal(t, table, got)
	// The invalidation happened after the fill began, so the stale table
	// must not be reinstated
	_, ok := c.Get("res-1")
	require.False(t, ok)
}

func TestCacheDisabled(t *testing.T) {
	c := New(zaptest.NewLogger(t), Disabled)

	c.Put("res-1", newTable(t, "a"))
	require.Equal(t, 0, c.Len())
	_, ok := c.Get("res-1")
	require.False(t, ok)

	var fills int64
	fill := func(context.Context) (*storagemodels.RowTable, error) {
		atomic.AddInt64(&fills, 1)
		return newTable(t, "a"), nil
	}

	for i := 0; i < 3; i++ {
		_, err := c.GetOrFill(context.Background(), "res-1", fill)
		require.NoError(t, err)
	}
	require.Equal(t, int64(3), atomic.LoadInt64(&fills), "disabled cache runs every fill")
}

func TestPrometheusCollectors(t *testing.T) {
	c := New(zaptest.NewLogger(t), 4)
	require.Len(t, c.PrometheusCollectors(), 4)
}

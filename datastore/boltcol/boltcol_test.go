/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package boltcol

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	aserrors "github.com/suparena/assetstore/errors"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "containers"))
	require.NoError(t, err)
	return s
}

func TestBulkRegisterAndReadAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	columns := map[string][]any{
		"point":  {int64(1), int64(2), int64(3)},
		"offset": {0.5, 1.5, 2.5},
		"label":  {"a", "b", "c"},
		"good":   {true, false, true},
	}
	localIDs, err := s.BulkRegister(ctx, "res-1", columns)
	require.NoError(t, err)
	require.Len(t, localIDs, 3)

	seen := make(map[string]bool)
	for _, id := range localIDs {
		require.NotEmpty(t, id)
		require.False(t, seen[id], "local ids must be unique")
		seen[id] = true
	}

	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	require.Equal(t, localIDs, table.LocalIDs())

	row, ok := table.Row(localIDs[1])
	require.True(t, ok)
	require.Equal(t, int64(2), row["point"])
	require.Equal(t, 1.5, row["offset"])
	require.Equal(t, "b", row["label"])
	require.Equal(t, false, row["good"])
}

func TestBulkRegisterPreservesCellTypes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	columns := map[string][]any{
		"mixed": {
			int64(42),
			3.14,
			"text",
			nil,
			[]any{int64(1), "two"},
			map[string]any{"k": int64(7)},
		},
	}
	localIDs, err := s.BulkRegister(ctx, "res-1", columns)
	require.NoError(t, err)

	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)

	want := []any{
		int64(42),
		3.14,
		"text",
		nil,
		[]any{int64(1), "two"},
		map[string]any{"k": int64(7)},
	}
	for i, w := range want {
		row, ok := table.Row(localIDs[i])
		require.True(t, ok)
		require.Equal(t, w, row["mixed"])
	}
}

func TestBulkRegisterTwice(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.BulkRegister(ctx, "res-1", map[string][]any{"point": {int64(1)}})
	require.NoError(t, err)

	_, err = s.BulkRegister(ctx, "res-1", map[string][]any{"point": {int64(2)}})
	require.ErrorIs(t, err, aserrors.ErrResourceAlreadyMaterialized)

	// The original container is untouched
	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
}

func TestBulkRegisterColumnLengthMismatch(t *testing.T) {
	s := newStore(t)

	_, err := s.BulkRegister(context.Background(), "res-1", map[string][]any{
		"point":  {int64(1), int64(2)},
		"offset": {0.5},
	})
	require.ErrorIs(t, err, aserrors.ErrColumnLengthMismatch)

	// Nothing is materialized on a rejected registration
	exists, err := s.Exists(context.Background(), "res-1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBulkRegisterReservedColumn(t *testing.T) {
	s := newStore(t)

	_, err := s.BulkRegister(context.Background(), "res-1", map[string][]any{
		"datum_id": {"x"},
	})
	require.ErrorIs(t, err, aserrors.ErrInvalidInput)
}

func TestBulkRegisterEmptyTable(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	localIDs, err := s.BulkRegister(ctx, "res-1", map[string][]any{})
	require.NoError(t, err)
	require.Empty(t, localIDs)

	// The container exists with zero rows
	exists, err := s.Exists(ctx, "res-1")
	require.NoError(t, err)
	require.True(t, exists)

	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, 0, table.Len())
}

func TestAppendRow(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	localIDs, err := s.BulkRegister(ctx, "res-1", map[string][]any{
		"point": {int64(1), int64(2)},
	})
	require.NoError(t, err)

	appended, err := s.AppendRow(ctx, "res-1", map[string]any{"point": int64(3)})
	require.NoError(t, err)
	require.NotEmpty(t, appended)
	require.NotContains(t, localIDs, appended)

	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())
	require.Equal(t, append(localIDs, appended), table.LocalIDs())

	row, ok := table.Row(appended)
	require.True(t, ok)
	require.Equal(t, int64(3), row["point"])
}

func TestAppendRowNotMaterialized(t *testing.T) {
	s := newStore(t)

	_, err := s.AppendRow(context.Background(), "res-1", map[string]any{"point": int64(1)})
	require.ErrorIs(t, err, aserrors.ErrResourceNotMaterialized)
}

func TestAppendRowColumnSetMismatch(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.BulkRegister(ctx, "res-1", map[string][]any{"point": {int64(1)}})
	require.NoError(t, err)

	_, err = s.AppendRow(ctx, "res-1", map[string]any{})
	require.ErrorIs(t, err, aserrors.ErrInvalidInput, "missing column should be rejected")

	_, err = s.AppendRow(ctx, "res-1", map[string]any{"point": int64(2), "extra": "x"})
	require.ErrorIs(t, err, aserrors.ErrInvalidInput, "unknown column should be rejected")

	_, err = s.AppendRow(ctx, "res-1", map[string]any{"point": int64(2), "datum_id": "x"})
	require.ErrorIs(t, err, aserrors.ErrInvalidInput, "reserved column should be rejected")

	// Rejected appends leave the container unchanged
	table, err := s.ReadAll(ctx, "res-1")
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
}

func TestReadAllNotMaterialized(t *testing.T) {
	s := newStore(t)

	_, err := s.ReadAll(context.Background(), "res-1")
	require.ErrorIs(t, err, aserrors.ErrResourceNotMaterialized)
}

func TestReadOne(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	localIDs, err := s.BulkRegister(ctx, "res-1", map[string][]any{
		"point": {int64(1), int64(2)},
	})
	require.NoError(t, err)

	row, err := s.ReadOne(ctx, "res-1", localIDs[0])
	require.NoError(t, err)
	require.Equal(t, int64(1), row["point"])

	_, err = s.ReadOne(ctx, "res-1", "no-such-row")
	require.ErrorIs(t, err, aserrors.ErrDatumNotFound)
}

func TestExists(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "res-1")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = s.BulkRegister(ctx, "res-1", map[string][]any{"point": {int64(1)}})
	require.NoError(t, err)

	exists, err = s.Exists(ctx, "res-1")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestFileList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.Nil(t, s.FileList("res-1"))

	_, err := s.BulkRegister(ctx, "res-1", map[string][]any{"point": {int64(1)}})
	require.NoError(t, err)

	files := s.FileList("res-1")
	require.Len(t, files, 1)
	require.Equal(t, "res-1.bolt", filepath.Base(files[0]))
}

func TestContainerPathRejectsTraversal(t *testing.T) {
	s := newStore(t)

	_, err := s.BulkRegister(context.Background(), "../evil", map[string][]any{})
	require.ErrorIs(t, err, aserrors.ErrInvalidInput)

	_, err = s.ReadAll(context.Background(), "a/b")
	require.ErrorIs(t, err, aserrors.ErrInvalidInput)
}

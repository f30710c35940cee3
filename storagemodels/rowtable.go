/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"sort"

	"github.com/suparena/assetstore/errors"
)

// RowTable is the fully materialized kwarg table of one resource: every
// column read into memory, addressable by row position or by local id.
// Tables are read-only once built, which is what makes them safe to share
// through the materialization cache.
type RowTable struct {
	localIDs []string
	columns  map[string][]any
	index    map[string]int
}

// NewRowTable builds a table from the local id column and the kwarg columns.
// Every column must have exactly one cell per local id.
func NewRowTable(localIDs []string, columns map[string][]any) (*RowTable, error) {
	want := len(localIDs)
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if got := len(columns[name]); got != want {
			return nil, errors.NewColumnLengthMismatchError(name, want, got)
		}
	}

	t := &RowTable{
		localIDs: make([]string, want),
		columns:  make(map[string][]any, len(columns)),
		index:    make(map[string]int, want),
	}
	copy(t.localIDs, localIDs)
	for name, col := range columns {
		c := make([]any, want)
		copy(c, col)
		t.columns[name] = c
	}
	for i, id := range t.localIDs {
		t.index[id] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *RowTable) Len() int {
	return len(t.localIDs)
}

// LocalIDs returns the local ids in row order.
func (t *RowTable) LocalIDs() []string {
	out := make([]string, len(t.localIDs))
	copy(out, t.localIDs)
	return out
}

// ColumnNames returns the kwarg column names in sorted order.
func (t *RowTable) ColumnNames() []string {
	names := make([]string, 0, len(t.columns))
	for name := range t.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Columns returns the kwarg columns keyed by name. The returned map is a
// copy; the column slices are shared and must not be mutated.
func (t *RowTable) Columns() map[string][]any {
	out := make(map[string][]any, len(t.columns))
	for name, col := range t.columns {
		out[name] = col
	}
	return out
}

// Row returns the kwargs of the row addressed by local id.
func (t *RowTable) Row(localID string) (map[string]any, bool) {
	i, ok := t.index[localID]
	if !ok {
		return nil, false
	}
	return t.rowAt(i), true
}

// At returns the local id and kwargs of the row at position i.
func (t *RowTable) At(i int) (string, map[string]any, bool) {
	if i < 0 || i >= len(t.localIDs) {
		return "", nil, false
	}
	return t.localIDs[i], t.rowAt(i), true
}

func (t *RowTable) rowAt(i int) map[string]any {
	row := make(map[string]any, len(t.columns))
	for name, col := range t.columns {
		row[name] = col[i]
	}
	return row
}

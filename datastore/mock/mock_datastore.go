/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides in-memory implementations of the datastore
// interfaces for testing. Both stores mirror the error semantics of the
// real backends and add builder-style error injection for exercising
// failure paths.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/ids"
	"github.com/suparena/assetstore/storagemodels"
)

// container holds one resource's rows.
type container struct {
	localIDs []string
	columns  map[string][]any
}

// DatumStore is an in-memory implementation of datastore.DatumStore.
type DatumStore struct {
	mu         sync.RWMutex
	containers map[string]*container
	nextID     int

	bulkError   error
	appendError error
	readError   error
}

// NewDatumStore creates an empty mock datum store.
func NewDatumStore() *DatumStore {
	return &DatumStore{
		containers: make(map[string]*container),
	}
}

// WithBulkError makes BulkRegister return an error.
func (m *DatumStore) WithBulkError(err error) *DatumStore {
	m.bulkError = err
	return m
}

// WithAppendError makes AppendRow return an error.
func (m *DatumStore) WithAppendError(err error) *DatumStore {
	m.appendError = err
	return m
}

// WithReadError makes ReadAll and ReadOne return an error.
func (m *DatumStore) WithReadError(err error) *DatumStore {
	m.readError = err
	return m
}

// localID generates a deterministic local id so tests can assert on
// exact datum ids.
func (m *DatumStore) localID() string {
	m.nextID++
	return fmt.Sprintf("local-%d", m.nextID)
}

// BulkRegister writes the columns as a new container. A second
// registration for the same resource fails as already materialized.
func (m *DatumStore) BulkRegister(ctx context.Context, resourceUID string, columns map[string][]any) ([]string, error) {
	if m.bulkError != nil {
		return nil, m.bulkError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.containers[resourceUID]; exists {
		return nil, errors.NewResourceAlreadyMaterializedError(resourceUID)
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := 0
	if len(names) > 0 {
		rows = len(columns[names[0]])
		for _, name := range names[1:] {
			if got := len(columns[name]); got != rows {
				return nil, errors.NewColumnLengthMismatchError(name, rows, got)
			}
		}
	}

	c := &container{
		localIDs: make([]string, 0, rows),
		columns:  make(map[string][]any, len(columns)),
	}
	for i := 0; i < rows; i++ {
		c.localIDs = append(c.localIDs, m.localID())
	}
	for name, col := range columns {
		copied := make([]any, len(col))
		copy(copied, col)
		c.columns[name] = copied
	}
	m.containers[resourceUID] = c

	out := make([]string, len(c.localIDs))
	copy(out, c.localIDs)
	return out, nil
}

// AppendRow adds one row to an existing container.
func (m *DatumStore) AppendRow(ctx context.Context, resourceUID string, row map[string]any) (string, error) {
	if m.appendError != nil {
		return "", m.appendError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, exists := m.containers[resourceUID]
	if !exists {
		return "", errors.NewResourceNotMaterializedError(resourceUID)
	}

	for name := range c.columns {
		if _, ok := row[name]; !ok {
			return "", errors.NewValidationError("row", fmt.Sprintf("missing column %q", name))
		}
	}
	for name := range row {
		if _, ok := c.columns[name]; !ok {
			return "", errors.NewValidationError("row", fmt.Sprintf("unknown column %q", name))
		}
	}

	localID := m.localID()
	c.localIDs = append(c.localIDs, localID)
	for name := range c.columns {
		c.columns[name] = append(c.columns[name], row[name])
	}
	return localID, nil
}

// ReadAll materializes the resource's full kwarg table.
func (m *DatumStore) ReadAll(ctx context.Context, resourceUID string) (*storagemodels.RowTable, error) {
	if m.readError != nil {
		return nil, m.readError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.containers[resourceUID]
	if !exists {
		return nil, errors.NewResourceNotMaterializedError(resourceUID)
	}
	return storagemodels.NewRowTable(c.localIDs, c.columns)
}

// ReadOne returns the kwargs of one row by local id.
func (m *DatumStore) ReadOne(ctx context.Context, resourceUID, localID string) (map[string]any, error) {
	table, err := m.ReadAll(ctx, resourceUID)
	if err != nil {
		return nil, err
	}
	row, ok := table.Row(localID)
	if !ok {
		return nil, errors.NewDatumNotFoundError(resourceUID + ids.Separator + localID)
	}
	return row, nil
}

// Exists reports whether the resource has a container.
func (m *DatumStore) Exists(ctx context.Context, resourceUID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.containers[resourceUID]
	return exists, nil
}

// FileList returns a synthetic path for a registered container.
func (m *DatumStore) FileList(resourceUID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, exists := m.containers[resourceUID]; !exists {
		return nil
	}
	return []string{"mock://" + resourceUID}
}

// Helper methods for testing

// Count returns the number of registered containers.
func (m *DatumStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.containers)
}

// Rows returns the number of rows in a resource's container.
func (m *DatumStore) Rows(resourceUID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, exists := m.containers[resourceUID]
	if !exists {
		return 0
	}
	return len(c.localIDs)
}

// Clear removes all containers.
func (m *DatumStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers = make(map[string]*container)
}

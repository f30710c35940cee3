/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/storagemodels"
)

// resourceRecord holds one resource's document and bookkeeping.
type resourceRecord struct {
	res          *storagemodels.Resource
	materialized bool
	history      []storagemodels.ResourceUpdate
}

// ResourceStore is an in-memory implementation of datastore.ResourceStore.
type ResourceStore struct {
	mu      sync.RWMutex
	records map[string]*resourceRecord

	insertError error
	getError    error
	markError   error
	updateError error
}

// NewResourceStore creates an empty mock resource store.
func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		records: make(map[string]*resourceRecord),
	}
}

// WithInsertError makes InsertResource return an error.
func (m *ResourceStore) WithInsertError(err error) *ResourceStore {
	m.insertError = err
	return m
}

// WithGetError makes ResourceGivenUID return an error.
func (m *ResourceStore) WithGetError(err error) *ResourceStore {
	m.getError = err
	return m
}

// WithMarkError makes MarkMaterialized return an error.
func (m *ResourceStore) WithMarkError(err error) *ResourceStore {
	m.markError = err
	return m
}

// WithUpdateError makes UpdateResource return an error.
func (m *ResourceStore) WithUpdateError(err error) *ResourceStore {
	m.updateError = err
	return m
}

// InsertResource persists a new resource document.
func (m *ResourceStore) InsertResource(ctx context.Context, res *storagemodels.Resource) error {
	if m.insertError != nil {
		return m.insertError
	}
	if res == nil || res.UID == "" {
		return errors.NewValidationError("resource", "document must carry a uid")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[res.UID]; exists {
		return errors.NewDuplicateResourceUIDError(res.UID)
	}
	m.records[res.UID] = &resourceRecord{res: res.Clone()}
	return nil
}

// ResourceGivenUID returns a copy of the current document.
func (m *ResourceStore) ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error) {
	if m.getError != nil {
		return nil, m.getError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[uid]
	if !exists {
		return nil, errors.NewResourceNotFoundError(uid)
	}
	return rec.res.Clone(), nil
}

// MarkMaterialized flips the payload state; only the first caller wins.
func (m *ResourceStore) MarkMaterialized(ctx context.Context, uid string) (bool, error) {
	if m.markError != nil {
		return false, m.markError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[uid]
	if !exists {
		return false, errors.NewResourceNotFoundError(uid)
	}
	if rec.materialized {
		return false, nil
	}
	rec.materialized = true
	return true, nil
}

// IsMaterialized reports the resource's payload state.
func (m *ResourceStore) IsMaterialized(ctx context.Context, uid string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[uid]
	if !exists {
		return false, errors.NewResourceNotFoundError(uid)
	}
	return rec.materialized, nil
}

// UpdateResource applies one field change and appends an update record.
func (m *ResourceStore) UpdateResource(ctx context.Context, uid, field string, value any) (*storagemodels.Resource, error) {
	if m.updateError != nil {
		return nil, m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[uid]
	if !exists {
		return nil, errors.NewResourceNotFoundError(uid)
	}

	updated, err := storagemodels.ApplyUpdate(rec.res, field, value)
	if err != nil {
		return nil, err
	}
	rec.history = append(rec.history, storagemodels.ResourceUpdate{
		ResourceUID: uid,
		UpdateTime:  strfmt.DateTime(time.Now().UTC()),
		Old:         *rec.res.Clone(),
		New:         *updated.Clone(),
	})
	rec.res = updated
	return updated.Clone(), nil
}

// GetResourceHistory returns the update records in creation order. A
// resource that was never updated, or never inserted, yields an empty
// slice.
func (m *ResourceStore) GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[uid]
	if !exists {
		return []storagemodels.ResourceUpdate{}, nil
	}
	out := make([]storagemodels.ResourceUpdate, len(rec.history))
	copy(out, rec.history)
	return out, nil
}

// Close is a no-op.
func (m *ResourceStore) Close() error {
	return nil
}

// Helper methods for testing

// Count returns the number of stored resources.
func (m *ResourceStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Clear removes all resources.
func (m *ResourceStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]*resourceRecord)
}

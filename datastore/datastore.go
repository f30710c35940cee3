/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/assetstore/storagemodels"
)

// DatumStore is the bulk columnar backend holding datum payload kwargs,
// one container per resource. A container is created exactly once, by
// BulkRegister, and grows only through AppendRow afterwards.
type DatumStore interface {
	// BulkRegister writes the kwarg columns as a new container for the
	// resource, generating one fresh local id per row, and returns the
	// local ids in row order. The columns must all have the same length.
	// Registering against an existing container fails with the
	// already-materialized kind.
	BulkRegister(ctx context.Context, resourceUID string, columns map[string][]any) ([]string, error)

	// AppendRow adds one row to an existing container and returns its
	// generated local id. Appending to a resource with no container fails
	// with the not-materialized kind.
	AppendRow(ctx context.Context, resourceUID string, row map[string]any) (string, error)

	// ReadAll materializes the resource's full kwarg table.
	ReadAll(ctx context.Context, resourceUID string) (*storagemodels.RowTable, error)

	// ReadOne returns the kwargs of a single row by local id.
	ReadOne(ctx context.Context, resourceUID, localID string) (map[string]any, error)

	// Exists reports whether the resource has a container.
	Exists(ctx context.Context, resourceUID string) (bool, error)

	// FileList returns the physical files backing the resource's
	// container, if any.
	FileList(resourceUID string) []string
}

// ResourceStore is the metadata backend holding resource documents, their
// materialization state, and their append-only update logs.
type ResourceStore interface {
	// InsertResource persists a new resource document. A colliding uid
	// fails with the duplicate-uid kind.
	InsertResource(ctx context.Context, res *storagemodels.Resource) error

	// ResourceGivenUID returns the current view of a resource.
	ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error)

	// MarkMaterialized flips the resource's payload state from
	// unmaterialized to materialized. It reports whether this call made
	// the transition; the state never goes back.
	MarkMaterialized(ctx context.Context, uid string) (bool, error)

	// IsMaterialized reports the resource's payload state.
	IsMaterialized(ctx context.Context, uid string) (bool, error)

	// UpdateResource records one field change in the resource's update
	// log and returns the updated view.
	UpdateResource(ctx context.Context, uid, field string, value any) (*storagemodels.Resource, error)

	// GetResourceHistory returns the resource's update records in
	// creation order. A resource that was never updated yields an empty
	// slice.
	GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error)

	// Close releases the store's underlying handles.
	Close() error
}

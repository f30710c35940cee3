/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"context"
	"path/filepath"

	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/handlers"
	"github.com/suparena/assetstore/ids"
	"github.com/suparena/assetstore/storagemodels"
)

// Retrieve materializes one datum's payload: split the datum id, look up
// the owning resource and its handler, find the row, and hand the merged
// kwargs to the handler. Row tables come through the cache; with caching
// disabled the row is read straight from the container.
func (r *Registry) Retrieve(ctx context.Context, datumID string) (any, error) {
	resourceUID, localID, err := ids.SplitDatumID(datumID)
	if err != nil {
		return nil, err
	}
	res, err := r.resources.ResourceGivenUID(ctx, resourceUID)
	if err != nil {
		return nil, err
	}
	handler, err := r.handlers.Get(res.Spec)
	if err != nil {
		return nil, err
	}

	var row map[string]any
	if r.cache.Enabled() {
		table, err := r.cache.GetOrFill(ctx, resourceUID, func(ctx context.Context) (*storagemodels.RowTable, error) {
			return r.datums.ReadAll(ctx, resourceUID)
		})
		if err != nil {
			return nil, err
		}
		var ok bool
		if row, ok = table.Row(localID); !ok {
			return nil, errors.NewDatumNotFoundError(datumID)
		}
	} else {
		if row, err = r.datums.ReadOne(ctx, resourceUID, localID); err != nil {
			return nil, err
		}
	}

	r.metrics.retrieves.Inc()
	return handler.Materialize(mergeKwargs(res, row))
}

// mergeKwargs builds the map a handler sees for one datum: the resolved
// payload path, the resource kwargs over it, and the datum row over both.
// Later layers shadow earlier ones of the same name.
func mergeKwargs(res *storagemodels.Resource, row map[string]any) map[string]any {
	kwargs := make(map[string]any, len(res.ResourceKwargs)+len(row)+1)
	kwargs[storagemodels.FieldResourcePath] = filepath.Join(res.Root, res.ResourcePath)
	for k, v := range res.ResourceKwargs {
		kwargs[k] = v
	}
	for k, v := range row {
		kwargs[k] = v
	}
	return kwargs
}

// DatumsByResource streams the resource's datums in row order. The stream
// is finite and lazy: rows are produced as the consumer reads, and a
// fresh call observes rows appended since the last one because it reads
// the container directly rather than the cache. The error channel yields
// at most one error; both channels close when the stream ends.
func (r *Registry) DatumsByResource(ctx context.Context, resourceUID string) (<-chan storagemodels.Datum, <-chan error) {
	out := make(chan storagemodels.Datum)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		table, err := r.datums.ReadAll(ctx, resourceUID)
		if err != nil {
			errc <- err
			return
		}
		for i := 0; i < table.Len(); i++ {
			localID, kwargs, _ := table.At(i)
			datumID, err := ids.MakeDatumID(resourceUID, localID)
			if err != nil {
				errc <- err
				return
			}
			select {
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			case out <- storagemodels.Datum{DatumID: datumID, ResourceUID: resourceUID, DatumKwargs: kwargs}:
			}
		}
	}()

	return out, errc
}

// GetFileList returns the physical files carrying the resource's payload.
// A handler with the FileLister capability decides from the datum kwarg
// sets (merged over the resource kwargs, as in Retrieve); otherwise the
// answer is the datum store's own container files.
func (r *Registry) GetFileList(ctx context.Context, resource any) ([]string, error) {
	uid, err := storagemodels.ResourceUID(resource)
	if err != nil {
		return nil, err
	}
	res, err := r.resources.ResourceGivenUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if handler, err := r.handlers.Get(res.Spec); err == nil {
		if lister, ok := handler.(handlers.FileLister); ok {
			table, err := r.datums.ReadAll(ctx, uid)
			if err != nil {
				if errors.IsResourceNotMaterialized(err) {
					return r.datums.FileList(uid), nil
				}
				return nil, err
			}
			rows := make([]map[string]any, 0, table.Len())
			for i := 0; i < table.Len(); i++ {
				_, row, _ := table.At(i)
				rows = append(rows, mergeKwargs(res, row))
			}
			return lister.FileList(rows)
		}
	}
	return r.datums.FileList(uid), nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/ids"
	"github.com/suparena/assetstore/storagemodels"
)

// InsertResource registers a new resource and returns its document. The
// uid is assigned here; callers never choose one. The resource starts
// unmaterialized, with no datum container.
func (r *Registry) InsertResource(ctx context.Context, spec, root, resourcePath string, resourceKwargs map[string]any, runStart string) (*storagemodels.Resource, error) {
	if spec == "" {
		return nil, errors.NewValidationError("spec", "must not be empty")
	}
	if resourceKwargs == nil {
		resourceKwargs = map[string]any{}
	}

	res := &storagemodels.Resource{
		UID:            r.newUID(),
		Spec:           spec,
		Root:           root,
		ResourcePath:   resourcePath,
		ResourceKwargs: resourceKwargs,
		RunStart:       runStart,
	}
	if err := r.resources.InsertResource(ctx, res); err != nil {
		return nil, err
	}

	r.metrics.resourcesInserted.Inc()
	r.log.Debug("inserted resource",
		zap.String("resource_uid", res.UID),
		zap.String("spec", spec))
	return res, nil
}

// InsertDatum writes one datum row for the resource, choosing the
// container write path from the resource's payload state: a materialized
// resource takes an append, an unmaterialized one claims the state and
// registers a single-row container. Either path falls back to the other
// when the container's actual state disagrees with the metadata, so the
// write lands wherever the race settled. Kwargs must be non-empty; the
// container derives row existence from its columns.
func (r *Registry) InsertDatum(ctx context.Context, resource any, kwargs map[string]any) (*storagemodels.Datum, error) {
	uid, err := storagemodels.ResourceUID(resource)
	if err != nil {
		return nil, err
	}
	if len(kwargs) == 0 {
		return nil, errors.NewValidationError("kwargs", "must carry at least one column")
	}

	materialized, err := r.resources.IsMaterialized(ctx, uid)
	if err != nil {
		return nil, err
	}

	var localID string
	path := insertPathAppend
	if materialized {
		localID, err = r.datums.AppendRow(ctx, uid, kwargs)
		if errors.IsResourceNotMaterialized(err) {
			// The metadata says materialized but the container is gone;
			// recreate it from this row. The state needs no new claim.
			localID, err = r.bulkSingleRow(ctx, uid, kwargs)
			path = insertPathBulk
		}
	} else {
		if _, err = r.resources.MarkMaterialized(ctx, uid); err != nil {
			return nil, err
		}
		localID, err = r.bulkSingleRow(ctx, uid, kwargs)
		path = insertPathBulk
		if errors.IsResourceAlreadyMaterialized(err) {
			// Lost the container to a racing bulk registration; append to
			// the container that won.
			localID, err = r.datums.AppendRow(ctx, uid, kwargs)
			path = insertPathAppend
		}
	}
	if err != nil {
		return nil, err
	}

	datumID, err := ids.MakeDatumID(uid, localID)
	if err != nil {
		return nil, err
	}

	r.cache.Invalidate(uid)
	r.metrics.datumsInserted.WithLabelValues(path).Inc()
	r.log.Debug("inserted datum",
		zap.String("datum_id", datumID),
		zap.String("path", path))
	return &storagemodels.Datum{DatumID: datumID, ResourceUID: uid, DatumKwargs: kwargs}, nil
}

// bulkSingleRow registers a one-row container from a single kwarg set.
func (r *Registry) bulkSingleRow(ctx context.Context, uid string, kwargs map[string]any) (string, error) {
	columns := make(map[string][]any, len(kwargs))
	for name, value := range kwargs {
		columns[name] = []any{value}
	}
	localIDs, err := r.datums.BulkRegister(ctx, uid, columns)
	if err != nil {
		return "", err
	}
	return localIDs[0], nil
}

// BulkInsertDatum registers the resource's whole datum table in one
// container write and returns the datum ids in row order. The payload
// state is claimed first; losing that claim fails as already
// materialized rather than clobbering the winner's container.
func (r *Registry) BulkInsertDatum(ctx context.Context, resource any, table map[string][]any) ([]string, error) {
	if r.validate {
		return nil, errors.ErrValidationUnsupported
	}
	uid, err := storagemodels.ResourceUID(resource)
	if err != nil {
		return nil, err
	}

	start := r.clk.Now()
	won, err := r.resources.MarkMaterialized(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, errors.NewResourceAlreadyMaterializedError(uid)
	}

	localIDs, err := r.datums.BulkRegister(ctx, uid, table)
	if err != nil {
		return nil, err
	}

	datumIDs := make([]string, len(localIDs))
	for i, localID := range localIDs {
		if datumIDs[i], err = ids.MakeDatumID(uid, localID); err != nil {
			return nil, err
		}
	}

	r.cache.Invalidate(uid)
	r.metrics.datumsInserted.WithLabelValues(insertPathBulk).Add(float64(len(datumIDs)))
	r.log.Info("bulk registered datums",
		zap.String("resource_uid", uid),
		zap.Int("rows", len(datumIDs)),
		zap.Duration("took", r.clk.Since(start)))
	return datumIDs, nil
}

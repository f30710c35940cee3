/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-openapi/strfmt"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	aserrors "github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/storagemodels"
)

type resourceRow struct {
	UID            string `db:"uid"`
	Spec           string `db:"spec"`
	Root           string `db:"root"`
	ResourcePath   string `db:"resource_path"`
	ResourceKwargs string `db:"resource_kwargs"`
	RunStart       string `db:"run_start"`
	Materialized   bool   `db:"materialized"`
	CreatedAt      string `db:"created_at"`
}

func (r resourceRow) toResource() (*storagemodels.Resource, error) {
	kwargs, err := storagemodels.DecodeKwargs(r.ResourceKwargs)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "decode resource kwargs", err)
	}
	return &storagemodels.Resource{
		UID:            r.UID,
		Spec:           r.Spec,
		Root:           r.Root,
		ResourcePath:   r.ResourcePath,
		ResourceKwargs: kwargs,
		RunStart:       r.RunStart,
	}, nil
}

type updateRow struct {
	ID          int64  `db:"id"`
	ResourceUID string `db:"resource_uid"`
	UpdateTime  string `db:"update_time"`
	OldDoc      string `db:"old_doc"`
	NewDoc      string `db:"new_doc"`
}

// InsertResource persists a new resource document with the payload state
// unmaterialized.
func (s *Store) InsertResource(ctx context.Context, res *storagemodels.Resource) error {
	if res == nil || res.UID == "" {
		return aserrors.NewValidationError("resource", "document must carry a uid")
	}
	kwargs, err := storagemodels.EncodeKwargs(res.ResourceKwargs)
	if err != nil {
		return aserrors.NewBackendError(storeName, "encode resource kwargs", err)
	}

	q := sq.Insert("resources").
		SetMap(sq.Eq{
			"uid":             res.UID,
			"spec":            res.Spec,
			"root":            res.Root,
			"resource_path":   res.ResourcePath,
			"resource_kwargs": kwargs,
			"run_start":       res.RunStart,
			"materialized":    0,
			"created_at":      s.clk.Now().UTC().Format(time.RFC3339Nano),
		})
	query, args, err := q.ToSql()
	if err != nil {
		return aserrors.NewBackendError(storeName, "build insert", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var sqlErr sqlite3.Error
		if errors.As(err, &sqlErr) && sqlErr.Code == sqlite3.ErrConstraint {
			return aserrors.NewDuplicateResourceUIDError(res.UID)
		}
		return aserrors.NewBackendError(storeName, "insert resource", err)
	}

	s.log.Debug("inserted resource", zap.String("resource_uid", res.UID), zap.String("spec", res.Spec))
	return nil
}

// ResourceGivenUID returns the current view of a resource.
func (s *Store) ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resourceGivenUID(ctx, s.db, uid)
}

// queryer lets the lookup run against the pool or an open transaction.
type queryer interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) resourceGivenUID(ctx context.Context, q queryer, uid string) (*storagemodels.Resource, error) {
	query, args, err := sq.Select("uid", "spec", "root", "resource_path", "resource_kwargs", "run_start", "materialized", "created_at").
		From("resources").
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build select", err)
	}

	var row resourceRow
	if err := q.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, aserrors.NewResourceNotFoundError(uid)
		}
		return nil, aserrors.NewBackendError(storeName, "select resource", err)
	}
	return row.toResource()
}

// MarkMaterialized flips the payload state to materialized. The guarded
// update is the atomic claim the write paths race on: exactly one caller
// observes the transition.
func (s *Store) MarkMaterialized(ctx context.Context, uid string) (bool, error) {
	query, args, err := sq.Update("resources").
		Set("materialized", 1).
		Where(sq.Eq{"uid": uid, "materialized": 0}).
		ToSql()
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "build update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "mark materialized", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "mark materialized", err)
	}
	if n > 0 {
		return true, nil
	}

	// No transition: either the resource is already materialized or it
	// does not exist.
	var materialized bool
	query, args, err = sq.Select("materialized").From("resources").Where(sq.Eq{"uid": uid}).ToSql()
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "build select", err)
	}
	if err := s.db.GetContext(ctx, &materialized, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, aserrors.NewResourceNotFoundError(uid)
		}
		return false, aserrors.NewBackendError(storeName, "select materialized", err)
	}
	return false, nil
}

// IsMaterialized reports the resource's payload state.
func (s *Store) IsMaterialized(ctx context.Context, uid string) (bool, error) {
	query, args, err := sq.Select("materialized").From("resources").Where(sq.Eq{"uid": uid}).ToSql()
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "build select", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var materialized bool
	if err := s.db.GetContext(ctx, &materialized, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, aserrors.NewResourceNotFoundError(uid)
		}
		return false, aserrors.NewBackendError(storeName, "select materialized", err)
	}
	return materialized, nil
}

// UpdateResource appends one field change to the resource's update log
// and applies it, both in one transaction.
func (s *Store) UpdateResource(ctx context.Context, uid, field string, value any) (*storagemodels.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "begin update", err)
	}
	defer tx.Rollback()

	current, err := s.resourceGivenUID(ctx, tx, uid)
	if err != nil {
		return nil, err
	}
	updated, err := storagemodels.ApplyUpdate(current, field, value)
	if err != nil {
		return nil, err
	}

	oldDoc, err := storagemodels.EncodeResourceDoc(current)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode update record", err)
	}
	newDoc, err := storagemodels.EncodeResourceDoc(updated)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode update record", err)
	}

	now := s.clk.Now().UTC().Format(time.RFC3339Nano)
	query, args, err := sq.Insert("resource_updates").
		SetMap(sq.Eq{
			"resource_uid": uid,
			"update_time":  now,
			"old_doc":      oldDoc,
			"new_doc":      newDoc,
		}).
		ToSql()
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, aserrors.NewBackendError(storeName, "insert update record", err)
	}

	kwargs, err := storagemodels.EncodeKwargs(updated.ResourceKwargs)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode resource kwargs", err)
	}
	query, args, err = sq.Update("resources").
		SetMap(sq.Eq{
			"spec":            updated.Spec,
			"root":            updated.Root,
			"resource_path":   updated.ResourcePath,
			"resource_kwargs": kwargs,
			"run_start":       updated.RunStart,
		}).
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build update", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, aserrors.NewBackendError(storeName, "update resource", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, aserrors.NewBackendError(storeName, "commit update", err)
	}

	s.log.Debug("updated resource",
		zap.String("resource_uid", uid),
		zap.String("field", field))
	return updated, nil
}

// GetResourceHistory returns the resource's update records in creation
// order.
func (s *Store) GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error) {
	query, args, err := sq.Select("id", "resource_uid", "update_time", "old_doc", "new_doc").
		From("resource_updates").
		Where(sq.Eq{"resource_uid": uid}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build select", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []updateRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, aserrors.NewBackendError(storeName, "select history", err)
	}

	updates := make([]storagemodels.ResourceUpdate, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row.UpdateTime)
		if err != nil {
			return nil, aserrors.NewBackendError(storeName, "decode update record", err)
		}
		oldRes, err := storagemodels.DecodeResourceDoc(row.OldDoc)
		if err != nil {
			return nil, aserrors.NewBackendError(storeName, "decode update record", err)
		}
		newRes, err := storagemodels.DecodeResourceDoc(row.NewDoc)
		if err != nil {
			return nil, aserrors.NewBackendError(storeName, "decode update record", err)
		}
		updates = append(updates, storagemodels.ResourceUpdate{
			ResourceUID: row.ResourceUID,
			UpdateTime:  strfmt.DateTime(ts),
			Old:         *oldRes,
			New:         *newRes,
		})
	}
	return updates, nil
}

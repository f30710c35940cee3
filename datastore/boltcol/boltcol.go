/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package boltcol is the bulk columnar datum store: one bbolt file per
// resource, one bucket per kwarg column. Containers are created whole by
// a bulk registration and afterwards grow only row by row, so the file is
// opened per operation rather than held.
package boltcol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	aserrors "github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/ids"
	"github.com/suparena/assetstore/storagemodels"
)

const (
	storeName = "boltcol"

	// reservedColumn is generated by the store and may not be supplied
	// as a kwarg column.
	reservedColumn = "datum_id"

	containerExt = ".bolt"
	openTimeout  = 1 * time.Second
)

var (
	metaBucket = []byte("meta")
	idsBucket  = []byte("ids")

	rowsKey = []byte("rows")
	colsKey = []byte("cols")

	colBucketPrefix = []byte("col:")

	errBadMeta = errors.New("corrupt container metadata")
)

// Store implements datastore.DatumStore on a directory of bbolt container
// files.
type Store struct {
	log *zap.Logger
	dir string
}

// NewStore creates the container directory if needed and returns the
// store. A directory that cannot be created fails construction.
func NewStore(log *zap.Logger, dir string) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		return nil, aserrors.NewValidationError("dir", "must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, aserrors.NewBackendError(storeName, "create container directory", err)
	}
	return &Store{log: log, dir: dir}, nil
}

func (s *Store) containerPath(resourceUID string) (string, error) {
	if resourceUID == "" || filepath.Base(resourceUID) != resourceUID {
		return "", aserrors.NewValidationError("resourceUID", "must be a bare identifier")
	}
	return filepath.Join(s.dir, resourceUID+containerExt), nil
}

func colBucket(name string) []byte {
	return append(append([]byte{}, colBucketPrefix...), name...)
}

// BulkRegister writes all columns as a fresh container and returns the
// generated local ids in row order.
func (s *Store) BulkRegister(ctx context.Context, resourceUID string, columns map[string][]any) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.containerPath(resourceUID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		if name == reservedColumn {
			return nil, aserrors.NewValidationError("columns", fmt.Sprintf("column name %q is reserved", reservedColumn))
		}
		if name == "" {
			return nil, aserrors.NewValidationError("columns", "column name must not be empty")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	rows := 0
	if len(names) > 0 {
		rows = len(columns[names[0]])
		for _, name := range names[1:] {
			if got := len(columns[name]); got != rows {
				return nil, aserrors.NewColumnLengthMismatchError(name, rows, got)
			}
		}
	}

	// Claim the container file atomically so a racing bulk registration
	// loses with a clean error instead of clobbering data.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, aserrors.NewResourceAlreadyMaterializedError(resourceUID)
		}
		return nil, aserrors.NewBackendError(storeName, "create container", err)
	}
	if err := f.Close(); err != nil {
		return nil, aserrors.NewBackendError(storeName, "create container", err)
	}

	localIDs := make([]string, rows)
	for i := range localIDs {
		localIDs[i] = uuid.NewString()
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		os.Remove(path)
		return nil, aserrors.NewBackendError(storeName, "open container", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucket(metaBucket)
		if err != nil {
			return err
		}
		if err := meta.Put(rowsKey, itob(uint64(rows))); err != nil {
			return err
		}
		encNames, err := encodeColumnNames(names)
		if err != nil {
			return err
		}
		if err := meta.Put(colsKey, encNames); err != nil {
			return err
		}

		idb, err := tx.CreateBucket(idsBucket)
		if err != nil {
			return err
		}
		for i, id := range localIDs {
			cell, err := encodeCell(id)
			if err != nil {
				return err
			}
			if err := idb.Put(itob(uint64(i)), cell); err != nil {
				return err
			}
		}

		for _, name := range names {
			cb, err := tx.CreateBucket(colBucket(name))
			if err != nil {
				return err
			}
			for i, v := range columns[name] {
				cell, err := encodeCell(v)
				if err != nil {
					return err
				}
				if err := cb.Put(itob(uint64(i)), cell); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, aserrors.NewBackendError(storeName, "write container", err)
	}

	s.log.Debug("registered container",
		zap.String("resource_uid", resourceUID),
		zap.Int("rows", rows),
		zap.Int("columns", len(names)))
	return localIDs, nil
}

// AppendRow adds one row to an existing container and returns its local
// id. The row must carry exactly the container's column set.
func (s *Store) AppendRow(ctx context.Context, resourceUID string, row map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.containerPath(resourceUID)
	if err != nil {
		return "", err
	}
	if _, ok := row[reservedColumn]; ok {
		return "", aserrors.NewValidationError("row", fmt.Sprintf("column name %q is reserved", reservedColumn))
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", aserrors.NewResourceNotMaterializedError(resourceUID)
		}
		return "", aserrors.NewBackendError(storeName, "stat container", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return "", aserrors.NewBackendError(storeName, "open container", err)
	}

	localID := uuid.NewString()
	err = db.Update(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return errBadMeta
		}
		rawRows := meta.Get(rowsKey)
		rawCols := meta.Get(colsKey)
		if rawRows == nil || rawCols == nil {
			return errBadMeta
		}
		names, err := decodeColumnNames(rawCols)
		if err != nil {
			return err
		}
		if err := matchColumns(names, row); err != nil {
			return err
		}

		next := btoi(rawRows)
		key := itob(next)

		idb := tx.Bucket(idsBucket)
		if idb == nil {
			return errBadMeta
		}
		cell, err := encodeCell(localID)
		if err != nil {
			return err
		}
		if err := idb.Put(key, cell); err != nil {
			return err
		}

		for _, name := range names {
			cb := tx.Bucket(colBucket(name))
			if cb == nil {
				return errBadMeta
			}
			cell, err := encodeCell(row[name])
			if err != nil {
				return err
			}
			if err := cb.Put(key, cell); err != nil {
				return err
			}
		}
		return meta.Put(rowsKey, itob(next+1))
	})
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if aserrors.IsValidationError(err) {
			return "", err
		}
		return "", aserrors.NewBackendError(storeName, "append row", err)
	}

	s.log.Debug("appended row", zap.String("resource_uid", resourceUID))
	return localID, nil
}

// matchColumns verifies the row's key set equals the container's column
// set. Appends never widen or narrow a container.
func matchColumns(names []string, row map[string]any) error {
	stored := make(map[string]struct{}, len(names))
	for _, name := range names {
		stored[name] = struct{}{}
		if _, ok := row[name]; !ok {
			return aserrors.NewValidationError("row", fmt.Sprintf("missing column %q", name))
		}
	}
	for name := range row {
		if _, ok := stored[name]; !ok {
			return aserrors.NewValidationError("row", fmt.Sprintf("unknown column %q", name))
		}
	}
	return nil
}

// ReadAll materializes the resource's full kwarg table. Cells missing
// from an externally damaged container read as nil rather than failing
// the whole table.
func (s *Store) ReadAll(ctx context.Context, resourceUID string) (*storagemodels.RowTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.containerPath(resourceUID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, aserrors.NewResourceNotMaterializedError(resourceUID)
		}
		return nil, aserrors.NewBackendError(storeName, "stat container", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout, ReadOnly: true})
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "open container", err)
	}
	defer db.Close()

	var (
		localIDs []string
		columns  map[string][]any
	)
	err = db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if meta == nil {
			return errBadMeta
		}
		rawRows := meta.Get(rowsKey)
		rawCols := meta.Get(colsKey)
		if rawRows == nil || rawCols == nil {
			return errBadMeta
		}
		rows := int(btoi(rawRows))
		names, err := decodeColumnNames(rawCols)
		if err != nil {
			return err
		}

		localIDs = make([]string, rows)
		idb := tx.Bucket(idsBucket)
		for i := 0; i < rows; i++ {
			if idb == nil {
				continue
			}
			raw := idb.Get(itob(uint64(i)))
			if raw == nil {
				continue
			}
			v, err := decodeCell(raw)
			if err != nil {
				return err
			}
			if s, ok := v.(string); ok {
				localIDs[i] = s
			}
		}

		columns = make(map[string][]any, len(names))
		for _, name := range names {
			col := make([]any, rows)
			cb := tx.Bucket(colBucket(name))
			for i := 0; i < rows; i++ {
				if cb == nil {
					continue
				}
				raw := cb.Get(itob(uint64(i)))
				if raw == nil {
					continue
				}
				v, err := decodeCell(raw)
				if err != nil {
					return err
				}
				col[i] = v
			}
			columns[name] = col
		}
		return nil
	})
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "read container", err)
	}

	return storagemodels.NewRowTable(localIDs, columns)
}

// ReadOne returns the kwargs of one row. The container is materialized
// whole and indexed; there is no partial-read path.
func (s *Store) ReadOne(ctx context.Context, resourceUID, localID string) (map[string]any, error) {
	table, err := s.ReadAll(ctx, resourceUID)
	if err != nil {
		return nil, err
	}
	row, ok := table.Row(localID)
	if !ok {
		return nil, aserrors.NewDatumNotFoundError(resourceUID + ids.Separator + localID)
	}
	return row, nil
}

// Exists reports whether the resource has a container file.
func (s *Store) Exists(ctx context.Context, resourceUID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, err := s.containerPath(resourceUID)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, aserrors.NewBackendError(storeName, "stat container", err)
	}
	return true, nil
}

// FileList returns the physical files backing the resource's container.
func (s *Store) FileList(resourceUID string) []string {
	path, err := s.containerPath(resourceUID)
	if err != nil {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return []string{path}
}

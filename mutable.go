/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/storagemodels"
)

// MutableRegistry layers schema-migration operations over a Registry.
// Resource documents are immutable through the base type; every change
// made here lands in the resource's append-only update log, so the
// original document stays reconstructable.
type MutableRegistry struct {
	*Registry
}

// NewMutableRegistry wraps a registry with the migration operations.
func NewMutableRegistry(r *Registry) *MutableRegistry {
	return &MutableRegistry{Registry: r}
}

// UpdateResource records one field change and returns the updated view.
// The uid is immutable; unknown fields are rejected.
func (m *MutableRegistry) UpdateResource(ctx context.Context, resource any, field string, value any) (*storagemodels.Resource, error) {
	uid, err := storagemodels.ResourceUID(resource)
	if err != nil {
		return nil, err
	}
	updated, err := m.resources.UpdateResource(ctx, uid, field, value)
	if err != nil {
		return nil, err
	}
	m.log.Info("updated resource",
		zap.String("resource_uid", uid),
		zap.String("field", field))
	return updated, nil
}

// MoveFiles copies the resource's files under newRoot, preserving their
// layout relative to the old root, then records the root change through
// the update log. The originals are left in place so a failed move can
// be retried; nothing is recorded unless every copy succeeded. Returns
// the updated resource and the new paths.
func (m *MutableRegistry) MoveFiles(ctx context.Context, resource any, newRoot string) (*storagemodels.Resource, []string, error) {
	uid, err := storagemodels.ResourceUID(resource)
	if err != nil {
		return nil, nil, err
	}
	if newRoot == "" {
		return nil, nil, errors.NewValidationError("newRoot", "must not be empty")
	}
	res, err := m.resources.ResourceGivenUID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	files, err := m.GetFileList(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	start := m.clk.Now()
	newPaths := make([]string, 0, len(files))
	for _, f := range files {
		dst := relocate(f, res.Root, newRoot)
		if err := copyFile(f, dst); err != nil {
			return nil, nil, err
		}
		newPaths = append(newPaths, dst)
	}

	updated, err := m.resources.UpdateResource(ctx, uid, storagemodels.FieldRoot, newRoot)
	if err != nil {
		return nil, nil, err
	}
	m.log.Info("moved resource files",
		zap.String("resource_uid", uid),
		zap.String("new_root", newRoot),
		zap.Int("files", len(newPaths)),
		zap.Duration("took", m.clk.Since(start)))
	return updated, newPaths, nil
}

// relocate maps one file from the old root to the new one. A file outside
// the old root keeps only its base name.
func relocate(path, oldRoot, newRoot string) string {
	rel, err := filepath.Rel(oldRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return filepath.Join(newRoot, rel)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewBackendError("filesystem", "open source file", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.NewBackendError("filesystem", "create target directory", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.NewBackendError("filesystem", "create target file", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewBackendError("filesystem", "copy file", err)
	}
	if err := out.Close(); err != nil {
		return errors.NewBackendError("filesystem", "copy file", err)
	}
	return nil
}

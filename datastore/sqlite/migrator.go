/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	aserrors "github.com/suparena/assetstore/errors"
)

type migrator struct {
	store *Store
	log   *zap.Logger
}

func newMigrator(store *Store, log *zap.Logger) *migrator {
	return &migrator{store: store, log: log}
}

// up applies every script newer than the database's user_version. Each
// script and its version bump commit in one transaction, so a failed
// migration leaves the previous version intact.
func (m *migrator) up(ctx context.Context, source embed.FS) error {
	entries, err := source.ReadDir(".")
	if err != nil {
		return aserrors.NewBackendError(storeName, "list migrations", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	current, err := m.store.userVersion(ctx)
	if err != nil {
		return aserrors.NewBackendError(storeName, "read user_version", err)
	}

	for _, name := range names {
		version, err := scriptVersion(name)
		if err != nil {
			return err
		}
		if version <= current {
			continue
		}

		m.log.Info("Applying metadata migration", zap.String("name", name))
		script, err := source.ReadFile(name)
		if err != nil {
			return aserrors.NewBackendError(storeName, "read migration", err)
		}
		stmt := fmt.Sprintf("%s\nPRAGMA user_version = %d;", script, version)
		if err := m.store.execTrans(ctx, stmt); err != nil {
			return aserrors.NewBackendError(storeName, "apply migration "+name, err)
		}
		current = version
	}
	return nil
}

// scriptVersion extracts the schema version from a migration file name
// like "0001_create_resources.sql".
func scriptVersion(name string) (int, error) {
	idx := strings.Index(name, "_")
	if idx < 1 {
		return 0, aserrors.NewValidationError("migration", fmt.Sprintf("malformed script name %q", name))
	}
	version, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0, aserrors.NewValidationError("migration", fmt.Sprintf("malformed script name %q", name))
	}
	return version, nil
}

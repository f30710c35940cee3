/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite is the relational resource metadata store. It holds the
// resource documents, the per-resource materialization flag the write
// paths race on, and the append-only update log.
package sqlite

import (
	"context"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/suparena/assetstore/datastore/sqlite/migrations"
	aserrors "github.com/suparena/assetstore/errors"
)

const storeName = "sqlite"

// InMemory is the path of a transient store, handy for tests.
const InMemory = ":memory:"

// Store implements datastore.ResourceStore on a SQLite database.
//
// SQLite allows a single writer at a time, so writes serialize on mu
// while reads share it.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
	clk clock.Clock

	mu sync.RWMutex
}

// NewStore opens (creating if needed) the database at path and brings the
// schema up to date.
func NewStore(log *zap.Logger, path string) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path == "" {
		return nil, aserrors.NewValidationError("path", "must not be empty")
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "open database", err)
	}

	// An in-memory database lives only as long as its connection, so the
	// pool must never grow past one.
	if strings.Contains(path, InMemory) {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, aserrors.NewBackendError(storeName, "ping database", err)
	}

	s := &Store{db: db, log: log, clk: clock.New()}
	if err := newMigrator(s, log).up(context.Background(), migrations.All); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// WithClock replaces the clock used to stamp rows. Returns the store for
// chaining at construction.
func (s *Store) WithClock(clk clock.Clock) *Store {
	s.clk = clk
	return s
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) userVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "PRAGMA user_version"); err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) execTrans(ctx context.Context, stmt string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

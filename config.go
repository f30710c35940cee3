/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/suparena/assetstore/cache"
	"github.com/suparena/assetstore/datastore/boltcol"
	"github.com/suparena/assetstore/datastore/sqlite"
	"github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/handlers"
)

// ConfigVersion is the configuration schema version this build
// understands. Configs declaring any other version are rejected at load
// time rather than misread.
const ConfigVersion = 1

// Config names everything Open needs to build a registry on the local
// sqlite + boltcol stores.
type Config struct {
	// DBPath locates the resource metadata database. sqlite.InMemory
	// gives a transient registry.
	DBPath string `yaml:"db_path"`
	// DataPath is the directory holding the datum containers.
	DataPath string `yaml:"data_path"`
	// MaxCachedResources bounds the materialization cache. Zero means
	// the default bound; -1 disables caching.
	MaxCachedResources int `yaml:"max_cached_resources"`
	// ValidateInserts reserves kwarg validation on bulk inserts.
	ValidateInserts bool `yaml:"validate"`
	// Version is the config schema version. Zero means current.
	Version int `yaml:"version"`
}

// LoadConfig reads and validates a yaml config file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewBackendError("config", "read file", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.NewValidationError("config", fmt.Sprintf("parse %s: %v", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes an unset version and checks the config can build a
// working registry.
func (c *Config) Validate() error {
	if c.Version == 0 {
		c.Version = ConfigVersion
	}
	if c.Version != ConfigVersion {
		return errors.NewValidationError("version", fmt.Sprintf("unsupported config version %d", c.Version))
	}
	if c.DBPath == "" {
		return errors.NewValidationError("db_path", "must not be empty")
	}
	if c.DataPath == "" {
		return errors.NewValidationError("data_path", "must not be empty")
	}
	if c.MaxCachedResources < cache.Disabled {
		return errors.NewValidationError("max_cached_resources", "must be -1, 0, or positive")
	}
	return nil
}

// Open builds a registry on the sqlite metadata store and boltcol datum
// containers named by cfg. Construction is eager: the database is opened
// and migrated and the container directory created before Open returns,
// so a misconfigured registry fails here and not on first use.
func Open(cfg *Config, h *handlers.Registry, opts ...Option) (*Registry, error) {
	if cfg == nil {
		return nil, errors.NewValidationError("config", "must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := newSettings(opts...)

	res, err := sqlite.NewStore(s.log, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	res.WithClock(s.clk)

	data, err := boltcol.NewStore(s.log, cfg.DataPath)
	if err != nil {
		res.Close()
		return nil, err
	}

	opts = append(opts, WithCacheSize(cfg.MaxCachedResources), WithValidation(cfg.ValidateInserts))
	r := New(res, data, h, opts...)
	r.log.Info("opened asset registry",
		zap.String("db_path", cfg.DBPath),
		zap.String("data_path", cfg.DataPath))
	return r, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// settings collects the construction knobs resolved from options.
type settings struct {
	log       *zap.Logger
	clk       clock.Clock
	newUID    func() string
	cacheSize int
	validate  bool
}

func newSettings(opts ...Option) *settings {
	s := &settings{
		log:    zap.NewNop(),
		clk:    clock.New(),
		newUID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Registry at construction.
type Option func(*settings)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock sets the clock used for timestamps and durations, letting
// tests control time.
func WithClock(clk clock.Clock) Option {
	return func(s *settings) {
		if clk != nil {
			s.clk = clk
		}
	}
}

// WithUIDSource sets the generator for resource uids. The default is
// uuid.NewString; tests inject a deterministic sequence.
func WithUIDSource(newUID func() string) Option {
	return func(s *settings) {
		if newUID != nil {
			s.newUID = newUID
		}
	}
}

// WithCacheSize bounds the materialization cache. Zero means the default
// bound; cache.Disabled bypasses caching entirely.
func WithCacheSize(n int) Option {
	return func(s *settings) {
		s.cacheSize = n
	}
}

// WithValidation reserves kwarg validation on bulk inserts. No validating
// handler family exists, so enabling it makes BulkInsertDatum fail
// deterministically rather than silently skip validation.
func WithValidation(enabled bool) Option {
	return func(s *settings) {
		s.validate = enabled
	}
}

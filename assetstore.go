/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/suparena/assetstore/cache"
	"github.com/suparena/assetstore/datastore"
	"github.com/suparena/assetstore/handlers"
	"github.com/suparena/assetstore/storagemodels"
)

// Registry is the asset registry: the indirection layer between datum
// references recorded during acquisition and the bulk payloads they point
// into. It coordinates a metadata store (resource documents, payload
// state, update logs), a columnar datum store (one container per
// resource), a handler registry, and a bounded materialization cache.
//
// Resource documents are immutable through this type; schema migration
// goes through MutableRegistry.
type Registry struct {
	resources datastore.ResourceStore
	datums    datastore.DatumStore
	handlers  *handlers.Registry
	cache     *cache.Cache
	log       *zap.Logger
	clk       clock.Clock
	newUID    func() string
	validate  bool
	metrics   *registryMetrics
}

// New creates a registry over the given stores. Both stores must be
// non-nil; a nil handler registry is replaced with an empty one.
func New(res datastore.ResourceStore, data datastore.DatumStore, h *handlers.Registry, opts ...Option) *Registry {
	s := newSettings(opts...)
	if h == nil {
		h = handlers.NewRegistry()
	}
	return &Registry{
		resources: res,
		datums:    data,
		handlers:  h,
		cache:     cache.New(s.log, s.cacheSize),
		log:       s.log,
		clk:       s.clk,
		newUID:    s.newUID,
		validate:  s.validate,
		metrics:   newRegistryMetrics(),
	}
}

// ResourceGivenUID returns the current view of a resource document.
func (r *Registry) ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error) {
	return r.resources.ResourceGivenUID(ctx, uid)
}

// GetResourceHistory returns the resource's update records in creation
// order. A resource that was never updated yields an empty slice.
func (r *Registry) GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error) {
	return r.resources.GetResourceHistory(ctx, uid)
}

// GetSpecHandler returns the handler registered for the resource's spec.
func (r *Registry) GetSpecHandler(ctx context.Context, resourceUID string) (handlers.Handler, error) {
	res, err := r.resources.ResourceGivenUID(ctx, resourceUID)
	if err != nil {
		return nil, err
	}
	return r.handlers.Get(res.Spec)
}

// InvalidateCache drops the cached row table for one resource. The write
// paths call this themselves; it is exposed for callers that change
// containers out of band.
func (r *Registry) InvalidateCache(uid string) {
	r.cache.Invalidate(uid)
}

// ClearCache drops every cached row table.
func (r *Registry) ClearCache() {
	r.cache.Clear()
}

// CacheLen returns the number of cached row tables.
func (r *Registry) CacheLen() int {
	return r.cache.Len()
}

// PrometheusCollectors returns the registry's operation counters together
// with the cache's collectors, for registration by the caller.
func (r *Registry) PrometheusCollectors() []prometheus.Collector {
	return append(r.metrics.collectors(), r.cache.PrometheusCollectors()...)
}

// Close releases the metadata store. Datum containers are opened per
// operation and hold nothing between calls.
func (r *Registry) Close() error {
	r.log.Debug("closing asset registry")
	return r.resources.Close()
}

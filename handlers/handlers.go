/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package handlers

// Handler materializes one datum into a usable value. The kwargs map is the
// union of the owning resource's resource_kwargs and the datum's stored row,
// with the row winning on key collisions. The registry also resolves the
// payload location (root joined with the resource path) into the map under
// the key "resource_path" before either layer, so handlers can locate the
// payload without a resource lookup of their own.
type Handler interface {
	Materialize(kwargs map[string]any) (any, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(kwargs map[string]any) (any, error)

// Materialize calls the wrapped function.
func (f HandlerFunc) Materialize(kwargs map[string]any) (any, error) {
	return f(kwargs)
}

// FileLister is an optional capability for handlers whose datums reference
// files on disk. Given the kwarg rows of one resource's datums, each merged
// with the resource kwargs exactly as Materialize sees them, it reports the
// files those datums resolve to.
type FileLister interface {
	FileList(datumKwargs []map[string]any) ([]string, error)
}

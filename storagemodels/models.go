/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/assetstore/errors"
)

// Resource describes one addressable piece of acquired data: which handler
// understands it (Spec), where its payload lives (Root + ResourcePath), and
// the handler arguments shared by every datum (ResourceKwargs). The uid is
// assigned at registration and never changes.
type Resource struct {
	// UID is the registry-assigned identifier. Immutable.
	UID string `json:"uid" dynamodbav:"uid"`
	// Spec names the handler family that can materialize this resource.
	Spec string `json:"spec" dynamodbav:"spec"`
	// Root is the relocatable prefix of the payload location.
	Root string `json:"root" dynamodbav:"root"`
	// ResourcePath locates the payload relative to Root.
	ResourcePath string `json:"resource_path" dynamodbav:"resource_path"`
	// ResourceKwargs are handler arguments shared by all datums.
	ResourceKwargs map[string]any `json:"resource_kwargs" dynamodbav:"resource_kwargs"`
	// RunStart links the resource to an owning run. Empty means none.
	RunStart string `json:"run_start,omitempty" dynamodbav:"run_start,omitempty"`
}

// Clone returns a copy of the resource with its own kwargs map. Cell values
// are shared; callers treat them as immutable.
func (r *Resource) Clone() *Resource {
	out := *r
	if r.ResourceKwargs != nil {
		out.ResourceKwargs = make(map[string]any, len(r.ResourceKwargs))
		for k, v := range r.ResourceKwargs {
			out.ResourceKwargs[k] = v
		}
	}
	return &out
}

// ResourceUpdate is one entry in a resource's append-only change log: the
// full document before and after a single field change.
type ResourceUpdate struct {
	// ResourceUID identifies the updated resource.
	ResourceUID string `json:"resource_uid" dynamodbav:"resource_uid"`
	// UpdateTime is when the update was recorded.
	UpdateTime strfmt.DateTime `json:"update_time" dynamodbav:"update_time"`
	// Old is the document before the change.
	Old Resource `json:"old" dynamodbav:"old"`
	// New is the document after the change.
	New Resource `json:"new" dynamodbav:"new"`
}

// Datum is the external view of one row of a resource's payload.
type Datum struct {
	// DatumID is the globally unique id, resource uid + separator + local id.
	DatumID string `json:"datum_id" dynamodbav:"datum_id"`
	// ResourceUID identifies the owning resource.
	ResourceUID string `json:"resource_uid" dynamodbav:"resource_uid"`
	// DatumKwargs are the per-datum handler arguments.
	DatumKwargs map[string]any `json:"datum_kwargs" dynamodbav:"datum_kwargs"`
}

// ResourceUID resolves a resource reference to its uid. The reference may be
// the uid itself, a Resource, or a *Resource, so callers that already hold a
// document need not strip it down first.
func ResourceUID(ref any) (string, error) {
	switch v := ref.(type) {
	case string:
		if v == "" {
			return "", errors.NewValidationError("resource", "uid must not be empty")
		}
		return v, nil
	case Resource:
		if v.UID == "" {
			return "", errors.NewValidationError("resource", "document has no uid")
		}
		return v.UID, nil
	case *Resource:
		if v == nil {
			return "", errors.NewValidationError("resource", "document is nil")
		}
		if v.UID == "" {
			return "", errors.NewValidationError("resource", "document has no uid")
		}
		return v.UID, nil
	default:
		return "", errors.NewValidationError("resource", "unsupported reference type")
	}
}

// Updatable resource fields, as stored in update records.
const (
	FieldSpec           = "spec"
	FieldRoot           = "root"
	FieldResourcePath   = "resource_path"
	FieldResourceKwargs = "resource_kwargs"
	FieldRunStart       = "run_start"
)

// ApplyUpdate returns a copy of res with one field changed. The uid is
// immutable and unknown fields are rejected, so every stored update record
// replays cleanly. Both metadata drivers build their update log through
// this one function.
func ApplyUpdate(res *Resource, field string, value any) (*Resource, error) {
	if res == nil {
		return nil, errors.NewValidationError("resource", "document is nil")
	}
	out := res.Clone()
	switch field {
	case "uid":
		return nil, errors.NewValidationError("field", "uid is immutable")
	case FieldSpec, FieldRoot, FieldResourcePath, FieldRunStart:
		s, ok := value.(string)
		if !ok {
			return nil, errors.NewValidationError(field, "value must be a string")
		}
		switch field {
		case FieldSpec:
			out.Spec = s
		case FieldRoot:
			out.Root = s
		case FieldResourcePath:
			out.ResourcePath = s
		case FieldRunStart:
			out.RunStart = s
		}
	case FieldResourceKwargs:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, errors.NewValidationError(field, "value must be a map")
		}
		out.ResourceKwargs = m
	default:
		return nil, errors.NewValidationError("field", "unknown resource field "+field)
	}
	return out, nil
}

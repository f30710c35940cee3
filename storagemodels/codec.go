/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"strings"
)

// Kwarg maps travel through the metadata stores as JSON text. Decoding
// goes through json.Number so integer kwargs come back as int64 rather
// than float64; numbers written with a fraction or an exponent come back
// as float64.

// EncodeKwargs renders a kwarg map as JSON. A nil map encodes as an
// empty object.
func EncodeKwargs(kwargs map[string]any) (string, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	b, err := json.Marshal(kwargs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeKwargs parses JSON produced by EncodeKwargs, preserving the
// int64/float64 split.
func DecodeKwargs(s string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return normalizeMap(m), nil
}

func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return s
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	case map[string]any:
		return normalizeMap(t)
	default:
		return v
	}
}

// resourceDoc mirrors Resource with the kwargs kept raw so they can be
// decoded through the number-preserving path.
type resourceDoc struct {
	UID            string          `json:"uid"`
	Spec           string          `json:"spec"`
	Root           string          `json:"root"`
	ResourcePath   string          `json:"resource_path"`
	ResourceKwargs json.RawMessage `json:"resource_kwargs"`
	RunStart       string          `json:"run_start,omitempty"`
}

// EncodeResourceDoc renders a full resource document as JSON, for the
// before/after snapshots in update records.
func EncodeResourceDoc(res *Resource) (string, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeResourceDoc parses JSON produced by EncodeResourceDoc.
func DecodeResourceDoc(s string) (*Resource, error) {
	var doc resourceDoc
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	kwargs := map[string]any{}
	if len(doc.ResourceKwargs) > 0 && string(doc.ResourceKwargs) != "null" {
		var err error
		kwargs, err = DecodeKwargs(string(doc.ResourceKwargs))
		if err != nil {
			return nil, err
		}
	}
	return &Resource{
		UID:            doc.UID,
		Spec:           doc.Spec,
		Root:           doc.Root,
		ResourcePath:   doc.ResourcePath,
		ResourceKwargs: kwargs,
		RunStart:       doc.RunStart,
	}, nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"reflect"
	"testing"
)

func TestKwargsRoundTrip(t *testing.T) {
	kwargs := map[string]any{
		"count":    int64(42),
		"big":      int64(1) << 60,
		"ratio":    0.5,
		"label":    "pilatus",
		"active":   true,
		"nothing":  nil,
		"roi":      []any{int64(0), int64(512), 0.25},
		"geometry": map[string]any{"distance_mm": 143.5, "bins": int64(9)},
	}

	encoded, err := EncodeKwargs(kwargs)
	if err != nil {
		t.Fatalf("EncodeKwargs failed: %v", err)
	}
	decoded, err := DecodeKwargs(encoded)
	if err != nil {
		t.Fatalf("DecodeKwargs failed: %v", err)
	}
	if !reflect.DeepEqual(kwargs, decoded) {
		t.Errorf("Round trip mismatch:\n got %#v\nwant %#v", decoded, kwargs)
	}
}

func TestDecodeKwargsNumberForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{name: "integer", in: `{"v": 7}`, want: int64(7)},
		{name: "negative integer", in: `{"v": -7}`, want: int64(-7)},
		{name: "fraction", in: `{"v": 7.5}`, want: 7.5},
		{name: "integral float", in: `{"v": 7.0}`, want: 7.0},
		{name: "exponent", in: `{"v": 1e3}`, want: 1000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeKwargs(tt.in)
			if err != nil {
				t.Fatalf("DecodeKwargs failed: %v", err)
			}
			if decoded["v"] != tt.want {
				t.Errorf("Expected %v (%T), got %v (%T)", tt.want, tt.want, decoded["v"], decoded["v"])
			}
		})
	}
}

func TestEncodeKwargsNil(t *testing.T) {
	encoded, err := EncodeKwargs(nil)
	if err != nil {
		t.Fatalf("EncodeKwargs failed: %v", err)
	}
	if encoded != "{}" {
		t.Errorf("Expected empty object, got %q", encoded)
	}

	decoded, err := DecodeKwargs(encoded)
	if err != nil {
		t.Fatalf("DecodeKwargs failed: %v", err)
	}
	if decoded == nil || len(decoded) != 0 {
		t.Errorf("Expected empty map, got %#v", decoded)
	}
}

func TestResourceDocRoundTrip(t *testing.T) {
	res := &Resource{
		UID:          "res-1",
		Spec:         "AD_HDF5",
		Root:         "/data",
		ResourcePath: "scan.h5",
		ResourceKwargs: map[string]any{
			"frame_per_point": int64(10),
			"exposure":        0.25,
		},
		RunStart: "run-17",
	}

	encoded, err := EncodeResourceDoc(res)
	if err != nil {
		t.Fatalf("EncodeResourceDoc failed: %v", err)
	}
	decoded, err := DecodeResourceDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeResourceDoc failed: %v", err)
	}
	if !reflect.DeepEqual(res, decoded) {
		t.Errorf("Round trip mismatch:\n got %#v\nwant %#v", decoded, res)
	}
}

func TestResourceDocRoundTripEmptyFields(t *testing.T) {
	res := &Resource{
		UID:            "res-1",
		Spec:           "AD_HDF5",
		Root:           "/data",
		ResourcePath:   "scan.h5",
		ResourceKwargs: map[string]any{},
	}

	encoded, err := EncodeResourceDoc(res)
	if err != nil {
		t.Fatalf("EncodeResourceDoc failed: %v", err)
	}
	decoded, err := DecodeResourceDoc(encoded)
	if err != nil {
		t.Fatalf("DecodeResourceDoc failed: %v", err)
	}
	if !reflect.DeepEqual(res, decoded) {
		t.Errorf("Round trip mismatch:\n got %#v\nwant %#v", decoded, res)
	}
	if decoded.RunStart != "" {
		t.Errorf("Expected empty run_start, got %q", decoded.RunStart)
	}
}

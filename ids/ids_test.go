/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ids

import (
	"errors"
	"testing"

	aserrors "github.com/suparena/assetstore/errors"
)

func TestMakeDatumID(t *testing.T) {
	id, err := MakeDatumID("res-1", "point-7")
	if err != nil {
		t.Fatalf("MakeDatumID failed: %v", err)
	}
	if id != "res-1/point-7" {
		t.Errorf("Expected datum id %q, got %q", "res-1/point-7", id)
	}
}

func TestMakeDatumIDRejectsSeparator(t *testing.T) {
	_, err := MakeDatumID("res-1", "a/b")
	if err == nil {
		t.Fatal("Expected error for local id containing the separator")
	}
	if !errors.Is(err, aserrors.ErrInvalidLocalID) {
		t.Errorf("Expected ErrInvalidLocalID, got %v", err)
	}
}

func TestMakeDatumIDRejectsEmptyLocalID(t *testing.T) {
	_, err := MakeDatumID("res-1", "")
	if err == nil {
		t.Fatal("Expected error for empty local id")
	}
	if !errors.Is(err, aserrors.ErrInvalidLocalID) {
		t.Errorf("Expected ErrInvalidLocalID, got %v", err)
	}
}

func TestMakeDatumIDRejectsEmptyResourceUID(t *testing.T) {
	_, err := MakeDatumID("", "point-7")
	if err == nil {
		t.Fatal("Expected error for empty resource uid")
	}
	if !errors.Is(err, aserrors.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestSplitDatumID(t *testing.T) {
	tests := []struct {
		name        string
		datumID     string
		resourceUID string
		localID     string
	}{
		{
			name:        "simple",
			datumID:     "res-1/point-7",
			resourceUID: "res-1",
			localID:     "point-7",
		},
		{
			name:        "uuid parts",
			datumID:     "1f6e7a3c-9a2b-4d1e-8f00-1a2b3c4d5e6f/0",
			resourceUID: "1f6e7a3c-9a2b-4d1e-8f00-1a2b3c4d5e6f",
			localID:     "0",
		},
		{
			name:        "splits on first separator only",
			datumID:     "res-1/a/b",
			resourceUID: "res-1",
			localID:     "a/b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resourceUID, localID, err := SplitDatumID(tt.datumID)
			if err != nil {
				t.Fatalf("SplitDatumID failed: %v", err)
			}
			if resourceUID != tt.resourceUID {
				t.Errorf("Expected resource uid %q, got %q", tt.resourceUID, resourceUID)
			}
			if localID != tt.localID {
				t.Errorf("Expected local id %q, got %q", tt.localID, localID)
			}
		})
	}
}

func TestSplitDatumIDMalformed(t *testing.T) {
	tests := []struct {
		name    string
		datumID string
	}{
		{name: "no separator", datumID: "res-1"},
		{name: "empty", datumID: ""},
		{name: "leading separator", datumID: "/point-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := SplitDatumID(tt.datumID)
			if err == nil {
				t.Fatal("Expected error for malformed datum id")
			}
			if !errors.Is(err, aserrors.ErrDatumNotFound) {
				t.Errorf("Expected ErrDatumNotFound, got %v", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Split(Make(r, l)) must return the original parts for any valid local id
	localIDs := []string{"0", "point-7", "b2c3d4e5-1111-2222-3333-444455556666", "a b", "a.b-c_d"}
	for _, localID := range localIDs {
		id, err := MakeDatumID("res-1", localID)
		if err != nil {
			t.Fatalf("MakeDatumID(%q) failed: %v", localID, err)
		}
		resourceUID, got, err := SplitDatumID(id)
		if err != nil {
			t.Fatalf("SplitDatumID(%q) failed: %v", id, err)
		}
		if resourceUID != "res-1" || got != localID {
			t.Errorf("Round trip of %q gave (%q, %q)", localID, resourceUID, got)
		}
	}
}

func TestResourceGivenDatumID(t *testing.T) {
	uid, err := ResourceGivenDatumID("res-9/point-1")
	if err != nil {
		t.Fatalf("ResourceGivenDatumID failed: %v", err)
	}
	if uid != "res-9" {
		t.Errorf("Expected resource uid %q, got %q", "res-9", uid)
	}

	if _, err := ResourceGivenDatumID("malformed"); !errors.Is(err, aserrors.ErrDatumNotFound) {
		t.Errorf("Expected ErrDatumNotFound for malformed id, got %v", err)
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ids implements the datum addressing scheme.
//
// A datum id is the resource uid and a resource-local id joined with a
// single separator. The resource uid never contains the separator, so a
// datum id splits unambiguously on its first occurrence. The functions
// here are pure string operations; none of them touch a store.
package ids

import (
	"strings"

	"github.com/suparena/assetstore/errors"
)

// Separator joins a resource uid and a local id into a datum id.
const Separator = "/"

// MakeDatumID joins a resource uid and a local id into a datum id.
// The local id must be non-empty and must not contain the separator,
// otherwise the resulting id would not split back into its parts.
func MakeDatumID(resourceUID, localID string) (string, error) {
	if resourceUID == "" {
		return "", errors.NewValidationError("resourceUID", "must not be empty")
	}
	if localID == "" || strings.Contains(localID, Separator) {
		return "", errors.NewInvalidLocalIDError(localID)
	}
	return resourceUID + Separator + localID, nil
}

// SplitDatumID splits a datum id into its resource uid and local id on
// the first separator. A datum id with no separator, or with nothing
// before it, is malformed and reported as an unknown datum. No existence
// check is performed.
func SplitDatumID(datumID string) (resourceUID, localID string, err error) {
	i := strings.Index(datumID, Separator)
	if i <= 0 {
		return "", "", errors.NewDatumNotFoundError(datumID)
	}
	return datumID[:i], datumID[i+len(Separator):], nil
}

// ResourceGivenDatumID returns the resource uid a datum id belongs to.
func ResourceGivenDatumID(datumID string) (string, error) {
	resourceUID, _, err := SplitDatumID(datumID)
	if err != nil {
		return "", err
	}
	return resourceUID, nil
}

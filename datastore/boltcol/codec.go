/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package boltcol

import (
	"encoding/binary"

	"github.com/tinylib/msgp/msgp"
)

// Cells are stored msgpack-encoded so a retrieved kwarg keeps its type:
// integers come back as int64, floats as float64, strings, bools, and
// nested lists and maps unchanged.

func encodeCell(v any) ([]byte, error) {
	return msgp.AppendIntf(nil, v)
}

func decodeCell(b []byte) (any, error) {
	v, _, err := msgp.ReadIntfBytes(b)
	return v, err
}

func encodeColumnNames(names []string) ([]byte, error) {
	vals := make([]any, len(names))
	for i, name := range names {
		vals[i] = name
	}
	return msgp.AppendIntf(nil, vals)
}

func decodeColumnNames(b []byte) ([]string, error) {
	v, _, err := msgp.ReadIntfBytes(b)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, errBadMeta
	}
	names := make([]string, len(raw))
	for i, rv := range raw {
		s, ok := rv.(string)
		if !ok {
			return nil, errBadMeta
		}
		names[i] = s
	}
	return names, nil
}

// Row keys are big-endian so bucket iteration follows row order.

func itob(i uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, i)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

/*
Package ddb provides a DynamoDB implementation of the ResourceStore interface.

The Store supports:
  - Single-table design: a resource document and its update records share
    one partition
  - Macro-based key expansion (e.g., "RES#{uid}")
  - Conditional puts so a colliding resource uid fails cleanly
  - A conditional update as the atomic materialization claim
  - An atomic per-resource counter ordering the update log

Key Layout:

Keys use macros that are replaced with document field values:

	resourceKeyMap := map[string]string{
	    "PK": "RES#{uid}",   // Becomes "RES#abc123"
	    "SK": "RES#{uid}",
	}
	updateKeyMap := map[string]string{
	    "PK": "RES#{uid}",
	    "SK": "UPD#{seq}",   // Zero-padded so sort order is creation order
	}

Querying the partition with begins_with(SK, "UPD#") therefore returns a
resource's full history in the order it was written.

The tests against a real table are gated on AWS credentials in the
environment and skip otherwise.
*/
package ddb

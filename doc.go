/*
Package assetstore implements an asset registry for acquisition datasets:
the indirection layer between lightweight datum references recorded during
an acquisition and the bulk payloads they point into.

A Resource describes one addressable piece of acquired data (which handler
understands it, where its payload lives, shared handler arguments); a
Datum addresses one row of that payload by a two-part id,
"<resource_uid>/<local_id>". Payloads live in columnar containers written
either whole (bulk registration) or row by row (append), with the
materialization state tracked atomically in the metadata store so the two
write paths cannot clobber each other.

Key Features:
  - Two-part datum addressing with pure id functions (package ids)
  - Pluggable handler registry resolving spec names to materializers
  - Columnar datum containers on bbolt, one file per resource
  - Resource metadata on SQLite (embedded) or DynamoDB (shared)
  - Append-only resource update log with full before/after snapshots
  - Bounded LRU materialization cache with single-flight fills
  - Prometheus collectors for registry and cache operations
  - Schema migration through a separate MutableRegistry overlay

Basic Usage:

	h := handlers.NewRegistry()
	h.MustRegister("AD_HDF5", hdf5Handler)

	reg, _ := assetstore.Open(cfg, h)
	defer reg.Close()

	res, _ := reg.InsertResource(ctx, "AD_HDF5", "/data", "scan_0042.h5",
		map[string]any{"frame_per_point": int64(10)}, "run-17")

	datumIDs, _ := reg.BulkInsertDatum(ctx, res, map[string][]any{
		"point": {int64(0), int64(1), int64(2)},
	})

	img, _ := reg.Retrieve(ctx, datumIDs[0])

For more information, see the documentation at https://github.com/suparena/assetstore
*/
package assetstore

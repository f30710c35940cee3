/*
Package storagemodels defines the data structures used throughout AssetStore.

Key Types:

Resource:
The document registered for each addressable piece of acquired data:

	res := &Resource{
	    UID:          "1f6e7a3c-9a2b-4d1e-8f00-1a2b3c4d5e6f",
	    Spec:         "AD_HDF5",
	    Root:         "/data/2025",
	    ResourcePath: "scan_0042.h5",
	    ResourceKwargs: map[string]any{
	        "frame_per_point": int64(10),
	    },
	    RunStart: "run-17",
	}

ResourceUpdate:
One entry in a resource's append-only change log, holding the full
document before and after a single field change:

	updates, _ := store.GetResourceHistory(ctx, res.UID)
	for _, u := range updates {
	    fmt.Println(u.UpdateTime, u.Old.Root, "->", u.New.Root)
	}

RowTable:
The materialized kwarg table of one resource, addressable by row
position or by local id:

	table, _ := NewRowTable(
	    []string{"a", "b"},
	    map[string][]any{"point": {int64(1), int64(2)}},
	)
	row, ok := table.Row("b") // map[point:2], true

ResourceUID resolves the uid from either a bare uid string or a full
Resource document, and ApplyUpdate gives both metadata drivers one shared
implementation of field-level resource mutation.

These types provide a consistent interface across different storage implementations.
*/
package storagemodels

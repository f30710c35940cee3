/*
Package datastore defines the core interfaces for AssetStore's data persistence layer.

Two interfaces split the storage problem along its natural seam:

	type DatumStore interface {
	    BulkRegister(ctx context.Context, resourceUID string, columns map[string][]any) ([]string, error)
	    AppendRow(ctx context.Context, resourceUID string, row map[string]any) (string, error)
	    ReadAll(ctx context.Context, resourceUID string) (*storagemodels.RowTable, error)
	    ReadOne(ctx context.Context, resourceUID, localID string) (map[string]any, error)
	    Exists(ctx context.Context, resourceUID string) (bool, error)
	    FileList(resourceUID string) []string
	}

	type ResourceStore interface {
	    InsertResource(ctx context.Context, res *storagemodels.Resource) error
	    ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error)
	    MarkMaterialized(ctx context.Context, uid string) (bool, error)
	    IsMaterialized(ctx context.Context, uid string) (bool, error)
	    UpdateResource(ctx context.Context, uid, field string, value any) (*storagemodels.Resource, error)
	    GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error)
	    Close() error
	}

Implementations:
  - boltcol: bulk columnar DatumStore, one bbolt container file per resource
  - sqlite: relational ResourceStore on sqlx and go-sqlite3
  - ddb: document ResourceStore on DynamoDB with single-table design
  - mock: in-memory implementations of both interfaces for testing

Materialization state lives in the ResourceStore, not in the payload
containers: MarkMaterialized is the atomic test-and-set the write paths
use to decide between bulk registration and append.
*/
package datastore

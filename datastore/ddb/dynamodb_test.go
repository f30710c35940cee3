/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/suparena/assetstore/datastore"
	aserrors "github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/storagemodels"
)

// getResourceStore builds a store against a real table. Tests skip when
// no credentials are configured.
func getResourceStore(t *testing.T) datastore.ResourceStore {
	t.Helper()
	_ = godotenv.Load()

	awsAccessKey := os.Getenv("AWS_ACCESS_KEY")
	awsSecretKey := os.Getenv("AWS_SECRET_KEY")
	awsDDBTableName := os.Getenv("AWS_DDB_TABLE")
	region := os.Getenv("AWS_REGION")

	if awsAccessKey == "" || awsSecretKey == "" || awsDDBTableName == "" || region == "" {
		t.Skip("AWS environment not configured, skipping DynamoDB integration test")
	}

	store, err := NewStoreWithCredentials(nil, awsAccessKey, awsSecretKey, region, awsDDBTableName)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestResourceLifecycle(t *testing.T) {
	store := getResourceStore(t)
	ctx := context.Background()

	uid := uuid.NewString()
	res := &storagemodels.Resource{
		UID:          uid,
		Spec:         "AD_HDF5",
		Root:         "/data/2025",
		ResourcePath: "scan_0042.h5",
		ResourceKwargs: map[string]any{
			"frame_per_point": int64(10),
			"exposure":        0.25,
		},
		RunStart: "run-17",
	}

	if err := store.InsertResource(ctx, res); err != nil {
		t.Fatalf("InsertResource failed: %v", err)
	}

	// Duplicate uid is rejected
	if err := store.InsertResource(ctx, res); !aserrors.IsDuplicateResourceUID(err) {
		t.Errorf("Expected duplicate uid error, got %v", err)
	}

	got, err := store.ResourceGivenUID(ctx, uid)
	if err != nil {
		t.Fatalf("ResourceGivenUID failed: %v", err)
	}
	if got.Spec != res.Spec || got.Root != res.Root {
		t.Errorf("Unexpected document: %+v", got)
	}
	if got.ResourceKwargs["frame_per_point"] != int64(10) {
		t.Errorf("Integer kwarg should stay int64, got %T", got.ResourceKwargs["frame_per_point"])
	}
}

func TestMarkMaterializedClaim(t *testing.T) {
	store := getResourceStore(t)
	ctx := context.Background()

	uid := uuid.NewString()
	res := &storagemodels.Resource{
		UID:            uid,
		Spec:           "AD_HDF5",
		Root:           "/data",
		ResourcePath:   "scan.h5",
		ResourceKwargs: map[string]any{},
	}
	if err := store.InsertResource(ctx, res); err != nil {
		t.Fatalf("InsertResource failed: %v", err)
	}

	won, err := store.MarkMaterialized(ctx, uid)
	if err != nil {
		t.Fatalf("MarkMaterialized failed: %v", err)
	}
	if !won {
		t.Error("First claim should win")
	}

	won, err = store.MarkMaterialized(ctx, uid)
	if err != nil {
		t.Fatalf("MarkMaterialized failed: %v", err)
	}
	if won {
		t.Error("Second claim should lose")
	}

	materialized, err := store.IsMaterialized(ctx, uid)
	if err != nil {
		t.Fatalf("IsMaterialized failed: %v", err)
	}
	if !materialized {
		t.Error("Resource should be materialized")
	}

	if _, err := store.MarkMaterialized(ctx, uuid.NewString()); !aserrors.IsResourceNotFound(err) {
		t.Errorf("Expected resource not found, got %v", err)
	}
}

func TestUpdateResourceHistory(t *testing.T) {
	store := getResourceStore(t)
	ctx := context.Background()

	uid := uuid.NewString()
	res := &storagemodels.Resource{
		UID:            uid,
		Spec:           "AD_HDF5",
		Root:           "/data",
		ResourcePath:   "scan.h5",
		ResourceKwargs: map[string]any{},
	}
	if err := store.InsertResource(ctx, res); err != nil {
		t.Fatalf("InsertResource failed: %v", err)
	}

	if _, err := store.UpdateResource(ctx, uid, storagemodels.FieldRoot, "/stage-1"); err != nil {
		t.Fatalf("UpdateResource failed: %v", err)
	}
	if _, err := store.UpdateResource(ctx, uid, storagemodels.FieldRoot, "/stage-2"); err != nil {
		t.Fatalf("UpdateResource failed: %v", err)
	}

	got, err := store.ResourceGivenUID(ctx, uid)
	if err != nil {
		t.Fatalf("ResourceGivenUID failed: %v", err)
	}
	if got.Root != "/stage-2" {
		t.Errorf("Expected applied root /stage-2, got %q", got.Root)
	}

	history, err := store.GetResourceHistory(ctx, uid)
	if err != nil {
		t.Fatalf("GetResourceHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 update records, got %d", len(history))
	}
	if history[0].Old.Root != "/data" || history[0].New.Root != "/stage-1" {
		t.Errorf("Unexpected first record: %+v", history[0])
	}
	if history[1].Old.Root != "/stage-1" || history[1].New.Root != "/stage-2" {
		t.Errorf("Unexpected second record: %+v", history[1])
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/benbjohnson/clock"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	aserrors "github.com/suparena/assetstore/errors"
	"github.com/suparena/assetstore/storagemodels"
)

const storeName = "dynamodb"

// Store implements datastore.ResourceStore on a single DynamoDB table.
type Store struct {
	client    *sdk.Client
	tableName string
	log       *zap.Logger
	clk       clock.Clock
}

// NewDynamoDBClient initializes a DynamoDB client using static AWS
// credentials.
func NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// NewStore wraps an existing client.
func NewStore(log *zap.Logger, client *sdk.Client, tableName string) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, tableName: tableName, log: log, clk: clock.New()}
}

// NewStoreWithCredentials builds the client from static credentials and
// wraps it.
func NewStoreWithCredentials(log *zap.Logger, awsAccessKey, awsSecretKey, awsRegion, tableName string) (*Store, error) {
	client, err := NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "create client", err)
	}
	return NewStore(log, client, tableName), nil
}

// resourceItem is the stored shape of a resource document. Kwargs travel
// as JSON text so integer kwargs keep their type through the round trip.
type resourceItem struct {
	UID            string `dynamodbav:"uid"`
	Spec           string `dynamodbav:"spec"`
	Root           string `dynamodbav:"root"`
	ResourcePath   string `dynamodbav:"resource_path"`
	ResourceKwargs string `dynamodbav:"resource_kwargs"`
	RunStart       string `dynamodbav:"run_start"`
	Materialized   bool   `dynamodbav:"materialized"`
	UpdateSeq      int64  `dynamodbav:"updateseq"`
	CreatedAt      string `dynamodbav:"created_at"`
}

func newResourceItem(res *storagemodels.Resource, materialized bool, updateSeq int64, createdAt string) (resourceItem, error) {
	kwargs, err := storagemodels.EncodeKwargs(res.ResourceKwargs)
	if err != nil {
		return resourceItem{}, err
	}
	return resourceItem{
		UID:            res.UID,
		Spec:           res.Spec,
		Root:           res.Root,
		ResourcePath:   res.ResourcePath,
		ResourceKwargs: kwargs,
		RunStart:       res.RunStart,
		Materialized:   materialized,
		UpdateSeq:      updateSeq,
		CreatedAt:      createdAt,
	}, nil
}

func (i resourceItem) toResource() (*storagemodels.Resource, error) {
	kwargs, err := storagemodels.DecodeKwargs(i.ResourceKwargs)
	if err != nil {
		return nil, err
	}
	return &storagemodels.Resource{
		UID:            i.UID,
		Spec:           i.Spec,
		Root:           i.Root,
		ResourcePath:   i.ResourcePath,
		ResourceKwargs: kwargs,
		RunStart:       i.RunStart,
	}, nil
}

// updateItem is the stored shape of one update record.
type updateItem struct {
	ResourceUID string `dynamodbav:"resource_uid"`
	UpdateTime  string `dynamodbav:"update_time"`
	OldDoc      string `dynamodbav:"old_doc"`
	NewDoc      string `dynamodbav:"new_doc"`
}

// updateKeySource feeds the update key template.
type updateKeySource struct {
	UID string `dynamodbav:"uid"`
	Seq string `dynamodbav:"seq"`
}

func resourceKey(uid string) (map[string]types.AttributeValue, error) {
	return buildKeyFromExpanded(expandStringKey(resourceKeyMap, uid))
}

// InsertResource persists a new resource document with a conditional put
// so a colliding uid fails instead of overwriting.
func (s *Store) InsertResource(ctx context.Context, res *storagemodels.Resource) error {
	if res == nil || res.UID == "" {
		return aserrors.NewValidationError("resource", "document must carry a uid")
	}

	item, err := newResourceItem(res, false, 0, s.clk.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return aserrors.NewBackendError(storeName, "encode resource", err)
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return aserrors.NewBackendError(storeName, "marshal resource", err)
	}
	for k, v := range expandStringKey(resourceKeyMap, res.UID) {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return aserrors.NewDuplicateResourceUIDError(res.UID)
		}
		return aserrors.NewBackendError(storeName, "put resource", err)
	}

	s.log.Debug("inserted resource", zap.String("resource_uid", res.UID), zap.String("spec", res.Spec))
	return nil
}

func (s *Store) getItem(ctx context.Context, uid string) (*resourceItem, error) {
	key, err := resourceKey(uid)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build key", err)
	}
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "get resource", err)
	}
	if out.Item == nil {
		return nil, aserrors.NewResourceNotFoundError(uid)
	}
	var item resourceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, aserrors.NewBackendError(storeName, "unmarshal resource", err)
	}
	return &item, nil
}

// ResourceGivenUID returns the current view of a resource.
func (s *Store) ResourceGivenUID(ctx context.Context, uid string) (*storagemodels.Resource, error) {
	item, err := s.getItem(ctx, uid)
	if err != nil {
		return nil, err
	}
	res, err := item.toResource()
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "decode resource", err)
	}
	return res, nil
}

// MarkMaterialized flips the payload state with a conditional update;
// exactly one concurrent caller observes the transition.
func (s *Store) MarkMaterialized(ctx context.Context, uid string) (bool, error) {
	key, err := resourceKey(uid)
	if err != nil {
		return false, aserrors.NewBackendError(storeName, "build key", err)
	}

	_, err = s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 key,
		UpdateExpression:    aws.String("SET materialized = :true"),
		ConditionExpression: aws.String("attribute_exists(PK) AND materialized = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err == nil {
		return true, nil
	}

	var cfe *types.ConditionalCheckFailedException
	if !errors.As(err, &cfe) {
		return false, aserrors.NewBackendError(storeName, "mark materialized", err)
	}

	// The condition failed: either the state was already materialized or
	// the resource does not exist.
	if _, err := s.getItem(ctx, uid); err != nil {
		return false, err
	}
	return false, nil
}

// IsMaterialized reports the resource's payload state.
func (s *Store) IsMaterialized(ctx context.Context, uid string) (bool, error) {
	item, err := s.getItem(ctx, uid)
	if err != nil {
		return false, err
	}
	return item.Materialized, nil
}

// UpdateResource appends one field change to the resource's update log
// and applies it. The record sequence comes from an atomic counter on
// the resource item, so records keep creation order even with several
// writers.
func (s *Store) UpdateResource(ctx context.Context, uid, field string, value any) (*storagemodels.Resource, error) {
	current, err := s.ResourceGivenUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	updated, err := storagemodels.ApplyUpdate(current, field, value)
	if err != nil {
		return nil, err
	}

	key, err := resourceKey(uid)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build key", err)
	}

	// Allocate the next sequence number.
	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 key,
		UpdateExpression:    aws.String("ADD updateseq :one"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return nil, aserrors.NewResourceNotFoundError(uid)
		}
		return nil, aserrors.NewBackendError(storeName, "allocate update seq", err)
	}
	var cur resourceItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &cur); err != nil {
		return nil, aserrors.NewBackendError(storeName, "unmarshal resource", err)
	}

	oldDoc, err := storagemodels.EncodeResourceDoc(current)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode update record", err)
	}
	newDoc, err := storagemodels.EncodeResourceDoc(updated)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode update record", err)
	}

	rec := updateItem{
		ResourceUID: uid,
		UpdateTime:  s.clk.Now().UTC().Format(time.RFC3339Nano),
		OldDoc:      oldDoc,
		NewDoc:      newDoc,
	}
	avRec, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "marshal update record", err)
	}
	expanded, err := expandMacros(updateKeyMap, updateKeySource{
		UID: uid,
		Seq: fmt.Sprintf("%08d", cur.UpdateSeq),
	})
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "build update key", err)
	}
	for k, v := range expanded {
		avRec[k] = &types.AttributeValueMemberS{Value: v}
	}
	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      avRec,
	}); err != nil {
		return nil, aserrors.NewBackendError(storeName, "put update record", err)
	}

	// Persist the applied view, carrying the state attributes forward.
	item, err := newResourceItem(updated, cur.Materialized, cur.UpdateSeq, cur.CreatedAt)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "encode resource", err)
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, aserrors.NewBackendError(storeName, "marshal resource", err)
	}
	for k, v := range expandStringKey(resourceKeyMap, uid) {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return nil, aserrors.NewBackendError(storeName, "put resource", err)
	}

	s.log.Debug("updated resource",
		zap.String("resource_uid", uid),
		zap.String("field", field),
		zap.Int64("seq", cur.UpdateSeq))
	return updated, nil
}

// GetResourceHistory queries the resource's partition for update records
// in sort order, following pagination until exhausted.
func (s *Store) GetResourceHistory(ctx context.Context, uid string) ([]storagemodels.ResourceUpdate, error) {
	pk := expandStringKey(resourceKeyMap, uid)["PK"]
	exprVals := map[string]types.AttributeValue{
		":pk":  &types.AttributeValueMemberS{Value: pk},
		":upd": &types.AttributeValueMemberS{Value: "UPD#"},
	}

	updates := make([]storagemodels.ResourceUpdate, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &sdk.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    aws.String("PK = :pk AND begins_with(SK, :upd)"),
			ExpressionAttributeValues: exprVals,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, aserrors.NewBackendError(storeName, "query history", err)
		}

		for _, raw := range out.Items {
			var item updateItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, aserrors.NewBackendError(storeName, "unmarshal update record", err)
			}
			ts, err := time.Parse(time.RFC3339Nano, item.UpdateTime)
			if err != nil {
				return nil, aserrors.NewBackendError(storeName, "decode update record", err)
			}
			oldRes, err := storagemodels.DecodeResourceDoc(item.OldDoc)
			if err != nil {
				return nil, aserrors.NewBackendError(storeName, "decode update record", err)
			}
			newRes, err := storagemodels.DecodeResourceDoc(item.NewDoc)
			if err != nil {
				return nil, aserrors.NewBackendError(storeName, "decode update record", err)
			}
			updates = append(updates, storagemodels.ResourceUpdate{
				ResourceUID: item.ResourceUID,
				UpdateTime:  strfmt.DateTime(ts),
				Old:         *oldRes,
				New:         *newRes,
			})
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return updates, nil
}

// Close is a no-op; the SDK client holds no resources needing release.
func (s *Store) Close() error {
	return nil
}

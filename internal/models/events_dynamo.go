package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const keyPlaceholder = "#pk"

// DynamoDBAPI is the part of *dynamodb.Client the repo calls.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamodbRepo stores events in a table whose partition key is eventId.
type DynamodbRepo struct {
	client DynamoDBAPI
	table  string
}

func DynamodbNewRepo(client DynamoDBAPI, table string) *DynamodbRepo {
	return &DynamodbRepo{client: client, table: table}
}

func (r *DynamodbRepo) Name() string { return "dynamodb" }

func (r *DynamodbRepo) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		FieldEventID: &types.AttributeValueMemberS{Value: id},
	}
}

func (r *DynamodbRepo) GetItem(ctx context.Context, id string) (*EventItem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, dynamoError(err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item EventItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, NewAdapterError("DecodeError", fmt.Errorf("unmarshal item %s: %w", id, err))
	}
	return &item, nil
}

func (r *DynamodbRepo) PutItem(ctx context.Context, item *EventItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return NewAdapterError("EncodeError", fmt.Errorf("marshal item %s: %w", item.EventID, err))
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	}); err != nil {
		return dynamoError(err)
	}
	return nil
}

func (r *DynamodbRepo) UpdateItem(ctx context.Context, id string, upd UpdateExpr) (*EventItem, error) {
	if upd.Expression == "" {
		return nil, NewAdapterError(CodeInternal, ErrEmptyUpdate)
	}

	names := map[string]string{keyPlaceholder: FieldEventID}
	for k, v := range upd.Names {
		names[k] = v
	}
	values, err := attributevalue.MarshalMap(upd.Values)
	if err != nil {
		return nil, NewAdapterError("EncodeError", fmt.Errorf("marshal update values: %w", err))
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(id),
		UpdateExpression:          aws.String(upd.Expression),
		ConditionExpression:       aws.String("attribute_exists(" + keyPlaceholder + ")"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, errItemNotFound(id)
		}
		return nil, dynamoError(err)
	}

	var item EventItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, NewAdapterError("DecodeError", fmt.Errorf("unmarshal updated item %s: %w", id, err))
	}
	return &item, nil
}

func (r *DynamodbRepo) DeleteItem(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      r.key(id),
		ConditionExpression:      aws.String("attribute_exists(" + keyPlaceholder + ")"),
		ExpressionAttributeNames: map[string]string{keyPlaceholder: FieldEventID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return errItemNotFound(id)
		}
		return dynamoError(err)
	}
	return nil
}

// Scan pages through the table until limit matching items are collected.
// A filtered scan evaluates items before filtering, so one page may yield
// fewer matches than requested.
func (r *DynamodbRepo) Scan(ctx context.Context, filter *ScanFilter, limit int) ([]EventItem, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(int32(limit)),
	}
	if filter != nil {
		expr, err := expression.NewBuilder().
			WithFilter(expression.Name(filter.Field).Equal(expression.Value(filter.Value))).
			Build()
		if err != nil {
			return nil, NewAdapterError(CodeInternal, fmt.Errorf("build scan filter: %w", err))
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	items := make([]EventItem, 0, limit)
	pages := dynamodb.NewScanPaginator(r.client, input)
	for pages.HasMorePages() && len(items) < limit {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, dynamoError(err)
		}
		var batch []EventItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, NewAdapterError("DecodeError", fmt.Errorf("unmarshal scan page: %w", err))
		}
		for _, it := range batch {
			if len(items) == limit {
				break
			}
			items = append(items, it)
		}
	}
	return items, nil
}

func (r *DynamodbRepo) Ping(ctx context.Context) error {
	if _, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	}); err != nil {
		return dynamoError(err)
	}
	return nil
}

func dynamoError(err error) *AdapterError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewAdapterError("", err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &AdapterError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}
	return NewAdapterError("", err)
}

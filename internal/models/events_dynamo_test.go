package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getItem       func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putItem       func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateItem    func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteItem    func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	scan          func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	describeTable func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getItem(in)
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	return f.putItem(in)
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return f.updateItem(in)
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return f.deleteItem(in)
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return f.scan(in)
}

func (f *fakeDynamo) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.describeTable(in)
}

func sampleItem(id string) EventItem {
	return EventItem{
		EventID:     id,
		Title:       "Title " + id,
		Description: "Desc",
		Date:        "2030-01-01",
		Location:    "Accra",
		Capacity:    10,
		Organizer:   "Org",
		Status:      "draft",
		CreatedAt:   "2025-01-02T03:04:05.000000Z",
		UpdatedAt:   "2025-01-02T03:04:05.000000Z",
	}
}

func marshalItem(t *testing.T, it EventItem) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(it)
	require.NoError(t, err)
	return av
}

func TestDynamodbRepo_GetItem(t *testing.T) {
	want := sampleItem("evt-1")
	fake := &fakeDynamo{getItem: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
		assert.Equal(t, "events-table", aws.ToString(in.TableName))
		assert.True(t, aws.ToBool(in.ConsistentRead))
		key := in.Key[FieldEventID].(*types.AttributeValueMemberS).Value
		if key != "evt-1" {
			return &dynamodb.GetItemOutput{}, nil
		}
		return &dynamodb.GetItemOutput{Item: marshalItem(t, want)}, nil
	}}
	repo := DynamodbNewRepo(fake, "events-table")

	got, err := repo.GetItem(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, &want, got)

	missing, err := repo.GetItem(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDynamodbRepo_PutItem(t *testing.T) {
	var captured map[string]types.AttributeValue
	fake := &fakeDynamo{putItem: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
		captured = in.Item
		return &dynamodb.PutItemOutput{}, nil
	}}
	it := sampleItem("evt-1")
	require.NoError(t, DynamodbNewRepo(fake, "t").PutItem(context.Background(), &it))

	assert.Equal(t, "evt-1", captured[FieldEventID].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "10", captured[FieldCapacity].(*types.AttributeValueMemberN).Value)
	assert.Equal(t, "draft", captured[FieldStatus].(*types.AttributeValueMemberS).Value)
}

func TestDynamodbRepo_UpdateItem(t *testing.T) {
	updated := sampleItem("evt-1")
	updated.Title = "Renamed"

	fake := &fakeDynamo{updateItem: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
		assert.Equal(t, "SET #title = :title", aws.ToString(in.UpdateExpression))
		assert.Equal(t, "attribute_exists(#pk)", aws.ToString(in.ConditionExpression))
		assert.Equal(t, FieldEventID, in.ExpressionAttributeNames["#pk"])
		assert.Equal(t, FieldTitle, in.ExpressionAttributeNames["#title"])
		assert.Equal(t, "Renamed", in.ExpressionAttributeValues[":title"].(*types.AttributeValueMemberS).Value)
		assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
		return &dynamodb.UpdateItemOutput{Attributes: marshalItem(t, updated)}, nil
	}}

	expr, err := NewUpdateBuilder().Set(FieldTitle, "Renamed").Build()
	require.NoError(t, err)

	got, err := DynamodbNewRepo(fake, "t").UpdateItem(context.Background(), "evt-1", expr)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestDynamodbRepo_ConditionalFailureIsNotFound(t *testing.T) {
	ccf := &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	fake := &fakeDynamo{
		updateItem: func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) { return nil, ccf },
		deleteItem: func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) { return nil, ccf },
	}
	repo := DynamodbNewRepo(fake, "t")

	expr, err := NewUpdateBuilder().Set(FieldTitle, "x").Build()
	require.NoError(t, err)
	_, err = repo.UpdateItem(context.Background(), "gone", expr)
	assert.True(t, IsItemNotFound(err))

	assert.True(t, IsItemNotFound(repo.DeleteItem(context.Background(), "gone")))
}

func TestDynamodbRepo_ErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"api error", &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}, "ProvisionedThroughputExceededException"},
		{"resource missing", &types.ResourceNotFoundException{Message: aws.String("no table")}, "ResourceNotFoundException"},
		{"deadline", fmt.Errorf("operation error: %w", context.DeadlineExceeded), CodeTimeout},
		{"canceled", context.Canceled, CodeCanceled},
		{"other", fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDynamo{describeTable: func(*dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
				return nil, tt.err
			}}
			err := DynamodbNewRepo(fake, "t").Ping(context.Background())
			var ae *AdapterError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}

func TestDynamodbRepo_ScanPagesUntilLimit(t *testing.T) {
	pages := [][]EventItem{
		{sampleItem("a"), sampleItem("b")},
		{sampleItem("c"), sampleItem("d")},
		{sampleItem("e")},
	}
	calls := 0
	fake := &fakeDynamo{scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
		assert.Equal(t, int32(3), aws.ToInt32(in.Limit))
		require.NotNil(t, in.FilterExpression)
		assert.Contains(t, in.ExpressionAttributeNames, "#0")
		assert.Equal(t, FieldStatus, in.ExpressionAttributeNames["#0"])

		page := pages[calls]
		calls++
		out := &dynamodb.ScanOutput{}
		for _, it := range page {
			out.Items = append(out.Items, marshalItem(t, it))
		}
		if calls < len(pages) {
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				FieldEventID: &types.AttributeValueMemberS{Value: page[len(page)-1].EventID},
			}
		}
		return out, nil
	}}

	items, err := DynamodbNewRepo(fake, "t").Scan(context.Background(), &ScanFilter{Field: FieldStatus, Value: "draft"}, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{items[0].EventID, items[1].EventID, items[2].EventID})
}

func TestDynamodbRepo_ScanStopsWhenTableExhausted(t *testing.T) {
	fake := &fakeDynamo{scan: func(in *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
		assert.Nil(t, in.FilterExpression)
		return &dynamodb.ScanOutput{Items: []map[string]types.AttributeValue{marshalItem(t, sampleItem("only"))}}, nil
	}}

	items, err := DynamodbNewRepo(fake, "t").Scan(context.Background(), nil, 100)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "only", items[0].EventID)
}

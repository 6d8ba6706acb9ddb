package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Shared item plumbing for the entity repos. Every table is keyed on "id";
// lookups by other attributes go through the "<attr>-index" GSIs.

// putNew writes an item, failing with conflictErr when the id is taken.
func putNew(ctx context.Context, client *dynamodb.Client, table string, item any, conflictErr error) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("%s.marshal: %w", table, err)
	}

	cond := expression.AttributeNotExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("%s.buildExpr: %w", table, err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(table),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return conflictErr
		}
		return fmt.Errorf("%s.putItem: %w", table, err)
	}
	return nil
}

// putItem writes an item unconditionally (create-or-replace).
func putItem(ctx context.Context, client *dynamodb.Client, table string, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("%s.marshal: %w", table, err)
	}
	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("%s.putItem: %w", table, err)
	}
	return nil
}

// getByID fetches a single item by primary key. notFoundErr is returned when
// the key does not exist.
func getByID[I any](ctx context.Context, client *dynamodb.Client, table, id string, notFoundErr error) (I, error) {
	var item I
	out, err := client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return item, fmt.Errorf("%s.getItem: %w", table, err)
	}
	if out.Item == nil {
		return item, notFoundErr
	}
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return item, fmt.Errorf("%s.unmarshal: %w", table, err)
	}
	return item, nil
}

// queryByAttr fetches items where the GSI hash attribute equals value.
// limit <= 0 means no limit.
func queryByAttr[I any](ctx context.Context, client *dynamodb.Client, table, attr, value string, limit int) ([]I, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(attr + "-index"),
		KeyConditionExpression: aws.String("#attr = :value"),
		ExpressionAttributeNames: map[string]string{
			"#attr": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	out, err := client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%s.query: %w", table, err)
	}

	var items []I
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("%s.unmarshal: %w", table, err)
	}
	return items, nil
}

// queryOneByAttr fetches the single item where the GSI hash attribute equals
// value, or notFoundErr when none matches.
func queryOneByAttr[I any](ctx context.Context, client *dynamodb.Client, table, attr, value string, notFoundErr error) (I, error) {
	var item I
	items, err := queryByAttr[I](ctx, client, table, attr, value, 1)
	if err != nil {
		return item, err
	}
	if len(items) == 0 {
		return item, notFoundErr
	}
	return items[0], nil
}

// scanAll reads the whole table. Fine for the admin and reporting paths
// these stores serve; hot paths go through GSIs.
func scanAll[I any](ctx context.Context, client *dynamodb.Client, table string) ([]I, error) {
	var items []I
	var startKey map[string]types.AttributeValue

	for {
		out, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%s.scan: %w", table, err)
		}

		var page []I
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("%s.unmarshal: %w", table, err)
		}
		items = append(items, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return items, nil
}

// pageSlice applies offset/limit to an in-memory result set, mirroring the
// Mongo repos' skip/limit behaviour.
func pageSlice[I any](items []I, limit, offset int) []I {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Package ddb provides a simple repository for writing service requests to DynamoDB.
package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/kylejryan/artisan-request-portal/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// TimeLayout is RFC 3339 in UTC with fixed nanosecond width, so request_date
// sort keys order lexically and rapid duplicate submissions stay distinct.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// PutItemAPI is the subset of the DynamoDB client used by Repo.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Repo wraps a DynamoDB client and table name for service request writes.
type Repo struct {
	DB    PutItemAPI
	Table string
}

// Insert writes r as a new item. Items are keyed by (username, request_date)
// and never overwritten; a put onto an existing key fails.
func (r *Repo) Insert(ctx context.Context, req models.ServiceRequest) error {
	item, err := attributevalue.MarshalMap(req)
	if err != nil {
		return fmt.Errorf("marshal service request: %w", err)
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.Table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(request_date)"),
	})
	if err != nil {
		return fmt.Errorf("ddb put %s: %w", r.Table, err)
	}
	return nil
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// Package s3io stores request attachments in S3.
package s3io

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader writes attachments into a single bucket.
type Uploader struct {
	Client PutObjectAPI
	Bucket string
}

// Put uploads body under key and returns the key it was stored at.
// A non-positive size leaves the content length to the SDK.
func (u *Uploader) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := u.Client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s/%s: %w", u.Bucket, key, err)
	}
	return key, nil
}

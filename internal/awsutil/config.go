// Package awsutil provides utilities for loading AWS configuration.
package awsutil

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EndpointEnv overrides every service endpoint, e.g. http://localstack:4566.
const EndpointEnv = "AWS_ENDPOINT_URL"

// Load loads the AWS configuration for region and reports the custom endpoint, if any.
func Load(ctx context.Context, region string) (aws.Config, string, error) {
	endpoint := os.Getenv(EndpointEnv)
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(region)}
	if endpoint != "" {
		opts = append(opts, awsCfg.WithBaseEndpoint(endpoint))
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	return cfg, endpoint, err
}

// NewS3Client builds an S3 client, switching to path-style addressing when a
// custom endpoint is in play.
func NewS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true // localstack/dev friendliness
		}
	})
}

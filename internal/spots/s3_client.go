package spots

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// NewS3Client creates an S3 client. A non-empty endpoint points it at a local
// S3-compatible store with static credentials and path-style addressing.
func NewS3Client(ctx context.Context, endpoint, region string) (*s3.Client, error) {
	if endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local S3 endpoint")
		customOptions := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
			awsconfig.WithClientLogMode(aws.LogRetries),
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, customOptions...)
		if err != nil {
			return nil, err
		}

		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg), nil
}

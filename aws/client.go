// Package aws constructs the SDK clients the sizing backends run against.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/s3du/region"
)

// loadConfig loads the shared AWS configuration with the given profile and
// resolved region. Credential resolution, TLS and retry policy are entirely
// the SDK's responsibility.
func loadConfig(ctx context.Context, profile string, r region.Region) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error

	// Add profile if specified
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	// Add region if specified
	if r.Name() != "" {
		opts = append(opts, config.WithRegion(r.Name()))
	}

	return config.LoadDefaultConfig(ctx, opts...)
}

// NewS3Client creates an S3 client in the given region, honouring any
// custom endpoint override carried by the region.
func NewS3Client(ctx context.Context, profile string, r region.Region) (*s3.Client, error) {
	log.Debug().Str("region", r.Name()).Msg("creating S3 client")

	cfg, err := loadConfig(ctx, profile, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint := r.Endpoint(); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)

			// Custom endpoints rarely support virtual-hosted bucket
			// addressing.
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// NewCloudWatchClient creates a CloudWatch client in the given region
func NewCloudWatchClient(ctx context.Context, profile string, r region.Region) (*cloudwatch.Client, error) {
	log.Debug().Str("region", r.Name()).Msg("creating CloudWatch client")

	cfg, err := loadConfig(ctx, profile, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return cloudwatch.NewFromConfig(cfg), nil
}

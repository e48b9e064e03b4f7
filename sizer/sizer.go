// Package sizer defines the contract shared by the sizing backends and
// selects one from configuration.
package sizer

import (
	"context"
	"fmt"

	"github.com/yourusername/s3du/aws"
	"github.com/yourusername/s3du/cloudwatch"
	s3backend "github.com/yourusername/s3du/s3"
	"github.com/yourusername/s3du/types"
)

// BucketSizer is implemented by every backend able to discover buckets and
// report their sizes.
//
// Buckets never returns a partial set: any unrecoverable transport or auth
// error fails the whole discovery. BucketSize must not mutate the bucket it
// is given; anything a backend needs to remember is captured during
// discovery.
type BucketSizer interface {
	Buckets(ctx context.Context) (types.Buckets, error)
	BucketSize(ctx context.Context, bucket *types.Bucket) (uint64, error)
}

// New returns the backend for the configured mode. Selection happens once
// here; callers are indifferent to which backend is active.
func New(ctx context.Context, cfg *types.Config) (BucketSizer, error) {
	switch cfg.Mode {
	case types.ModeCloudWatch:
		client, err := aws.NewCloudWatchClient(ctx, cfg.Profile, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create CloudWatch client: %w", err)
		}

		return cloudwatch.NewClient(client, cfg.BucketName), nil
	case types.ModeS3:
		client, err := aws.NewS3Client(ctx, cfg.Profile, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}

		return s3backend.NewClient(client, cfg), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

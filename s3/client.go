// Package s3 sizes buckets by enumerating their contents directly: current
// objects, object versions, or the parts of in-progress multipart uploads,
// depending on the configured object-versions selector.
package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/s3du/region"
	"github.com/yourusername/s3du/types"
)

// API is the subset of the S3 client the backend needs
type API interface {
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListMultipartUploads(ctx context.Context, params *s3.ListMultipartUploadsInput, optFns ...func(*s3.Options)) (*s3.ListMultipartUploadsOutput, error)
	ListObjectVersions(ctx context.Context, params *s3.ListObjectVersionsInput, optFns ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	ListParts(ctx context.Context, params *s3.ListPartsInput, optFns ...func(*s3.Options)) (*s3.ListPartsOutput, error)
}

// Client is the object-listing bucket sizing backend
type Client struct {
	api            API
	bucketName     string
	objectVersions types.ObjectVersions
	region         region.Region
}

// NewClient returns a backend over the given API, configured from cfg
func NewClient(api API, cfg *types.Config) *Client {
	return &Client{
		api:            api,
		bucketName:     cfg.BucketName,
		objectVersions: cfg.ObjectVersions,
		region:         cfg.Region,
	}
}

// Buckets discovers the buckets this client can subsequently size: visible
// to the credentials, matching the single-bucket filter if one is set,
// homed in the client's region (unless the client points at a custom
// endpoint), and passing a lightweight access probe. Buckets failing the
// probe are dropped silently, not surfaced as errors.
func (c *Client) Buckets(ctx context.Context) (types.Buckets, error) {
	names, err := c.listBuckets(ctx)
	if err != nil {
		return nil, err
	}

	// Custom endpoints don't publish a region list, so the region filter
	// below would discard every bucket.
	isCustom := c.region.IsCustom()

	var buckets types.Buckets

	for _, name := range names {
		if c.bucketName != "" && name != c.bucketName {
			continue
		}

		bucketRegion, err := c.bucketLocation(ctx, name)
		if err != nil {
			return nil, err
		}

		// Listing a bucket only works against its home region.
		if !bucketRegion.Equal(c.region) && !isCustom {
			log.Debug().
				Str("bucket", name).
				Str("region", bucketRegion.Name()).
				Msg("skipping bucket outside client region")

			continue
		}

		if !c.headBucket(ctx, name) {
			log.Debug().Str("bucket", name).Msg("skipping bucket that failed the access probe")

			continue
		}

		buckets = append(buckets, types.Bucket{
			Name:   name,
			Region: &bucketRegion,
		})
	}

	log.Debug().Int("buckets", len(buckets)).Msg("discovered accessible buckets")

	return buckets, nil
}

// BucketSize returns the bucket size in bytes under the configured
// object-versions selector.
func (c *Client) BucketSize(ctx context.Context, bucket *types.Bucket) (uint64, error) {
	log.Debug().
		Str("bucket", bucket.Name).
		Str("object_versions", string(c.objectVersions)).
		Msg("calculating size from object listing")

	switch c.objectVersions {
	case types.VersionsCurrent:
		return c.sizeCurrentObjects(ctx, bucket.Name)
	case types.VersionsAll, types.VersionsNonCurrent:
		return c.sizeObjectVersions(ctx, bucket.Name)
	case types.VersionsMultipart:
		return c.sizeMultipartUploads(ctx, bucket.Name)
	case types.VersionsAllWithMultipart:
		// Two independent passes. Multipart parts aren't materialized as
		// object versions until the upload completes, so the sums are
		// disjoint.
		versions, err := c.sizeObjectVersions(ctx, bucket.Name)
		if err != nil {
			return 0, err
		}

		multipart, err := c.sizeMultipartUploads(ctx, bucket.Name)
		if err != nil {
			return 0, err
		}

		var acc types.SizeAccumulator

		if err := acc.AddUint64(versions); err != nil {
			return 0, fmt.Errorf("failed to total %s: %w", bucket.Name, err)
		}

		if err := acc.AddUint64(multipart); err != nil {
			return 0, fmt.Errorf("failed to total %s: %w", bucket.Name, err)
		}

		return acc.Total(), nil
	default:
		return 0, fmt.Errorf("unknown object versions selector %q", c.objectVersions)
	}
}

// listBuckets returns the names of all buckets visible to the credentials
func (c *Client) listBuckets(ctx context.Context) ([]string, error) {
	output, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	names := make([]string, 0, len(output.Buckets))

	for _, bucket := range output.Buckets {
		if name := aws.ToString(bucket.Name); name != "" {
			names = append(names, name)
		}
	}

	return names, nil
}

// bucketLocation resolves a bucket's home region, translating the legacy
// constraint encodings on the way.
func (c *Client) bucketLocation(ctx context.Context, bucket string) (region.Region, error) {
	output, err := c.api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return region.Region{}, fmt.Errorf("failed to get location of %s: %w", bucket, err)
	}

	return region.TranslateLocationConstraint(string(output.LocationConstraint)), nil
}

// headBucket reports whether the credentials can access the bucket
func (c *Client) headBucket(ctx context.Context, bucket string) bool {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})

	return err == nil
}

// includeVersion applies the object-versions selector to a single listed
// version.
func (c *Client) includeVersion(isLatest bool) bool {
	switch c.objectVersions {
	case types.VersionsAll, types.VersionsAllWithMultipart:
		return true
	case types.VersionsNonCurrent:
		return !isLatest
	default:
		return isLatest
	}
}

// sizeCurrentObjects sums the sizes of the bucket's current objects
func (c *Client) sizeCurrentObjects(ctx context.Context, bucket string) (uint64, error) {
	var (
		acc               types.SizeAccumulator
		continuationToken *string
	)

	for {
		output, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to list objects in %s: %w", bucket, err)
		}

		for _, object := range output.Contents {
			if err := acc.AddInt64(aws.ToInt64(object.Size)); err != nil {
				return 0, fmt.Errorf("failed to sum object sizes in %s: %w", bucket, err)
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}

		continuationToken = output.NextContinuationToken
	}

	return acc.Total(), nil
}

// sizeObjectVersions sums the sizes of the bucket's object versions,
// filtered through the selector. Versioned listings return every version
// of every key flagged as latest or not.
func (c *Client) sizeObjectVersions(ctx context.Context, bucket string) (uint64, error) {
	var (
		acc             types.SizeAccumulator
		keyMarker       *string
		versionIDMarker *string
	)

	for {
		output, err := c.api.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
			Bucket:          aws.String(bucket),
			KeyMarker:       keyMarker,
			VersionIdMarker: versionIDMarker,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to list object versions in %s: %w", bucket, err)
		}

		for _, version := range output.Versions {
			if !c.includeVersion(aws.ToBool(version.IsLatest)) {
				continue
			}

			if err := acc.AddInt64(aws.ToInt64(version.Size)); err != nil {
				return 0, fmt.Errorf("failed to sum version sizes in %s: %w", bucket, err)
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}

		keyMarker = output.NextKeyMarker
		versionIDMarker = output.NextVersionIdMarker
	}

	return acc.Total(), nil
}

// sizeMultipartUploads sums the part sizes of every in-progress multipart
// upload in the bucket. Parts consume storage before the upload completes.
func (c *Client) sizeMultipartUploads(ctx context.Context, bucket string) (uint64, error) {
	var (
		acc            types.SizeAccumulator
		keyMarker      *string
		uploadIDMarker *string
	)

	for {
		output, err := c.api.ListMultipartUploads(ctx, &s3.ListMultipartUploadsInput{
			Bucket:         aws.String(bucket),
			KeyMarker:      keyMarker,
			UploadIdMarker: uploadIDMarker,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to list multipart uploads in %s: %w", bucket, err)
		}

		for _, upload := range output.Uploads {
			size, err := c.sizeParts(ctx, bucket, aws.ToString(upload.Key), aws.ToString(upload.UploadId))
			if err != nil {
				return 0, err
			}

			if err := acc.AddUint64(size); err != nil {
				return 0, fmt.Errorf("failed to sum upload sizes in %s: %w", bucket, err)
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}

		keyMarker = output.NextKeyMarker
		uploadIDMarker = output.NextUploadIdMarker
	}

	return acc.Total(), nil
}

// sizeParts sums the part sizes of one in-progress multipart upload. An
// upload with zero parts sums to zero.
func (c *Client) sizeParts(ctx context.Context, bucket, key, uploadID string) (uint64, error) {
	var (
		acc              types.SizeAccumulator
		partNumberMarker *string
	)

	for {
		output, err := c.api.ListParts(ctx, &s3.ListPartsInput{
			Bucket:           aws.String(bucket),
			Key:              aws.String(key),
			PartNumberMarker: partNumberMarker,
			UploadId:         aws.String(uploadID),
		})
		if err != nil {
			return 0, fmt.Errorf("failed to list parts of %s/%s: %w", bucket, key, err)
		}

		for _, part := range output.Parts {
			if err := acc.AddInt64(aws.ToInt64(part.Size)); err != nil {
				return 0, fmt.Errorf("failed to sum part sizes of %s/%s: %w", bucket, key, err)
			}
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}

		partNumberMarker = output.NextPartNumberMarker
	}

	return acc.Total(), nil
}

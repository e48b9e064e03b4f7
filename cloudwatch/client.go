// Package cloudwatch sizes buckets from the daily BucketSizeBytes
// statistics that S3 publishes to CloudWatch per bucket and storage class.
package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/s3du/types"
)

const (
	metricName = "BucketSizeBytes"
	namespace  = "AWS/S3"

	dimensionBucketName  = "BucketName"
	dimensionStorageType = "StorageType"

	// statisticsWindow covers the last two daily datapoints so a fresh one
	// is available regardless of when the daily publication happens.
	statisticsWindow = 48 * time.Hour
	statisticsPeriod = 24 * time.Hour
)

// ErrNoDatapoints indicates that every storage class of a bucket returned
// zero datapoints. That usually means a stale or deleted bucket rather than
// an empty one, so it is an error instead of a zero size.
var ErrNoDatapoints = errors.New("no usable CloudWatch datapoints")

// API is the subset of the CloudWatch client the backend needs
type API interface {
	ListMetrics(ctx context.Context, params *cloudwatch.ListMetricsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.ListMetricsOutput, error)
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// Client is the CloudWatch bucket sizing backend
type Client struct {
	api        API
	bucketName string
	now        func() time.Time
}

// NewClient returns a backend over the given API. When bucketName is
// non-empty, discovery is filtered to that bucket.
func NewClient(api API, bucketName string) *Client {
	return &Client{
		api:        api,
		bucketName: bucketName,
		now:        time.Now,
	}
}

// Buckets discovers every bucket the metric catalog has BucketSizeBytes
// metrics for, annotated with the storage classes seen in the catalog.
func (c *Client) Buckets(ctx context.Context) (types.Buckets, error) {
	metrics, err := c.listMetrics(ctx)
	if err != nil {
		return nil, err
	}

	bucketMetrics := bucketMetricsFrom(metrics)

	buckets := make(types.Buckets, 0, len(bucketMetrics))

	for _, name := range bucketMetrics.BucketNames() {
		buckets = append(buckets, types.Bucket{
			Name:         name,
			StorageTypes: bucketMetrics.StorageTypes(name),
		})
	}

	log.Debug().Int("buckets", len(buckets)).Msg("discovered buckets from metric catalog")

	return buckets, nil
}

// BucketSize returns the bucket size in bytes as the sum over the bucket's
// storage classes of the most recent average datapoint. Classes are queried
// concurrently; a class with no fresh statistics contributes zero, but a
// bucket where every class comes back empty is an error.
func (c *Client) BucketSize(ctx context.Context, bucket *types.Bucket) (uint64, error) {
	log.Debug().Str("bucket", bucket.Name).Msg("calculating size from CloudWatch statistics")

	now := c.now()
	start := now.Add(-statisticsWindow)
	period := int32(statisticsPeriod.Seconds())

	averages := make([]float64, len(bucket.StorageTypes))
	sampled := make([]bool, len(bucket.StorageTypes))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, storageType := range bucket.StorageTypes {
		i, storageType := i, storageType
		group.Go(func() error {
			output, err := c.api.GetMetricStatistics(groupCtx, &cloudwatch.GetMetricStatisticsInput{
				Dimensions: []cwtypes.Dimension{
					{
						Name:  aws.String(dimensionBucketName),
						Value: aws.String(bucket.Name),
					},
					{
						Name:  aws.String(dimensionStorageType),
						Value: aws.String(storageType),
					},
				},
				EndTime:    aws.Time(now),
				MetricName: aws.String(metricName),
				Namespace:  aws.String(namespace),
				Period:     aws.Int32(period),
				StartTime:  aws.Time(start),
				Statistics: []cwtypes.Statistic{cwtypes.StatisticAverage},
				Unit:       cwtypes.StandardUnitBytes,
			})
			if err != nil {
				return fmt.Errorf("failed to get statistics for %s/%s: %w", bucket.Name, storageType, err)
			}

			datapoint := latestDatapoint(output.Datapoints)
			if datapoint == nil {
				// A storage class can transiently have no fresh
				// statistics.
				log.Debug().
					Str("bucket", bucket.Name).
					Str("storage_type", storageType).
					Msg("no datapoints for storage class")

				return nil
			}

			averages[i] = aws.ToFloat64(datapoint.Average)
			sampled[i] = true

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return 0, err
	}

	var acc types.SizeAccumulator

	anySampled := false

	for i, average := range averages {
		if !sampled[i] {
			continue
		}

		anySampled = true

		if err := acc.AddFloat64(average); err != nil {
			return 0, fmt.Errorf("failed to sum storage class sizes for %s: %w", bucket.Name, err)
		}
	}

	if !anySampled {
		return 0, fmt.Errorf("%w for %s", ErrNoDatapoints, bucket.Name)
	}

	return acc.Total(), nil
}

// listMetrics paginates the full BucketSizeBytes metric catalog, filtered
// to the selected bucket when one was configured.
func (c *Client) listMetrics(ctx context.Context) ([]cwtypes.Metric, error) {
	var dimensions []cwtypes.DimensionFilter

	if c.bucketName != "" {
		dimensions = []cwtypes.DimensionFilter{
			{
				Name:  aws.String(dimensionBucketName),
				Value: aws.String(c.bucketName),
			},
		}
	}

	var (
		metrics   []cwtypes.Metric
		nextToken *string
	)

	for {
		output, err := c.api.ListMetrics(ctx, &cloudwatch.ListMetricsInput{
			Dimensions: dimensions,
			MetricName: aws.String(metricName),
			Namespace:  aws.String(namespace),
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list metrics: %w", err)
		}

		metrics = append(metrics, output.Metrics...)

		// An empty page with a token is still a page, keep going until the
		// provider stops returning tokens.
		if output.NextToken == nil {
			break
		}

		nextToken = output.NextToken
	}

	return metrics, nil
}

// latestDatapoint returns the datapoint with the newest timestamp, or nil
// when there are none. A daily-period query over a two-day window normally
// yields a single datapoint, but ordering is not guaranteed when it does
// not.
func latestDatapoint(datapoints []cwtypes.Datapoint) *cwtypes.Datapoint {
	if len(datapoints) == 0 {
		return nil
	}

	sort.Slice(datapoints, func(i, j int) bool {
		return aws.ToTime(datapoints[i].Timestamp).After(aws.ToTime(datapoints[j].Timestamp))
	})

	return &datapoints[0]
}

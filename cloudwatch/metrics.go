package cloudwatch

import (
	"slices"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// BucketMetrics maps a bucket name to the distinct storage classes that
// CloudWatch has BucketSizeBytes metrics for. It is built once per sizing
// pass from the full metric catalog and read-only afterwards.
type BucketMetrics map[string][]string

// bucketMetricsFrom extracts the BucketName and StorageType dimensions from
// each catalog metric. Metrics missing either dimension are skipped.
func bucketMetricsFrom(metrics []cwtypes.Metric) BucketMetrics {
	bucketMetrics := make(BucketMetrics)

	for _, metric := range metrics {
		var name, storageType string

		for _, dimension := range metric.Dimensions {
			switch aws.ToString(dimension.Name) {
			case dimensionBucketName:
				name = aws.ToString(dimension.Value)
			case dimensionStorageType:
				storageType = aws.ToString(dimension.Value)
			}
		}

		if name == "" || storageType == "" {
			continue
		}

		if !slices.Contains(bucketMetrics[name], storageType) {
			bucketMetrics[name] = append(bucketMetrics[name], storageType)
		}
	}

	return bucketMetrics
}

// BucketNames returns the bucket names in sorted order
func (bm BucketMetrics) BucketNames() []string {
	names := make([]string, 0, len(bm))
	for name := range bm {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// StorageTypes returns the storage classes discovered for a bucket
func (bm BucketMetrics) StorageTypes(bucket string) []string {
	return bm[bucket]
}

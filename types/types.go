package types

import (
	"fmt"

	"github.com/yourusername/s3du/region"
)

// Mode selects which AWS service is used to obtain bucket sizes
type Mode string

const (
	// ModeCloudWatch sizes buckets from the daily BucketSizeBytes statistics
	ModeCloudWatch Mode = "cloudwatch"

	// ModeS3 sizes buckets by listing their contents directly
	ModeS3 Mode = "s3"
)

// ParseMode converts a mode string from the command line or environment
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCloudWatch:
		return ModeCloudWatch, nil
	case ModeS3:
		return ModeS3, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be %q or %q", s, ModeCloudWatch, ModeS3)
	}
}

// ObjectVersions selects which objects are summed when running in s3 mode
type ObjectVersions string

const (
	// VersionsAll sums every object version, current and non-current
	VersionsAll ObjectVersions = "all"

	// VersionsAllWithMultipart sums every object version plus the parts of
	// in-progress multipart uploads
	VersionsAllWithMultipart ObjectVersions = "all-with-multipart"

	// VersionsCurrent sums only the current version of each object
	VersionsCurrent ObjectVersions = "current"

	// VersionsMultipart sums only the parts of in-progress multipart uploads
	VersionsMultipart ObjectVersions = "multipart"

	// VersionsNonCurrent sums only non-current object versions
	VersionsNonCurrent ObjectVersions = "non-current"
)

// ParseObjectVersions converts an object-versions string from the command
// line or environment
func ParseObjectVersions(s string) (ObjectVersions, error) {
	switch ObjectVersions(s) {
	case VersionsAll, VersionsAllWithMultipart, VersionsCurrent, VersionsMultipart, VersionsNonCurrent:
		return ObjectVersions(s), nil
	default:
		return "", fmt.Errorf("invalid object versions %q: must be one of all, all-with-multipart, current, multipart, non-current", s)
	}
}

// SizeUnit selects how byte counts are rendered in the output
type SizeUnit string

const (
	// UnitBinary renders sizes with 1024-based units (KiB, MiB, ...)
	UnitBinary SizeUnit = "binary"

	// UnitBytes renders sizes as raw byte counts
	UnitBytes SizeUnit = "bytes"

	// UnitDecimal renders sizes with 1000-based units (kB, MB, ...)
	UnitDecimal SizeUnit = "decimal"
)

// ParseSizeUnit converts a unit string from the command line or environment
func ParseSizeUnit(s string) (SizeUnit, error) {
	switch SizeUnit(s) {
	case UnitBinary, UnitBytes, UnitDecimal:
		return SizeUnit(s), nil
	default:
		return "", fmt.Errorf("invalid unit %q: must be one of binary, bytes, decimal", s)
	}
}

// Bucket represents a discovered S3 bucket.
//
// Region is set by the s3 backend once the bucket's home region has been
// resolved. StorageTypes is set by the cloudwatch backend from the storage
// class dimensions discovered in the metric catalog. A Bucket is never
// mutated after discovery.
type Bucket struct {
	Name         string
	Region       *region.Region
	StorageTypes []string
}

// Buckets is a list of discovered buckets
type Buckets []Bucket

// Config holds everything needed to construct a sizing backend
type Config struct {
	// BucketName restricts sizing to a single bucket when non-empty
	BucketName string

	// Mode selects the backend
	Mode Mode

	// ObjectVersions selects what the s3 backend counts
	ObjectVersions ObjectVersions

	// Profile is the AWS shared config profile to use, if any
	Profile string

	// Region is the resolved client region, including any endpoint override
	Region region.Region

	// Unit selects the output format
	Unit SizeUnit
}

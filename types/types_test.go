package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"cloudwatch", ModeCloudWatch, false},
		{"s3", ModeS3, false},
		{"", "", true},
		{"S3", "", true},
		{"ec2", "", true},
	}

	for _, test := range tests {
		got, err := ParseMode(test.input)

		if test.wantErr {
			require.Error(t, err, "input %q", test.input)
			continue
		}

		require.NoError(t, err, "input %q", test.input)
		assert.Equal(t, test.want, got)
	}
}

func TestParseObjectVersions(t *testing.T) {
	tests := []struct {
		input   string
		want    ObjectVersions
		wantErr bool
	}{
		{"all", VersionsAll, false},
		{"all-with-multipart", VersionsAllWithMultipart, false},
		{"current", VersionsCurrent, false},
		{"multipart", VersionsMultipart, false},
		{"non-current", VersionsNonCurrent, false},
		{"", "", true},
		{"noncurrent", "", true},
	}

	for _, test := range tests {
		got, err := ParseObjectVersions(test.input)

		if test.wantErr {
			require.Error(t, err, "input %q", test.input)
			continue
		}

		require.NoError(t, err, "input %q", test.input)
		assert.Equal(t, test.want, got)
	}
}

func TestParseSizeUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    SizeUnit
		wantErr bool
	}{
		{"binary", UnitBinary, false},
		{"bytes", UnitBytes, false},
		{"decimal", UnitDecimal, false},
		{"", "", true},
		{"human", "", true},
	}

	for _, test := range tests {
		got, err := ParseSizeUnit(test.input)

		if test.wantErr {
			require.Error(t, err, "input %q", test.input)
			continue
		}

		require.NoError(t, err, "input %q", test.input)
		assert.Equal(t, test.want, got)
	}
}

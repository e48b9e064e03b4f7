// Package region resolves the AWS region the client should run in and
// translates the legacy location constraint values returned by the
// GetBucketLocation API.
package region

import (
	"fmt"
	"os"
	"strings"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultRegion is used when neither the command line nor the
	// environment provide a region
	DefaultRegion = "eu-west-1"

	// originalDefaultRegion is what an empty location constraint means.
	// Buckets created in us-east-1 report no constraint at all.
	originalDefaultRegion = "us-east-1"

	// legacyEUAlias is the historical location constraint for eu-west-1
	legacyEUAlias  = "EU"
	legacyEURegion = "eu-west-1"
)

// envVars are checked in order when no explicit region is given
var envVars = []string{"AWS_REGION", "AWS_DEFAULT_REGION"}

// EnvReader supplies environment variables to Resolve. Tests substitute a
// map; production code passes OSEnv.
type EnvReader interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads from the process environment
type OSEnv struct{}

// LookupEnv implements EnvReader over os.LookupEnv
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Region is a normalized region identifier with an optional service
// endpoint override. Equality compares only the identifier.
type Region struct {
	name     string
	endpoint string
}

// New returns a Region with the given identifier
func New(name string) Region {
	return Region{name: name}
}

// Name returns the region identifier
func (r Region) Name() string {
	return r.name
}

// Endpoint returns the service endpoint override, if any
func (r Region) Endpoint() string {
	return r.endpoint
}

// WithRegion returns a copy with the identifier replaced
func (r Region) WithRegion(name string) Region {
	r.name = name
	return r
}

// WithEndpoint returns a copy with the endpoint override set
func (r Region) WithEndpoint(endpoint string) Region {
	r.endpoint = endpoint
	return r
}

// Equal reports whether two regions have the same identifier. Endpoint
// overrides are ignored.
func (r Region) Equal(other Region) bool {
	return r.name == other.name
}

// IsCustom reports whether the identifier is absent from the provider's
// published region list. Custom or S3-compatible endpoints use region names
// AWS has never published, so region-based bucket filtering must be skipped
// for them.
func (r Region) IsCustom() bool {
	// us-east-1 never appears as a location constraint, it is the null
	// default.
	if r.name == originalDefaultRegion {
		return false
	}

	for _, constraint := range s3types.BucketLocationConstraint("").Values() {
		if string(constraint) == r.name {
			return false
		}
	}

	return true
}

// Resolve returns the client region. Precedence is the explicit argument,
// then the first non-empty variable in envVars, then DefaultRegion. An
// unparseable region is a configuration error and is reported before any
// network call is made.
func Resolve(explicit string, env EnvReader) (Region, error) {
	if explicit != "" {
		if err := validate(explicit); err != nil {
			return Region{}, err
		}

		return New(explicit), nil
	}

	for _, key := range envVars {
		value, ok := env.LookupEnv(key)
		if !ok || value == "" {
			continue
		}

		log.Debug().Str("var", key).Str("region", value).Msg("region from environment")

		if err := validate(value); err != nil {
			return Region{}, fmt.Errorf("%s: %w", key, err)
		}

		return New(value), nil
	}

	return New(DefaultRegion), nil
}

// TranslateLocationConstraint converts a GetBucketLocation constraint into
// a Region. Sufficiently old buckets return values that predate the modern
// region names: an empty constraint means us-east-1 and the "EU" alias
// means eu-west-1. Everything else passes through unchanged, which makes
// the translation idempotent.
func TranslateLocationConstraint(raw string) Region {
	switch raw {
	case "":
		return New(originalDefaultRegion)
	case legacyEUAlias:
		return New(legacyEURegion)
	default:
		return New(raw)
	}
}

func validate(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("invalid region %q: empty", name)
	}

	for _, r := range trimmed {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("invalid region %q: unexpected character %q", name, r)
		}
	}

	return nil
}

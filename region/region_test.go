package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapEnv map[string]string

func (m mapEnv) LookupEnv(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

func TestResolveExplicitWins(t *testing.T) {
	env := mapEnv{
		"AWS_REGION":         "us-west-2",
		"AWS_DEFAULT_REGION": "ap-southeast-2",
	}

	r, err := Resolve("eu-central-1", env)
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", r.Name())
}

func TestResolveEnvironmentOrder(t *testing.T) {
	tests := []struct {
		name string
		env  mapEnv
		want string
	}{
		{"first variable wins", mapEnv{"AWS_REGION": "us-west-2", "AWS_DEFAULT_REGION": "ap-southeast-2"}, "us-west-2"},
		{"second variable when first unset", mapEnv{"AWS_DEFAULT_REGION": "ap-southeast-2"}, "ap-southeast-2"},
		{"second variable when first empty", mapEnv{"AWS_REGION": "", "AWS_DEFAULT_REGION": "ap-southeast-2"}, "ap-southeast-2"},
		{"fallback when nothing set", mapEnv{}, DefaultRegion},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r, err := Resolve("", test.env)
			require.NoError(t, err)
			assert.Equal(t, test.want, r.Name())
		})
	}
}

func TestResolveInvalidRegion(t *testing.T) {
	tests := []string{
		" ",
		"EU-WEST-1",
		"int space station 1",
		"us_east_1",
	}

	for _, input := range tests {
		_, err := Resolve(input, mapEnv{})
		require.Error(t, err, "input %q", input)
	}

	// A bad value in the environment is just as fatal.
	_, err := Resolve("", mapEnv{"AWS_REGION": "Nope Nope 42"})
	require.Error(t, err)
}

func TestTranslateLocationConstraint(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "us-east-1"},
		{"EU", "eu-west-1"},
		{"eu-west-1", "eu-west-1"},
		{"ap-southeast-2", "ap-southeast-2"},
		{"us-east-2", "us-east-2"},
	}

	for _, test := range tests {
		got := TranslateLocationConstraint(test.raw)
		assert.Equal(t, test.want, got.Name(), "raw %q", test.raw)
	}
}

func TestTranslateLocationConstraintIdempotent(t *testing.T) {
	for _, raw := range []string{"", "EU", "eu-west-1", "us-east-1", "sa-east-1"} {
		once := TranslateLocationConstraint(raw)
		twice := TranslateLocationConstraint(once.Name())

		assert.Equal(t, once, twice, "raw %q", raw)
	}
}

func TestIsCustom(t *testing.T) {
	tests := []struct {
		region string
		want   bool
	}{
		{"eu-west-1", false},
		{"us-east-2", false},
		// us-east-1 is the null location constraint, absent from the
		// published list but certainly not custom.
		{"us-east-1", false},
		{"minio-local", true},
		{"ceph-lab-1", true},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, New(test.region).IsCustom(), "region %q", test.region)
	}
}

func TestRegionEquality(t *testing.T) {
	a := New("eu-west-1")
	b := New("eu-west-1").WithEndpoint("https://minio.example.com:9000")

	// Equality compares only the identifier, not the endpoint override.
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(New("eu-west-2")))
}

func TestRegionBuilders(t *testing.T) {
	base := New("eu-west-1")

	updated := base.WithRegion("us-west-2").WithEndpoint("https://minio.example.com:9000")

	assert.Equal(t, "us-west-2", updated.Name())
	assert.Equal(t, "https://minio.example.com:9000", updated.Endpoint())

	// Builders return copies, the original is untouched.
	assert.Equal(t, "eu-west-1", base.Name())
	assert.Empty(t, base.Endpoint())
}

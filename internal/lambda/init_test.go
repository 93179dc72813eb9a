package lambda

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit_InvalidSourceRegion(t *testing.T) {
	t.Setenv("REGION_SOURCE", "bad")
	t.Setenv("REGION_TARGET", "us-west-2")

	_, err := Init(t.Context())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REGION_SOURCE")
}

func TestInit_InvalidTargetRegion(t *testing.T) {
	t.Setenv("REGION_SOURCE", "us-east-1")
	t.Setenv("REGION_TARGET", "nope")

	_, err := Init(t.Context())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REGION_TARGET")
}

func TestInit_SameRegions(t *testing.T) {
	t.Setenv("REGION_SOURCE", "us-east-1")
	t.Setenv("REGION_TARGET", "us-east-1")

	_, err := Init(t.Context())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_KEY", "custom")
	assert.Equal(t, "custom", envOrDefault("TEST_KEY", "fallback"))

	t.Setenv("TEST_KEY", "")
	assert.Equal(t, "fallback", envOrDefault("TEST_KEY", "fallback"))
}

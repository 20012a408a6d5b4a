package telemetry

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorEnabled_HonorsNoColorEnvConvention(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled())
}

func TestColorize_WrapsWhenEnabled(t *testing.T) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		os.Unsetenv("NO_COLOR")
		t.Cleanup(func() { os.Setenv("NO_COLOR", "1") })
	}
	assert.Equal(t, ColorRed+"boom"+ColorClear, Colorize(ColorRed, "boom"))
}

func TestColorize_PassesThroughWhenDisabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "boom", Colorize(ColorRed, "boom"))
}

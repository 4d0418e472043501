package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowmatch/bindiff/config"
)

func TestNewDefault_RunsEveryBuiltinStepInCanonicalOrder(t *testing.T) {
	cfg, err := config.NewDefault()
	require.NoError(t, err)

	assert.Equal(t, config.DefaultFunctionSteps(), cfg.FunctionSteps())
	assert.Equal(t, config.DefaultBasicBlockSteps(), cfg.BasicBlockSteps())
}

func TestNewDefault_AcceptsOverridesAfterTheDefaults(t *testing.T) {
	cfg, err := config.NewDefault(config.WithStepConfidence("name_hash", 0.9))
	require.NoError(t, err)

	conf, ok := cfg.StepConfidence("name_hash")
	require.True(t, ok)
	assert.Equal(t, 0.9, conf)
	assert.NotEmpty(t, cfg.FunctionSteps())
}

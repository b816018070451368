package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/habitcal/internal/config"
)

func TestNewModelProviderNone(t *testing.T) {
	model, err := NewModel(context.Background(), config.Config{LLMProvider: config.ProviderNone})
	require.NoError(t, err)
	assert.Nil(t, model, "provider none disables the generative path")
}

func TestNewModelUnknownProvider(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{LLMProvider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewModelOpenAIRequiresKey(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{
		LLMProvider: config.ProviderOpenAI,
		LLMModel:    "gpt-4o-mini",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

func TestNewModelAnthropicRequiresKey(t *testing.T) {
	_, err := NewModel(context.Background(), config.Config{
		LLMProvider: config.ProviderAnthropic,
		LLMModel:    "claude-sonnet-4-5",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key required")
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelClient(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	tests := []struct {
		name     string
		provider string
		apiKey   string
		wantErr  error
		errLike  string
	}{
		{name: "fake", provider: "fake"},
		{name: "openai", provider: "openai", apiKey: "sk-test"},
		{name: "anthropic", provider: "anthropic", apiKey: "sk-ant-test"},
		{name: "ollama", provider: "ollama"},
		{name: "none", provider: "", wantErr: errNoModel},
		{name: "googleai without key", provider: "googleai", errLike: "GEMINI_API_KEY"},
		{name: "unknown", provider: "watson", errLike: "unsupported LLM provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := defaultConfig()
			config.LLM.Provider = tt.provider
			config.LLM.Model = "test-model"
			config.LLM.APIKey = tt.apiKey

			model, err := getModelClient(&config)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errLike != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errLike)
			default:
				require.NoError(t, err)
				assert.NotNil(t, model)
			}
		})
	}
}

func TestGetModelClientUsesKeyring(t *testing.T) {
	require.NoError(t, SaveAPIKeyToKeyring("openai", "sk-from-keyring"))
	t.Cleanup(func() { _ = DeleteAPIKeyFromKeyring("openai") })

	config := defaultConfig()
	config.LLM.Provider = "openai"
	config.LLM.APIKey = ""

	model, err := getModelClient(&config)

	require.NoError(t, err)
	assert.NotNil(t, model)
	assert.Equal(t, "sk-from-keyring", config.LLM.APIKey)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/fake"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

var errNoModel = errors.New("no model configured")

// getModelClient creates the LLM client named by the configuration.
// API keys missing from config and environment are looked up in the OS keyring.
func getModelClient(config *Config) (llms.Model, error) {
	if config.LLM.APIKey == "" && config.LLM.Provider != "fake" && config.LLM.Provider != "ollama" {
		apiKey, err := GetAPIKeyFromKeyring(config.LLM.Provider)
		if err != nil {
			slog.Warn("keyring lookup failed", "provider", config.LLM.Provider, "error", err)
		} else if apiKey != "" {
			config.LLM.APIKey = apiKey
		}
	}

	switch strings.ToLower(config.LLM.Provider) {
	case "":
		return nil, errNoModel
	case "fake":
		return fake.NewFakeLLM([]string{"This is a canned reply from the fake model."}), nil
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(config.LLM.Model),
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.LLM.BaseURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithModel(config.LLM.Model),
		}
		if config.LLM.APIKey != "" {
			opts = append(opts, openai.WithToken(config.LLM.APIKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.LLM.BaseURL))
		}
		return openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithModel(config.LLM.Model),
		}
		if config.LLM.APIKey != "" {
			opts = append(opts, anthropic.WithToken(config.LLM.APIKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(config.LLM.BaseURL))
		}
		return anthropic.New(opts...)
	case "googleai":
		if config.LLM.APIKey == "" {
			return nil, fmt.Errorf("missing Google AI API key. Set llm.api_key or GEMINI_API_KEY")
		}
		return googleai.New(context.Background(),
			googleai.WithDefaultModel(config.LLM.Model),
			googleai.WithAPIKey(config.LLM.APIKey),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}
}

package main

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

const keyringService = "dev.afittestide.chatpane"

func apiKeyName(provider string) string {
	return "apikey_" + provider
}

// SaveAPIKeyToKeyring securely stores API keys in the OS keyring
func SaveAPIKeyToKeyring(provider, apiKey string) error {
	if err := gokeyring.Set(keyringService, apiKeyName(provider), apiKey); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// GetAPIKeyFromKeyring retrieves API keys from the OS keyring
func GetAPIKeyFromKeyring(provider string) (string, error) {
	apiKey, err := gokeyring.Get(keyringService, apiKeyName(provider))
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", nil // API key not found is not an error
		}
		return "", fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	return apiKey, nil
}

// DeleteAPIKeyFromKeyring removes API keys from the OS keyring
func DeleteAPIKeyFromKeyring(provider string) error {
	err := gokeyring.Delete(keyringService, apiKeyName(provider))
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}

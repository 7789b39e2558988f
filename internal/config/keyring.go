package config

import (
	"fmt"

	"github.com/zalando/go-keyring"

	"martdrop/pkg/models"
)

const (
	// Keyring service name
	keyringService = "martdrop"
	keyringTokenKey = "cloud_token"
)

// StoreCloudToken saves the hosted-variant auth token in the OS keyring.
func StoreCloudToken(token string) error {
	if token == "" {
		return fmt.Errorf("cloud token is empty")
	}
	if err := keyring.Set(keyringService, keyringTokenKey, token); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// DeleteCloudToken removes the stored token from the OS keyring.
func DeleteCloudToken() error {
	return keyring.Delete(keyringService, keyringTokenKey)
}

// ResolveCloudToken returns the auth token for the hosted variant.
// Keyring-stored tokens win over the (possibly encrypted) config field.
func ResolveCloudToken(config *models.Config) (string, error) {
	if config.Warehouse.UseKeyring {
		token, err := keyring.Get(keyringService, keyringTokenKey)
		if err == nil && token != "" {
			return token, nil
		}
		if err != nil && err != keyring.ErrNotFound {
			return "", fmt.Errorf("failed to get from keyring: %w", err)
		}
	}
	return DecryptToken(config.Warehouse.CloudToken)
}

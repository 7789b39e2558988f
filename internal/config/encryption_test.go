package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martdrop/pkg/models"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	t.Setenv("MARTDROP_ENCRYPTION_KEY", "test-key")

	encrypted, err := EncryptToken("md_token_12345")
	require.NoError(t, err)

	assert.True(t, IsEncrypted(encrypted))
	assert.NotContains(t, encrypted, "md_token_12345")

	decrypted, err := DecryptToken(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "md_token_12345", decrypted)
}

func TestEncryptEmptyToken(t *testing.T) {
	encrypted, err := EncryptToken("")
	require.NoError(t, err)
	assert.Empty(t, encrypted)
}

func TestEncryptAlreadyEncrypted(t *testing.T) {
	t.Setenv("MARTDROP_ENCRYPTION_KEY", "test-key")

	once, err := EncryptToken("secret")
	require.NoError(t, err)

	twice, err := EncryptToken(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestDecryptPlaintextPassesThrough(t *testing.T) {
	decrypted, err := DecryptToken("not-encrypted")
	require.NoError(t, err)
	assert.Equal(t, "not-encrypted", decrypted)
}

func TestDecryptGarbageFails(t *testing.T) {
	t.Setenv("MARTDROP_ENCRYPTION_KEY", "test-key")

	_, err := DecryptToken("ENC[not base64 at all]")
	assert.Error(t, err)
}

func TestEncryptConfigSecrets(t *testing.T) {
	t.Setenv("MARTDROP_ENCRYPTION_KEY", "test-key")

	config := &models.Config{}
	config.Warehouse.CloudToken = "plain-token"

	require.NoError(t, EncryptConfigSecrets(config))
	assert.True(t, IsEncrypted(config.Warehouse.CloudToken))

	require.NoError(t, DecryptConfigSecrets(config))
	assert.Equal(t, "plain-token", config.Warehouse.CloudToken)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resumeats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

// fakeSecrets serves KVv2 data from memory
type fakeSecrets map[string]map[string]any

func (f fakeSecrets) GetSecretV2(path string) (*VaultSecret, error) {
	data, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return &VaultSecret{Data: data, Version: 1}, nil
}

func (f fakeSecrets) GetStringSecret(path, key string) (string, error) {
	secret, err := f.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	return stringField(secret, path, key)
}

func (f fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := f.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitAndTrim(value), nil
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "int value", input: 7, expected: 7},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseKVv2Secret(t *testing.T) {
	secret, err := parseKVv2Secret(map[string]any{
		"data":     map[string]any{"api_key": "abc"},
		"metadata": map[string]any{"version": "3"},
	}, "secret/data/gemini")
	require.NoError(t, err)
	assert.Equal(t, "abc", secret.Data["api_key"])
	assert.Equal(t, int64(3), secret.Version)

	_, err = parseKVv2Secret(map[string]any{"api_key": "abc"}, "secret/data/gemini")
	assert.ErrorContains(t, err, "missing 'data' field")

	_, err = parseKVv2Secret(map[string]any{"data": map[string]any{}}, "secret/data/gemini")
	assert.ErrorContains(t, err, "missing 'metadata' field")

	_, err = parseKVv2Secret(map[string]any{
		"data":     map[string]any{},
		"metadata": map[string]any{},
	}, "secret/data/gemini")
	assert.ErrorContains(t, err, "missing 'version' field")
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			APIKey: "from-env",
			Chat:   OperationAIConfig{APIKey: "chat-only-key"},
		},
	}

	applyGeminiKeyToConfig(config, "from-vault")

	assert.Equal(t, "from-vault", config.AI.APIKey)
	assert.Equal(t, "from-vault", config.AI.Analysis.APIKey)
	assert.Equal(t, "from-vault", config.AI.Questions.APIKey)
	assert.Equal(t, "from-vault", config.AI.Insight.APIKey)
	assert.Equal(t, "chat-only-key", config.AI.Chat.APIKey)
}

func TestApplySecrets(t *testing.T) {
	secrets := fakeSecrets{
		"secret/data/resumeats/api":    {"keys": "k1, k2 ,,k3"},
		"secret/data/resumeats/gemini": {"api_key": "gemini-key"},
		"secret/data/resumeats/tls":    {"cert": "CERT PEM", "key": "KEY PEM"},
	}

	config := &Config{
		Server: ServerConfig{
			TLS: TLSConfig{Mode: "server", CertFile: "/etc/ssl/cert.pem", KeyFile: "/etc/ssl/key.pem"},
		},
		Vault: VaultConfig{
			Enabled: true,
			Secrets: VaultSecrets{
				APIKeys:   "secret/data/resumeats/api",
				GeminiKey: "secret/data/resumeats/gemini",
				TLSCerts:  "secret/data/resumeats/tls",
			},
		},
	}

	require.NoError(t, applySecrets(secrets, config, newTestLogger()))

	assert.Equal(t, []string{"k1", "k2", "k3"}, config.Server.APIKeys)
	assert.Equal(t, "gemini-key", config.GetOperationConfig(OperationAnalysis).APIKey)
	assert.Equal(t, "CERT PEM", config.Server.TLS.CertContent)
	assert.Equal(t, "KEY PEM", config.Server.TLS.KeyContent)
	assert.Empty(t, config.Server.TLS.CertFile, "vault content replaces the file source")
	assert.NoError(t, config.ValidateTLSConfig())
}

func TestApplySecretsMissingKey(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{
			Enabled: true,
			Secrets: VaultSecrets{GeminiKey: "secret/data/resumeats/gemini"},
		},
	}

	err := applySecrets(fakeSecrets{"secret/data/resumeats/gemini": {"token": "x"}}, config, nil)
	assert.ErrorContains(t, err, "key 'api_key' not found")
}

func TestApplyTLSContentPartial(t *testing.T) {
	tls := TLSConfig{CAFile: "/etc/ssl/ca.pem"}
	count := applyTLSContent(&tls, &VaultSecret{Data: map[string]any{"cert": "CERT", "key": ""}})

	assert.Equal(t, 1, count)
	assert.Equal(t, "CERT", tls.CertContent)
	assert.Empty(t, tls.KeyContent)
	assert.Equal(t, "/etc/ssl/ca.pem", tls.CAFile)
}

func TestResolveVaultToken(t *testing.T) {
	tempDir := t.TempDir()
	tokenFile := filepath.Join(tempDir, "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0600))

	token, err := resolveVaultToken(VaultConfig{Token: "direct-token", TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "direct-token", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "file-token", token)

	_, err = resolveVaultToken(VaultConfig{TokenFile: filepath.Join(tempDir, "missing")})
	assert.ErrorContains(t, err, "failed to read vault token file")

	_, err = resolveVaultToken(VaultConfig{})
	assert.ErrorContains(t, err, "vault token is required")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}}

	assert.NoError(t, ApplyVaultSecrets(config, newTestLogger()))
	assert.Empty(t, config.AI.APIKey)
}

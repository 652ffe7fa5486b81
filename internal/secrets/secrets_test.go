// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "  gk_abc123  \n")
				writeFile(t, dir, "other-key", "ok_xyz789")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "gk_abc123",
				"other-key":      "ok_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files and dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "   \n\t  ")
				writeFile(t, dir, ".gitkeep", "")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "valid-key",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "gk_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "gk_123",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiAPIKeyFromFile(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	dir := t.TempDir()
	writeFile(t, dir, GeminiKeyFile, "gk_from_file\n")

	assert.Equal(t, "gk_from_file", GeminiAPIKey(dir))
}

func TestGeminiAPIKeyEnvWins(t *testing.T) {
	t.Setenv(geminiKeyEnv, "gk_from_env")
	dir := t.TempDir()
	writeFile(t, dir, GeminiKeyFile, "gk_from_file")

	assert.Equal(t, "gk_from_env", GeminiAPIKey(dir))
}

func TestGeminiAPIKeyMissing(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	assert.Empty(t, GeminiAPIKey(filepath.Join(t.TempDir(), "nope")))
}

func TestGeminiAPIKeyMissingWarns(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	var buf bytes.Buffer
	old := warnOut
	warnOut = &buf
	defer func() { warnOut = old }()

	assert.Empty(t, GeminiAPIKey(filepath.Join(t.TempDir(), "nope")))
	assert.Contains(t, buf.String(), "no generation API key configured")
}

func TestGeminiAPIKeyPresentDoesNotWarn(t *testing.T) {
	t.Setenv(geminiKeyEnv, "")
	var buf bytes.Buffer
	old := warnOut
	warnOut = &buf
	defer func() { warnOut = old }()

	dir := t.TempDir()
	writeFile(t, dir, GeminiKeyFile, "gk_123")
	assert.Equal(t, "gk_123", GeminiAPIKey(dir))
	assert.Empty(t, buf.String())
}

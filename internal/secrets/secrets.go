// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the
// key name and the file contents (trimmed) are the value.
//
// The only key file the pipeline itself consumes is gemini-api-key; the
// GEMINI_API_KEY environment variable takes precedence over the file so
// container deployments can skip the directory entirely.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// warnOut receives the non-fatal warnings. Tests substitute it.
var warnOut io.Writer = os.Stderr

// GeminiKeyFile is the filename holding the generation API key.
const GeminiKeyFile = "gemini-api-key"

// geminiKeyEnv overrides the key file when set.
const geminiKeyEnv = "GEMINI_API_KEY"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory or missing files are not errors; Load
// returns an empty map. Unreadable files produce a warning on stderr
// but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warnOut, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// GeminiAPIKey resolves the generation API key: the environment
// variable wins, then the key file under dir. An empty return means no
// key is configured; generation then degrades to cached error strings,
// and a warning is printed so the operator finds out at startup rather
// than from a failed summary.
func GeminiAPIKey(dir string) string {
	if key := strings.TrimSpace(os.Getenv(geminiKeyEnv)); key != "" {
		return key
	}
	loaded, err := Load(dir)
	if err != nil {
		fmt.Fprintf(warnOut, "warning: %v\n", err)
		return ""
	}
	key := loaded[GeminiKeyFile]
	if key == "" {
		fmt.Fprintf(warnOut, "warning: no generation API key configured; set %s or put it in %s\n",
			geminiKeyEnv, filepath.Join(dir, GeminiKeyFile))
	}
	return key
}

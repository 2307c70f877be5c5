// Package config loads the audit parameters from viper and .env files and
// resolves the ledger, chart and database paths given on the command line.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a leading ~ to the user's home directory and then
// substitutes $VAR references. A path is returned unchanged when the home
// directory is unknown.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}

	return os.ExpandEnv(path)
}

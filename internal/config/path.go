package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); strings.TrimSpace(xdg) != "" {
		return filepath.Join(xdg, "tunesort", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tunesort", "config.yaml"), nil
}

func ProjectConfigPath(cwd string) string {
	return filepath.Join(cwd, "tunesort.yaml")
}

func ExpandPath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	expanded := os.ExpandEnv(strings.TrimSpace(raw))
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~/"))
	}

	return filepath.Clean(expanded), nil
}

// ResolveLockFile places a relative lock file next to the library it guards.
func ResolveLockFile(baseDir string, lockFile string) (string, error) {
	expanded, err := ExpandPath(lockFile)
	if err != nil {
		return "", err
	}
	if expanded == "" || filepath.IsAbs(expanded) {
		return expanded, nil
	}

	expandedBase, err := ExpandPath(baseDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(filepath.Join(expandedBase, expanded)), nil
}

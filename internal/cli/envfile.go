package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var dotenvKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadDotEnvFiles seeds TUNESORT_* style variables from .env and then
// .env.local in cwd. Variables already present in environ win over both
// files; .env.local wins over .env.
func loadDotEnvFiles(cwd string, environ []string, setenv func(string, string) error) error {
	if strings.TrimSpace(cwd) == "" {
		return nil
	}
	if setenv == nil {
		return fmt.Errorf("setenv is required")
	}

	protected := map[string]struct{}{}
	for _, pair := range environ {
		if key, _, ok := strings.Cut(pair, "="); ok {
			protected[key] = struct{}{}
		}
	}

	for _, name := range []string{".env", ".env.local"} {
		if err := applyDotEnvFile(filepath.Join(cwd, name), protected, setenv); err != nil {
			return err
		}
	}
	return nil
}

func applyDotEnvFile(path string, protected map[string]struct{}, setenv func(string, string) error) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	scanner := bufio.NewScanner(strings.NewReader(string(payload)))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		key, value, ok, parseErr := parseDotEnvLine(scanner.Text())
		if parseErr != nil {
			return fmt.Errorf("parse %s:%d: %w", path, lineNo, parseErr)
		}
		if !ok {
			continue
		}
		if _, exists := protected[key]; exists {
			continue
		}
		if err := setenv(key, value); err != nil {
			return fmt.Errorf("set %s from %s: %w", key, path, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}

// parseDotEnvLine understands KEY=VALUE with an optional `export ` prefix
// and single- or double-quoted values. Blank lines and # comments report
// ok=false without an error.
func parseDotEnvLine(raw string) (key, value string, ok bool, err error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false, nil
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false, fmt.Errorf("expected KEY=VALUE format")
	}
	key = strings.TrimSpace(key)
	if !dotenvKeyPattern.MatchString(key) {
		return "", "", false, fmt.Errorf("invalid key %q", key)
	}

	value = strings.TrimSpace(value)
	switch {
	case len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`):
		decoded, unquoteErr := strconv.Unquote(value)
		if unquoteErr != nil {
			return "", "", false, fmt.Errorf("invalid quoted value for %q", key)
		}
		return key, decoded, true, nil
	case len(value) >= 2 && strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'"):
		return key, value[1 : len(value)-1], true, nil
	default:
		return key, value, true, nil
	}
}

package config

import (
	"fmt"
	"regexp"
	"strings"
)

var extensionPattern = regexp.MustCompile(`^[a-z0-9]+$`)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid config"
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Problems, "; "))
}

// Validate checks everything except the base directory's presence on disk;
// filesystem readiness is the doctor's job. library.base_dir may be empty at
// this stage because the organize command accepts it as a positional
// argument.
func Validate(cfg Config) error {
	problems := []string{}

	if cfg.Version != 1 {
		problems = append(problems, "version must be 1")
	}

	if strings.TrimSpace(cfg.Library.BaseDir) != "" {
		if _, err := ExpandPath(cfg.Library.BaseDir); err != nil {
			problems = append(problems, "library.base_dir must be a valid path")
		}
	}

	if len(cfg.Library.Extensions) == 0 {
		problems = append(problems, "library.extensions must list at least one extension")
	}
	for _, ext := range cfg.Library.Extensions {
		if !extensionPattern.MatchString(ext) {
			problems = append(problems, fmt.Sprintf("library.extensions entry %q is invalid (lowercase letters and digits only)", ext))
		}
	}

	if strings.TrimSpace(cfg.Probe.Binary) == "" {
		problems = append(problems, "probe.binary must be set")
	}
	if cfg.Probe.TimeoutSeconds <= 0 {
		problems = append(problems, "probe.timeout_seconds must be > 0")
	}

	if strings.TrimSpace(cfg.Run.LockFile) == "" {
		problems = append(problems, "run.lock_file must be set")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

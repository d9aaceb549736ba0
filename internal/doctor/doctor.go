// Package doctor runs the preflight checks: is the tag-probe binary
// resolvable and recent enough, and is the library directory usable. The
// same checks gate the organize command before any file is touched.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/jaa/tunesort/internal/config"
)

type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

type Check struct {
	Severity Severity `json:"severity"`
	Name     string   `json:"name"`
	Message  string   `json:"message"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

func (r Report) HasErrors() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (r Report) ErrorCount() int {
	count := 0
	for _, check := range r.Checks {
		if check.Severity == SeverityError {
			count++
		}
	}
	return count
}

type Checker struct {
	LookPath      func(string) (string, error)
	ReadVersion   func(context.Context, string) (string, error)
	CheckWritable func(string) error
	Stat          func(string) (os.FileInfo, error)
}

func NewChecker() *Checker {
	return &Checker{
		LookPath:      exec.LookPath,
		ReadVersion:   defaultReadVersion,
		CheckWritable: checkDirWritable,
		Stat:          os.Stat,
	}
}

func (c *Checker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{Checks: []Check{}}

	report.Checks = append(report.Checks, c.probeChecks(ctx, cfg.Probe)...)
	report.Checks = append(report.Checks, c.libraryChecks(cfg)...)

	return report
}

func (c *Checker) probeChecks(ctx context.Context, probe config.Probe) []Check {
	checks := []Check{}

	location, err := c.LookPath(probe.Binary)
	if err != nil {
		checks = append(checks, Check{
			Severity: SeverityError,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s not found in PATH", probe.Binary),
		})
		if probe.Fallback {
			checks = append(checks, Check{
				Severity: SeverityWarn,
				Name:     "dependency",
				Message:  "in-process tag readers cover mp3/flac/m4a only and cannot replace the probe binary",
			})
		}
		return checks
	}

	checks = append(checks, Check{
		Severity: SeverityInfo,
		Name:     "dependency",
		Message:  fmt.Sprintf("%s found at %s", probe.Binary, location),
	})

	output, versionErr := c.ReadVersion(ctx, probe.Binary)
	if versionErr != nil {
		checks = append(checks, Check{
			Severity: SeverityWarn,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s version could not be read: %v", probe.Binary, versionErr),
		})
		return checks
	}

	version, parseErr := extractVersion(output)
	if parseErr != nil {
		checks = append(checks, Check{
			Severity: SeverityWarn,
			Name:     "dependency",
			Message:  fmt.Sprintf("%s version output is unrecognized: %q", probe.Binary, strings.TrimSpace(firstLine(output))),
		})
		return checks
	}

	checks = append(checks, Check{
		Severity: SeverityInfo,
		Name:     "dependency",
		Message:  fmt.Sprintf("%s version %s", probe.Binary, version),
	})
	return checks
}

func (c *Checker) libraryChecks(cfg config.Config) []Check {
	checks := []Check{}

	baseDir := strings.TrimSpace(cfg.Library.BaseDir)
	if baseDir == "" {
		checks = append(checks, Check{
			Severity: SeverityWarn,
			Name:     "config",
			Message:  "library.base_dir is not configured; organize requires it as an argument",
		})
		return checks
	}

	expanded, err := config.ExpandPath(baseDir)
	if err != nil {
		checks = append(checks, Check{
			Severity: SeverityError,
			Name:     "filesystem",
			Message:  fmt.Sprintf("library.base_dir is invalid: %v", err),
		})
		return checks
	}

	info, err := c.Stat(expanded)
	if err != nil {
		checks = append(checks, Check{
			Severity: SeverityError,
			Name:     "filesystem",
			Message:  fmt.Sprintf("library base directory is not accessible: %v", err),
		})
		return checks
	}
	if !info.IsDir() {
		checks = append(checks, Check{
			Severity: SeverityError,
			Name:     "filesystem",
			Message:  fmt.Sprintf("library base path is not a directory: %s", expanded),
		})
		return checks
	}

	if err := c.CheckWritable(expanded); err != nil {
		checks = append(checks, Check{
			Severity: SeverityError,
			Name:     "filesystem",
			Message:  fmt.Sprintf("library base directory is not writable: %v", err),
		})
	} else {
		checks = append(checks, Check{
			Severity: SeverityInfo,
			Name:     "filesystem",
			Message:  fmt.Sprintf("library base directory is writable: %s", expanded),
		})
	}

	return checks
}

func defaultReadVersion(ctx context.Context, binary string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

func checkDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	file, err := os.CreateTemp(path, ".tunesort-write-check-*")
	if err != nil {
		return err
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return nil
}

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

func extractVersion(raw string) (string, error) {
	match := versionPattern.FindString(raw)
	if match == "" {
		return "", fmt.Errorf("no version number found")
	}
	return match, nil
}

func firstLine(raw string) string {
	if idx := strings.IndexByte(raw, '\n'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

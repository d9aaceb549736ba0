// Package probe reads container-level metadata tags from audio files.
//
// The primary reader shells out to ffprobe and parses its JSON output;
// optional in-process readers cover mp3/flac/m4a when ffprobe cannot parse a
// file. All readers return format tags as a plain key/value map and report
// unparseable inputs with ErrUnreadable so callers can degrade to "no tags".
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrUnreadable marks a file the reader could not parse (corrupt payload,
// unsupported container). Callers treat it as "no tags found".
var ErrUnreadable = errors.New("unreadable media container")

const DefaultBinary = "ffprobe"

type TagReader interface {
	ReadTags(ctx context.Context, path string) (map[string]string, error)
}

type FFProbe struct {
	Binary   string
	Timeout  time.Duration
	Runner   ExecRunner
	LookPath func(string) (string, error)
}

func NewFFProbe(binary string, timeout time.Duration) *FFProbe {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &FFProbe{
		Binary:   binary,
		Timeout:  timeout,
		Runner:   NewSubprocessRunner(),
		LookPath: exec.LookPath,
	}
}

// Available reports whether the probe binary can be resolved in PATH.
// It is checked once before any file is processed.
func (p *FFProbe) Available() error {
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(p.Binary); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", p.Binary, err)
	}
	return nil
}

func (p *FFProbe) ReadTags(ctx context.Context, path string) (map[string]string, error) {
	result := p.Runner.Run(ctx, ExecSpec{
		Bin: p.Binary,
		Args: []string{
			"-v", "quiet",
			"-print_format", "json",
			"-show_format",
			path,
		},
		Timeout: p.Timeout,
	})
	if result.TimedOut {
		return nil, fmt.Errorf("%s timed out after %s on %s: %w", p.Binary, result.Duration.Round(time.Millisecond), path, ErrUnreadable)
	}
	if result.Err != nil {
		if result.ExitCode == 127 {
			return nil, fmt.Errorf("run %s: %w", p.Binary, result.Err)
		}
		return nil, fmt.Errorf("%s exited with code %d on %s: %w", p.Binary, result.ExitCode, path, ErrUnreadable)
	}

	// Stream-level tags are deliberately not requested: only the
	// container's format tags participate in placement decisions.
	var payload struct {
		Format struct {
			Tags map[string]string `json:"tags"`
		} `json:"format"`
	}
	if err := json.Unmarshal(result.Stdout, &payload); err != nil {
		return nil, fmt.Errorf("parse %s output for %s: %w", p.Binary, path, ErrUnreadable)
	}
	if payload.Format.Tags == nil {
		return map[string]string{}, nil
	}
	return payload.Format.Tags, nil
}

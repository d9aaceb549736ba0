package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaa/tunesort/internal/exitcode"
)

// writeOrganizeConfig points probe.binary at "true" so the probe subprocess
// always exits cleanly with empty output. Tag reads then degrade to absent
// tags and every file keeps its original name, which makes dry runs
// deterministic without a real ffprobe on the machine.
func writeOrganizeConfig(t *testing.T, dir, baseDir string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	payload := `version: 1
library:
  base_dir: "` + baseDir + `"
  extensions: ["mp3"]
probe:
  binary: "true"
  timeout_seconds: 5
  fallback: false
run:
  lock_file: ".tunesort.lock"
`
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func newTestApp(stdout, stderr *bytes.Buffer) *AppContext {
	return &AppContext{
		Build: BuildInfo{Version: "test"},
		IO:    IOStreams{In: strings.NewReader(""), Out: stdout, ErrOut: stderr},
	}
}

func TestOrganizeDryRunHumanOutput(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "library")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("mkdir base dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "track.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	configPath := writeOrganizeConfig(t, tmp, baseDir)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(newTestApp(stdout, stderr))
	root.SetArgs([]string{"organize", "--config", configPath, "--dry-run", "--progress", "never"})

	if err := root.Execute(); err != nil {
		t.Fatalf("organize --dry-run failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "organize complete") {
		t.Fatalf("expected summary in output, got: %s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(baseDir, "track.mp3")); err != nil {
		t.Fatalf("dry run must not move files: %v", err)
	}
}

func TestOrganizeJSONOutputEndsWithRunFinished(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "library")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("mkdir base dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "track.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	configPath := writeOrganizeConfig(t, tmp, baseDir)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(newTestApp(stdout, stderr))
	root.SetArgs([]string{"organize", "--config", configPath, "--dry-run", "--json"})

	if err := root.Execute(); err != nil {
		t.Fatalf("organize --json failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) == 0 {
		t.Fatal("expected NDJSON output")
	}
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("parse last event: %v", err)
	}
	if last["event"] != "run_finished" {
		t.Fatalf("expected final run_finished event, got %v", last["event"])
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "{") {
			t.Fatalf("stdout must stay machine-readable in JSON mode, got %q", line)
		}
	}
	if !strings.Contains(stderr.String(), "organize complete") {
		t.Fatalf("expected the closing line on stderr in JSON mode, got: %s", stderr.String())
	}
}

func TestOrganizePositionalBaseDirOverridesConfig(t *testing.T) {
	tmp := t.TempDir()
	configuredDir := filepath.Join(tmp, "configured")
	argDir := filepath.Join(tmp, "arg")
	for _, dir := range []string{configuredDir, argDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(argDir, "song.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	configPath := writeOrganizeConfig(t, tmp, configuredDir)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(newTestApp(stdout, stderr))
	root.SetArgs([]string{"organize", argDir, "--config", configPath, "--dry-run", "--json"})

	if err := root.Execute(); err != nil {
		t.Fatalf("organize with positional base dir failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "song.mp3") {
		t.Fatalf("expected the argument directory to be scanned, got: %s", stdout.String())
	}
}

func TestOrganizeMissingBaseDirIsConfigError(t *testing.T) {
	tmp := t.TempDir()
	configPath := writeOrganizeConfig(t, tmp, filepath.Join(tmp, "does-not-exist"))

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(newTestApp(stdout, stderr))
	root.SetArgs([]string{"organize", "--config", configPath, "--dry-run"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected an error for a missing base directory")
	}
	var coded *ExitError
	if !errors.As(err, &coded) || coded.Code != exitcode.InvalidConfig {
		t.Fatalf("expected InvalidConfig exit code, got %v", err)
	}
}

func TestOrganizeUnresolvableProbeBinaryIsMissingDependency(t *testing.T) {
	tmp := t.TempDir()
	baseDir := filepath.Join(tmp, "library")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("mkdir base dir: %v", err)
	}
	configPath := filepath.Join(tmp, "config.yaml")
	payload := `version: 1
library:
  base_dir: "` + baseDir + `"
  extensions: ["mp3"]
probe:
  binary: "tunesort-test-no-such-binary"
  timeout_seconds: 5
  fallback: false
run:
  lock_file: ".tunesort.lock"
`
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root := newRootCommand(newTestApp(stdout, stderr))
	root.SetArgs([]string{"organize", "--config", configPath, "--dry-run"})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected an error for an unresolvable probe binary")
	}
	var coded *ExitError
	if !errors.As(err, &coded) || coded.Code != exitcode.MissingDependency {
		t.Fatalf("expected MissingDependency exit code, got %v", err)
	}
}

func TestParseProgressMode(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: "auto"},
		{raw: "auto", want: "auto"},
		{raw: "Always", want: "always"},
		{raw: " never ", want: "never"},
		{raw: "sometimes", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseProgressMode(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseProgressMode(%q): expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseProgressMode(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parseProgressMode(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

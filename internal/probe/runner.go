package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

type ExecRunner interface {
	Run(ctx context.Context, spec ExecSpec) ExecResult
}

type ExecSpec struct {
	Bin     string
	Args    []string
	Timeout time.Duration
}

type ExecResult struct {
	Stdout     []byte
	StderrTail string
	ExitCode   int
	Duration   time.Duration
	TimedOut   bool
	Err        error
}

// SubprocessRunner executes the probe binary and captures its full stdout
// (the JSON document) plus a bounded tail of stderr for diagnostics.
type SubprocessRunner struct{}

type tailBuffer struct {
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	if max <= 0 {
		max = 8 * 1024
	}
	return &tailBuffer{
		buf: make([]byte, 0, max),
		max: max,
	}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)
		return len(p), nil
	}
	overflow := len(t.buf) + len(p) - t.max
	if overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}
	t.buf = append(t.buf, p...)
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

func NewSubprocessRunner() *SubprocessRunner {
	return &SubprocessRunner{}
}

func (r *SubprocessRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	start := time.Now()
	if spec.Bin == "" {
		return ExecResult{ExitCode: 1, Duration: time.Since(start), Err: errors.New("missing binary")}
	}

	runCtx := ctx
	cancel := func() {}
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}
	defer cancel()

	cmd := exec.CommandContext(runCtx, spec.Bin, spec.Args...)

	var stdout bytes.Buffer
	stderrTail := newTailBuffer(8 * 1024)
	cmd.Stdout = &stdout
	cmd.Stderr = stderrTail

	err := cmd.Run()
	result := ExecResult{
		Stdout:     stdout.Bytes(),
		StderrTail: stderrTail.String(),
		Duration:   time.Since(start),
		Err:        err,
	}
	if err == nil {
		result.ExitCode = 0
		return result
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result
	}

	if errors.Is(err, exec.ErrNotFound) {
		result.ExitCode = 127
		return result
	}

	result.ExitCode = 1
	return result
}

// Package organize implements the tag-driven file relocation pipeline:
// discover audio files, read their format tags, derive an album directory
// and "Artist - Title" name, and move each file exactly once. Files are
// processed strictly one at a time; per-file failures never stop the run.
package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jaa/tunesort/internal/fileops"
	"github.com/jaa/tunesort/internal/output"
	"github.com/jaa/tunesort/internal/probe"
)

var ErrInterrupted = errors.New("organize interrupted")

var makeDirAll = os.MkdirAll

type Organizer struct {
	Reader  probe.TagReader
	Emitter output.EventEmitter
	Now     func() time.Time
}

func NewOrganizer(reader probe.TagReader, emitter output.EventEmitter) *Organizer {
	if emitter == nil {
		emitter = noOpEmitter{}
	}
	return &Organizer{
		Reader:  reader,
		Emitter: emitter,
		Now:     time.Now,
	}
}

type noOpEmitter struct{}

func (noOpEmitter) Emit(event output.Event) error {
	return nil
}

// Run executes the pipeline over every discovered file. Only discovery
// failure (bad base directory) and cancellation return an error; everything
// else is per-file and lands in the report.
func (o *Organizer) Run(ctx context.Context, baseDir string, extensions []string, opts Options) (RunReport, error) {
	report := RunReport{}
	if o.Now == nil {
		o.Now = time.Now
	}

	tasks, warnings, err := Discover(baseDir, extensions)
	if err != nil {
		return report, err
	}
	report.Total = len(tasks)

	o.emit(output.LevelInfo, output.EventRunStarted, "",
		fmt.Sprintf("organize started (%d file(s) under %s)", report.Total, baseDir),
		map[string]any{"total": report.Total, "base_dir": baseDir, "dry_run": opts.DryRun})
	for _, warning := range warnings {
		o.emit(output.LevelWarn, output.EventDiscoveryWarning, "", warning, nil)
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			report.Interrupted = true
			return report, ErrInterrupted
		}

		result := o.processFile(ctx, baseDir, task, opts)
		switch result.Outcome {
		case OutcomeMoved:
			report.Moved++
			o.emit(output.LevelInfo, output.EventFileMoved, task.Path,
				fmt.Sprintf("moved %s -> %s", task.Path, result.Plan.TargetPath()),
				map[string]any{"target": result.Plan.TargetPath()})
		case OutcomePlanned:
			report.Planned++
			o.emit(output.LevelInfo, output.EventFilePlanned, task.Path,
				fmt.Sprintf("would move %s -> %s", task.Path, result.Plan.TargetPath()),
				map[string]any{"target": result.Plan.TargetPath()})
		case OutcomeNoop:
			report.Noops++
			o.emit(output.LevelInfo, output.EventFileNoop, task.Path,
				fmt.Sprintf("already in place: %s", task.Path), nil)
		case OutcomeSkipped:
			report.Skipped++
			o.emit(output.LevelError, output.EventFileSkipped, task.Path,
				fmt.Sprintf("skipping %s: %v", task.Path, result.Err), nil)
		}
	}

	o.emit(output.LevelInfo, output.EventRunFinished, "",
		fmt.Sprintf("organize complete: %d moved, %d already in place, %d skipped",
			report.Moved, report.Noops, report.Skipped),
		map[string]any{
			"moved":   report.Moved,
			"noops":   report.Noops,
			"skipped": report.Skipped,
			"planned": report.Planned,
		})
	return report, nil
}

func (o *Organizer) processFile(ctx context.Context, baseDir string, task FileTask, opts Options) FileResult {
	result := FileResult{Task: task}

	raw, err := o.Reader.ReadTags(ctx, task.Path)
	if err != nil {
		// Unreadable containers degrade to no tags; the no-metadata branch
		// still places the file. Anything else (binary vanished mid-run,
		// I/O failure) is a reader fault, not a file fault: skip the file
		// rather than silently filing it as untagged.
		if !errors.Is(err, probe.ErrUnreadable) {
			result.Outcome = OutcomeSkipped
			result.Err = fmt.Errorf("read tags of %s: %w", task.Path, err)
			return result
		}
		o.emit(output.LevelWarn, output.EventFileProbed, task.Path,
			fmt.Sprintf("no readable tags in %s: %v", task.Path, err), nil)
		raw = nil
	}
	result.Tags = ExtractTags(raw)
	o.emit(output.LevelInfo, output.EventFileProbed, task.Path,
		fmt.Sprintf("probed %s (album=%q artist=%q title=%q)",
			task.Path, result.Tags.Album, result.Tags.Artist, result.Tags.Title),
		nil)

	plan, err := BuildPlan(baseDir, task, result.Tags)
	if err != nil {
		result.Outcome = OutcomeSkipped
		result.Err = err
		return result
	}
	result.Plan = plan

	if filepath.Clean(plan.TargetPath()) == filepath.Clean(task.Path) {
		result.Outcome = OutcomeNoop
		return result
	}

	if opts.DryRun {
		result.Plan.TargetName = NextFreeName(plan.TargetDir, plan.TargetName)
		result.Outcome = OutcomePlanned
		return result
	}

	if err := makeDirAll(plan.TargetDir, 0o755); err != nil {
		result.Outcome = OutcomeSkipped
		result.Err = fmt.Errorf("create target directory %q: %w", plan.TargetDir, err)
		return result
	}

	result.Plan.TargetName = NextFreeName(plan.TargetDir, plan.TargetName)
	if err := fileops.MoveNoClobber(task.Path, result.Plan.TargetPath()); err != nil {
		result.Outcome = OutcomeSkipped
		result.Err = err
		return result
	}

	result.Outcome = OutcomeMoved
	return result
}

func (o *Organizer) emit(level output.Level, name output.EventName, path string, message string, details map[string]any) {
	_ = o.Emitter.Emit(output.Event{
		Timestamp: o.Now(),
		Level:     level,
		Event:     name,
		Path:      path,
		Message:   message,
		Details:   details,
	})
}

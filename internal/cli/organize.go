package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/jaa/tunesort/internal/config"
	"github.com/jaa/tunesort/internal/exitcode"
	"github.com/jaa/tunesort/internal/organize"
	"github.com/jaa/tunesort/internal/output"
	"github.com/jaa/tunesort/internal/probe"
	"github.com/spf13/cobra"
)

func newOrganizeCommand(app *AppContext) *cobra.Command {
	var timeout time.Duration
	var progressMode string

	cmd := &cobra.Command{
		Use:   "organize [base-dir]",
		Short: "Move audio files into album directories named from their tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedProgressMode, err := parseProgressMode(progressMode)
			if err != nil {
				return withExitCode(exitcode.InvalidUsage, err)
			}

			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if len(args) == 1 {
				cfg.Library.BaseDir = args[0]
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			baseDir, err := config.ExpandPath(cfg.Library.BaseDir)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if strings.TrimSpace(baseDir) == "" {
				return withExitCode(exitcode.InvalidConfig,
					errors.New("no base directory configured (set library.base_dir or pass one as an argument)"))
			}
			info, err := os.Stat(baseDir)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig,
					fmt.Errorf("base directory %q is not accessible: %w", baseDir, err))
			}
			if !info.IsDir() {
				return withExitCode(exitcode.InvalidConfig,
					fmt.Errorf("base path %q is not a directory", baseDir))
			}

			probeTimeout := time.Duration(cfg.Probe.TimeoutSeconds) * time.Second
			if timeout > 0 {
				probeTimeout = timeout
			}
			ffprobe := probe.NewFFProbe(cfg.Probe.Binary, probeTimeout)
			if err := ffprobe.Available(); err != nil {
				return withExitCode(exitcode.MissingDependency, err)
			}
			var reader probe.TagReader = ffprobe
			if cfg.Probe.Fallback {
				reader = probe.Chain(ffprobe, probe.FallbackReader{})
			}

			// One organize run per library at a time: collision numbering
			// assumes nobody else is filling the same directories.
			if !app.Opts.DryRun {
				lockPath, lockErr := config.ResolveLockFile(baseDir, cfg.Run.LockFile)
				if lockErr != nil {
					return withExitCode(exitcode.RuntimeFailure, lockErr)
				}
				if lockPath != "" {
					lock := flock.New(lockPath)
					held, tryErr := lock.TryLock()
					if tryErr != nil {
						return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("acquire run lock: %w", tryErr))
					}
					if !held {
						return withExitCode(exitcode.RuntimeFailure,
							fmt.Errorf("another tunesort run is already organizing %s", baseDir))
					}
					defer func() {
						_ = lock.Unlock()
					}()
				}
			}

			var emitter output.EventEmitter
			var progress *output.ProgressEmitter
			if app.Opts.JSON {
				// NDJSON on stdout; failures and the closing line still
				// reach a human watching stderr.
				emitter = output.NewMultiEmitter(
					output.NewJSONEmitter(app.IO.Out),
					output.NewHumanEmitter(app.IO.ErrOut, app.IO.ErrOut, true, false),
				)
			} else {
				human := output.NewHumanEmitter(app.IO.Out, app.IO.ErrOut, app.Opts.Quiet, app.Opts.Verbose)
				if !app.Opts.Quiet && !app.Opts.Verbose {
					interactive := output.SupportsInPlaceUpdates(app.IO.Out)
					switch parsedProgressMode {
					case "always":
						interactive = true
					case "never":
						interactive = false
					}
					progress = output.NewProgressEmitterWithOptions(app.IO.Out, human, output.ProgressOptions{
						Interactive: interactive,
					})
					emitter = progress
				} else {
					emitter = human
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals()...)
			defer stop()

			organizer := organize.NewOrganizer(reader, emitter)
			_, runErr := organizer.Run(ctx, baseDir, cfg.Library.Extensions, organize.Options{
				DryRun: app.Opts.DryRun,
			})
			if progress != nil {
				_ = progress.Flush()
			}
			if runErr != nil {
				if errors.Is(runErr, organize.ErrInterrupted) {
					return withExitCode(exitcode.Interrupted, runErr)
				}
				return withExitCode(exitcode.RuntimeFailure, runErr)
			}

			// Per-file skips are already in the transcript; they never
			// change the exit code.
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override per-file probe timeout (e.g. 10s, 1m)")
	cmd.Flags().StringVar(&progressMode, "progress", "auto", "Progress rendering mode: auto, always, or never")
	return cmd
}

func parseProgressMode(raw string) (string, error) {
	mode := strings.TrimSpace(strings.ToLower(raw))
	switch mode {
	case "":
		return "auto", nil
	case "auto", "always", "never":
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --progress mode %q (expected: auto, always, never)", raw)
	}
}

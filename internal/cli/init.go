package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jaa/tunesort/internal/config"
	"github.com/jaa/tunesort/internal/exitcode"
	"github.com/spf13/cobra"
)

func newInitCommand(app *AppContext) *cobra.Command {
	force := false

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(app.Opts.ConfigPath)
			if path == "" {
				userPath, err := config.UserConfigPath()
				if err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
				path = userPath
			}

			if err := config.EnsureConfigDir(path); err != nil {
				return withExitCode(exitcode.RuntimeFailure, err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				if app.Opts.NoInput || !isTTY(os.Stdin) {
					return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("config already exists at %s (rerun with --force)", path))
				}
				confirmed, confirmErr := promptYesNo(app, fmt.Sprintf("Config already exists at %s. Overwrite?", path))
				if confirmErr != nil {
					return withExitCode(exitcode.RuntimeFailure, confirmErr)
				}
				if !confirmed {
					fmt.Fprintln(app.IO.Out, "Initialization canceled.")
					return nil
				}
			}

			if err := os.WriteFile(path, []byte(config.DefaultTemplate()), 0o644); err != nil {
				return withExitCode(exitcode.RuntimeFailure, fmt.Errorf("write config file: %w", err))
			}

			fmt.Fprintf(app.IO.Out, "Wrote config: %s\n", path)
			fmt.Fprintln(app.IO.Out, "Set library.base_dir, then run `tunesort doctor` to verify the setup.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config file")
	return cmd
}

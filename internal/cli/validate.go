package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jaa/tunesort/internal/config"
	"github.com/jaa/tunesort/internal/exitcode"
	"github.com/spf13/cobra"
)

func newValidateCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if err := config.Validate(cfg); err != nil {
				var validation *config.ValidationError
				if !app.Opts.JSON && errors.As(err, &validation) {
					for _, problem := range validation.Problems {
						fmt.Fprintln(app.IO.ErrOut, "ERROR:", problem)
					}
				}
				return withExitCode(exitcode.InvalidConfig, err)
			}

			if app.Opts.JSON {
				payload := map[string]any{"valid": true}
				encoded, _ := json.Marshal(payload)
				fmt.Fprintln(app.IO.Out, string(encoded))
			} else {
				fmt.Fprintln(app.IO.Out, "Config is valid.")
			}
			return nil
		},
	}
}

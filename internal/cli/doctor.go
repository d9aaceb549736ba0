package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jaa/tunesort/internal/config"
	"github.com/jaa/tunesort/internal/doctor"
	"github.com/jaa/tunesort/internal/exitcode"
	"github.com/spf13/cobra"
)

func newDoctorCommand(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the probe binary and library directory readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(app)
			if err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}
			if err := config.Validate(cfg); err != nil {
				return withExitCode(exitcode.InvalidConfig, err)
			}

			report := doctor.NewChecker().Check(context.Background(), cfg)

			if app.Opts.JSON {
				encoder := json.NewEncoder(app.IO.Out)
				if err := encoder.Encode(report); err != nil {
					return withExitCode(exitcode.RuntimeFailure, err)
				}
			} else {
				checks := append([]doctor.Check{}, report.Checks...)
				sort.SliceStable(checks, func(i, j int) bool {
					return checks[i].Name < checks[j].Name
				})
				rows := make([][]string, 0, len(checks))
				for _, check := range checks {
					rows = append(rows, []string{string(check.Severity), check.Name, check.Message})
				}
				fmt.Fprintln(app.IO.Out, renderTable([]string{"Severity", "Check", "Detail"}, rows))
			}

			if report.HasErrors() {
				return withExitCode(exitcode.MissingDependency, fmt.Errorf("doctor found %d error(s)", report.ErrorCount()))
			}
			return nil
		},
	}
}

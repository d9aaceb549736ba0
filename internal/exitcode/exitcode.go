// Package exitcode defines the process exit codes. Per-file skips during an
// organize run are reported in the transcript but do not change the exit
// code; only run-level failures do.
package exitcode

const (
	Success           = 0
	RuntimeFailure    = 1
	InvalidUsage      = 2
	InvalidConfig     = 3
	MissingDependency = 4
	Interrupted       = 130
)

package organize

import "path/filepath"

// FileTask is one discovered audio file moving through the pipeline.
type FileTask struct {
	Path string // directory + base name, as discovered
	Dir  string
	Base string // file name with extension, original casing
	Stem string // file name without extension
	Ext  string // lower-cased extension without the dot
}

// Tags holds the post-sanitization tag fields. An empty string means the
// field is absent: either never present in the container or reduced to
// nothing by sanitization.
type Tags struct {
	Album  string
	Artist string
	Title  string
}

type PlacementPlan struct {
	TargetDir  string
	TargetName string
}

func (p PlacementPlan) TargetPath() string {
	return filepath.Join(p.TargetDir, p.TargetName)
}

type Outcome string

const (
	OutcomeMoved   Outcome = "moved"
	OutcomeNoop    Outcome = "noop"
	OutcomeSkipped Outcome = "skipped"
	OutcomePlanned Outcome = "planned" // dry run only
)

type FileResult struct {
	Task    FileTask
	Tags    Tags
	Plan    PlacementPlan
	Outcome Outcome
	Err     error
}

type RunReport struct {
	Total       int
	Moved       int
	Noops       int
	Skipped     int
	Planned     int
	Interrupted bool
}

type Options struct {
	DryRun bool
}

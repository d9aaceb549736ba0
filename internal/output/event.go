package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventRunStarted       EventName = "run_started"
	EventDiscoveryWarning EventName = "discovery_warning"
	EventFileProbed       EventName = "file_probed"
	EventFilePlanned      EventName = "file_planned"
	EventFileMoved        EventName = "file_moved"
	EventFileNoop         EventName = "file_noop"
	EventFileSkipped      EventName = "file_skipped"
	EventRunFinished      EventName = "run_finished"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	Path      string         `json:"path,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

package config

func DefaultTemplate() string {
	return `version: 1
library:
  base_dir: "~/Music/unsorted"
  extensions: ["mp3", "m4a", "flac", "wav"]
probe:
  binary: "ffprobe"
  timeout_seconds: 30
  fallback: true
run:
  lock_file: ".tunesort.lock"
`
}

package config

type Config struct {
	Version int     `yaml:"version"`
	Library Library `yaml:"library"`
	Probe   Probe   `yaml:"probe"`
	Run     Run     `yaml:"run"`
}

type Library struct {
	BaseDir    string   `yaml:"base_dir"`
	Extensions []string `yaml:"extensions"`
}

type Probe struct {
	Binary         string `yaml:"binary"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Fallback       bool   `yaml:"fallback"`
}

type Run struct {
	LockFile string `yaml:"lock_file"`
}

func DefaultConfig() Config {
	return Config{
		Version: 1,
		Library: Library{
			BaseDir:    "",
			Extensions: []string{"mp3", "m4a", "flac", "wav"},
		},
		Probe: Probe{
			Binary:         "ffprobe",
			TimeoutSeconds: 30,
			Fallback:       true,
		},
		Run: Run{
			LockFile: ".tunesort.lock",
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type LoadOptions struct {
	ExplicitPath string
	WorkingDir   string
	Env          map[string]string
}

// fileConfig mirrors Config with pointer fields so a file can override a
// default without clobbering the fields it leaves out.
type fileConfig struct {
	Version int          `yaml:"version"`
	Library fileLibrary  `yaml:"library"`
	Probe   fileProbe    `yaml:"probe"`
	Run     fileRunBlock `yaml:"run"`
}

type fileLibrary struct {
	BaseDir    *string   `yaml:"base_dir"`
	Extensions *[]string `yaml:"extensions"`
}

type fileProbe struct {
	Binary         *string `yaml:"binary"`
	TimeoutSeconds *int    `yaml:"timeout_seconds"`
	Fallback       *bool   `yaml:"fallback"`
}

type fileRunBlock struct {
	LockFile *string `yaml:"lock_file"`
}

func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	cwd := opts.WorkingDir
	if strings.TrimSpace(cwd) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("resolve working directory: %w", err)
		}
		cwd = wd
	}

	env := opts.Env
	if env == nil {
		env = osEnvMap()
	}

	if explicit := strings.TrimSpace(opts.ExplicitPath); explicit != "" {
		if err := mergeFile(&cfg, explicit, true); err != nil {
			return Config{}, err
		}
	} else {
		userPath, err := UserConfigPath()
		if err != nil {
			return Config{}, err
		}
		if err := mergeFile(&cfg, userPath, false); err != nil {
			return Config{}, err
		}

		if err := mergeFile(&cfg, ProjectConfigPath(cwd), false); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnvOverrides(&cfg, env); err != nil {
		return Config{}, err
	}

	normalize(&cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string, required bool) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file does not exist: %s", path)
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(payload, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Version != 0 {
		cfg.Version = fc.Version
	}
	if fc.Library.BaseDir != nil {
		cfg.Library.BaseDir = strings.TrimSpace(*fc.Library.BaseDir)
	}
	if fc.Library.Extensions != nil {
		cfg.Library.Extensions = append([]string{}, *fc.Library.Extensions...)
	}
	if fc.Probe.Binary != nil {
		cfg.Probe.Binary = strings.TrimSpace(*fc.Probe.Binary)
	}
	if fc.Probe.TimeoutSeconds != nil {
		cfg.Probe.TimeoutSeconds = *fc.Probe.TimeoutSeconds
	}
	if fc.Probe.Fallback != nil {
		cfg.Probe.Fallback = *fc.Probe.Fallback
	}
	if fc.Run.LockFile != nil {
		cfg.Run.LockFile = strings.TrimSpace(*fc.Run.LockFile)
	}

	return nil
}

func applyEnvOverrides(cfg *Config, env map[string]string) error {
	if value := strings.TrimSpace(env["TUNESORT_BASE_DIR"]); value != "" {
		cfg.Library.BaseDir = value
	}
	if value := strings.TrimSpace(env["TUNESORT_EXTENSIONS"]); value != "" {
		parts := strings.Split(value, ",")
		extensions := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				extensions = append(extensions, trimmed)
			}
		}
		cfg.Library.Extensions = extensions
	}
	if value := strings.TrimSpace(env["TUNESORT_PROBE_BIN"]); value != "" {
		cfg.Probe.Binary = value
	}
	if value := strings.TrimSpace(env["TUNESORT_PROBE_TIMEOUT_SECONDS"]); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TUNESORT_PROBE_TIMEOUT_SECONDS value %q: %w", value, err)
		}
		cfg.Probe.TimeoutSeconds = parsed
	}
	if value := strings.TrimSpace(env["TUNESORT_PROBE_FALLBACK"]); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid TUNESORT_PROBE_FALLBACK value %q: %w", value, err)
		}
		cfg.Probe.Fallback = parsed
	}
	if value := strings.TrimSpace(env["TUNESORT_LOCK_FILE"]); value != "" {
		cfg.Run.LockFile = value
	}
	return nil
}

func normalize(cfg *Config) {
	for i, ext := range cfg.Library.Extensions {
		cfg.Library.Extensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
	if strings.TrimSpace(cfg.Probe.Binary) == "" {
		cfg.Probe.Binary = "ffprobe"
	}
}

func osEnvMap() map[string]string {
	result := map[string]string{}
	for _, pair := range os.Environ() {
		pieces := strings.SplitN(pair, "=", 2)
		if len(pieces) == 2 {
			result[pieces[0]] = pieces[1]
		}
	}
	return result
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory %s: %w", dir, err)
	}
	return nil
}

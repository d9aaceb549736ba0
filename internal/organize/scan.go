package organize

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the audio extension allow-list, matched
// case-insensitively against the suffix after the last dot.
var DefaultExtensions = []string{"mp3", "m4a", "flac", "wav"}

// Discover walks baseDir and returns a FileTask for every regular file whose
// extension is in the allow-list. filepath.WalkDir visits entries in lexical
// order per directory, which keeps collision numbering reproducible between
// runs. Symlinks and other irregular entries are skipped and reported as
// warnings rather than failing the walk.
func Discover(baseDir string, extensions []string) ([]FileTask, []string, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("base directory %q is not accessible: %w", baseDir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("base path %q is not a directory", baseDir)
	}

	allowed := normalizeExtensions(extensions)
	if len(allowed) == 0 {
		allowed = normalizeExtensions(DefaultExtensions)
	}

	tasks := []FileTask{}
	warnings := []string{}
	err = filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v", path, walkErr))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			warnings = append(warnings, fmt.Sprintf("skipping irregular entry %s", path))
			return nil
		}

		name := entry.Name()
		ext := extensionOf(name)
		if _, ok := allowed[ext]; !ok {
			return nil
		}

		tasks = append(tasks, FileTask{
			Path: path,
			Dir:  filepath.Dir(path),
			Base: name,
			Stem: strings.TrimSuffix(name, filepath.Ext(name)),
			Ext:  ext,
		})
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("walk %q: %w", baseDir, err)
	}
	return tasks, warnings, nil
}

func normalizeExtensions(extensions []string) map[string]struct{} {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		allowed[ext] = struct{}{}
	}
	return allowed
}

func extensionOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

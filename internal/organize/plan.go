package organize

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaa/tunesort/internal/probe"
	"github.com/jaa/tunesort/internal/sanitize"
)

// ErrUnresolvableName means every naming fallback came up empty, including
// the original file name. The file is left untouched.
var ErrUnresolvableName = errors.New("no usable file name could be derived")

// ExtractTags pulls album/artist/title out of raw format tags and sanitizes
// each independently. A field whose value sanitizes to nothing is absent.
func ExtractTags(raw map[string]string) Tags {
	return Tags{
		Album:  sanitize.Clean(probe.Lookup(raw, probe.FieldAlbum)),
		Artist: sanitize.Clean(probe.Lookup(raw, probe.FieldArtist)),
		Title:  sanitize.Clean(probe.Lookup(raw, probe.FieldTitle)),
	}
}

// BuildPlan computes where a file belongs. The album names the target
// directory; without one the file stays directly under baseDir. The file
// name prefers "Artist - Title", then bare title, then the original name.
func BuildPlan(baseDir string, task FileTask, tags Tags) (PlacementPlan, error) {
	targetDir := baseDir
	if tags.Album != "" {
		targetDir = filepath.Join(baseDir, tags.Album)
	}

	var stem string
	switch {
	case tags.Artist != "" && tags.Title != "":
		stem = tags.Artist + " - " + tags.Title
	case tags.Title != "":
		stem = tags.Title
	}

	// Second sanitization pass on the composed stem: fields that are clean
	// in isolation could still combine into edge junk.
	stem = sanitize.Clean(stem)
	if stem != "" {
		return PlacementPlan{TargetDir: targetDir, TargetName: stem + "." + task.Ext}, nil
	}

	// No usable tags: the file keeps its original name, including the
	// original extension casing. Observable behavior callers rely on.
	if strings.TrimSpace(task.Stem) == "" {
		return PlacementPlan{}, fmt.Errorf("%w: %s", ErrUnresolvableName, task.Path)
	}
	return PlacementPlan{TargetDir: targetDir, TargetName: task.Base}, nil
}

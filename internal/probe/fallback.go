package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/dhowden/tag"
)

// FallbackReader reads tags in-process without ffprobe. It covers mp3 via
// ID3v2 frames and flac/m4a via dhowden/tag; wav carries no standard
// in-process tag container and is reported unreadable.
type FallbackReader struct{}

func (FallbackReader) ReadTags(_ context.Context, path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return readID3Tags(path)
	case ".flac", ".m4a":
		return readNativeTags(path)
	default:
		return nil, fmt.Errorf("no in-process tag reader for %s: %w", path, ErrUnreadable)
	}
}

func readID3Tags(path string) (map[string]string, error) {
	id3, err := id3v2.Open(path, id3v2.Options{
		Parse:       true,
		ParseFrames: []string{"Artist", "Title", "Album"},
	})
	if err != nil {
		return nil, fmt.Errorf("parse ID3 header of %s: %w", path, ErrUnreadable)
	}
	defer id3.Close()

	tags := map[string]string{}
	putTag(tags, FieldArtist, id3.Artist())
	putTag(tags, FieldTitle, id3.Title())
	putTag(tags, FieldAlbum, id3.Album())
	return tags, nil
}

func readNativeTags(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("parse tags of %s: %w", path, ErrUnreadable)
	}

	tags := map[string]string{}
	putTag(tags, FieldArtist, meta.Artist())
	putTag(tags, FieldTitle, meta.Title())
	putTag(tags, FieldAlbum, meta.Album())
	return tags, nil
}

func putTag(tags map[string]string, field string, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	tags[field] = value
}

type chainReader struct {
	readers []TagReader
}

// Chain tries each reader in order and returns the first successful result.
// A reader error that is not ErrUnreadable (probe binary vanished mid-run,
// I/O failure) still falls through to the next reader; the last error wins
// when every reader fails.
func Chain(readers ...TagReader) TagReader {
	return &chainReader{readers: readers}
}

func (c *chainReader) ReadTags(ctx context.Context, path string) (map[string]string, error) {
	var lastErr error
	for _, reader := range c.readers {
		tags, err := reader.ReadTags(ctx, path)
		if err == nil {
			return tags, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no tag readers configured")
	}
	return nil, lastErr
}

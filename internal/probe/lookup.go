package probe

import (
	"sort"
	"strings"
)

const (
	FieldAlbum  = "album"
	FieldArtist = "artist"
	FieldTitle  = "title"
)

// Lookup resolves a tag field case-insensitively. Encoders disagree on key
// casing (vorbis comments are usually upper-case, ID3 mappings lower-case),
// so the exact lower- and upper-case spellings are preferred, then any other
// case-folded match in sorted key order for determinism.
func Lookup(tags map[string]string, field string) string {
	if len(tags) == 0 {
		return ""
	}

	if value := strings.TrimSpace(tags[field]); value != "" {
		return value
	}
	if value := strings.TrimSpace(tags[strings.ToUpper(field)]); value != "" {
		return value
	}

	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !strings.EqualFold(key, field) {
			continue
		}
		if value := strings.TrimSpace(tags[key]); value != "" {
			return value
		}
	}
	return ""
}

package organize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var statEntry = os.Lstat

// NextFreeName returns a file name that does not exist in dir at the moment
// of checking. The desired name is tried first; occupied names get _1, _2, …
// inserted before the extension. The check is inherently racy against
// external writers; MoveNoClobber catches a lost race.
func NextFreeName(dir string, desired string) string {
	if !entryExists(filepath.Join(dir, desired)) {
		return desired
	}

	ext := filepath.Ext(desired)
	stem := strings.TrimSuffix(desired, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if !entryExists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

func entryExists(path string) bool {
	_, err := statEntry(path)
	return !errors.Is(err, os.ErrNotExist)
}

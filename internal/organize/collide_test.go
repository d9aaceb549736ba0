package organize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNextFreeNameUnoccupied(t *testing.T) {
	tmp := t.TempDir()
	if got := NextFreeName(tmp, "Queen - Song.mp3"); got != "Queen - Song.mp3" {
		t.Fatalf("expected desired name, got %q", got)
	}
}

func TestNextFreeNameCountsUp(t *testing.T) {
	tmp := t.TempDir()
	writeTestFile(t, filepath.Join(tmp, "A - B.mp3"))

	got := NextFreeName(tmp, "A - B.mp3")
	if got != "A - B_1.mp3" {
		t.Fatalf("expected first suffix, got %q", got)
	}

	writeTestFile(t, filepath.Join(tmp, "A - B_1.mp3"))
	writeTestFile(t, filepath.Join(tmp, "A - B_2.mp3"))

	got = NextFreeName(tmp, "A - B.mp3")
	if got != "A - B_3.mp3" {
		t.Fatalf("expected counter to skip occupied names, got %q", got)
	}
}

func TestNextFreeNameNthCallAppendsN(t *testing.T) {
	tmp := t.TempDir()
	writeTestFile(t, filepath.Join(tmp, "track.flac"))

	for n := 1; n <= 4; n++ {
		got := NextFreeName(tmp, "track.flac")
		want := filepath.Base(filepath.Join(tmp, "track_"+string(rune('0'+n))+".flac"))
		if got != want {
			t.Fatalf("call %d: got %q, want %q", n, got, want)
		}
		writeTestFile(t, filepath.Join(tmp, got))
	}
}

func TestNextFreeNameWithoutExtension(t *testing.T) {
	tmp := t.TempDir()
	writeTestFile(t, filepath.Join(tmp, "noext"))

	if got := NextFreeName(tmp, "noext"); got != "noext_1" {
		t.Fatalf("expected stem suffix, got %q", got)
	}
}

func TestNextFreeNameNeverReturnsExisting(t *testing.T) {
	tmp := t.TempDir()
	writeTestFile(t, filepath.Join(tmp, "x.mp3"))
	writeTestFile(t, filepath.Join(tmp, "x_1.mp3"))

	got := NextFreeName(tmp, "x.mp3")
	if _, err := os.Stat(filepath.Join(tmp, got)); err == nil {
		t.Fatalf("returned name %q already exists", got)
	}
}

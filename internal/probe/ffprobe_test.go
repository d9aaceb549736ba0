package probe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeRunner struct {
	result   ExecResult
	lastSpec ExecSpec
}

func (f *fakeRunner) Run(_ context.Context, spec ExecSpec) ExecResult {
	f.lastSpec = spec
	return f.result
}

func TestFFProbeReadTagsParsesFormatTags(t *testing.T) {
	runner := &fakeRunner{result: ExecResult{
		Stdout: []byte(`{"format":{"filename":"track.mp3","tags":{"ARTIST":"Queen","title":"Bohemian Rhapsody","album":"A Night at the Opera"}}}`),
	}}
	reader := NewFFProbe("ffprobe", 5*time.Second)
	reader.Runner = runner

	tags, err := reader.ReadTags(context.Background(), "/music/track.mp3")
	if err != nil {
		t.Fatalf("read tags: %v", err)
	}
	if tags["ARTIST"] != "Queen" || tags["title"] != "Bohemian Rhapsody" {
		t.Fatalf("unexpected tags: %v", tags)
	}

	if runner.lastSpec.Bin != "ffprobe" {
		t.Fatalf("expected ffprobe binary, got %q", runner.lastSpec.Bin)
	}
	if runner.lastSpec.Timeout != 5*time.Second {
		t.Fatalf("expected timeout to propagate, got %v", runner.lastSpec.Timeout)
	}
	wantArgs := []string{"-v", "quiet", "-print_format", "json", "-show_format", "/music/track.mp3"}
	if len(runner.lastSpec.Args) != len(wantArgs) {
		t.Fatalf("unexpected args: %v", runner.lastSpec.Args)
	}
	for i, arg := range wantArgs {
		if runner.lastSpec.Args[i] != arg {
			t.Fatalf("arg %d: got %q, want %q", i, runner.lastSpec.Args[i], arg)
		}
	}
}

func TestFFProbeReadTagsWithoutTagsSection(t *testing.T) {
	runner := &fakeRunner{result: ExecResult{Stdout: []byte(`{"format":{"filename":"track.wav"}}`)}}
	reader := NewFFProbe("", 0)
	reader.Runner = runner

	tags, err := reader.ReadTags(context.Background(), "/music/track.wav")
	if err != nil {
		t.Fatalf("read tags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected empty tag map, got %v", tags)
	}
}

func TestFFProbeReadTagsFailureIsUnreadable(t *testing.T) {
	cases := []struct {
		name   string
		result ExecResult
	}{
		{"nonzero exit", ExecResult{ExitCode: 1, Err: errors.New("exit status 1")}},
		{"timeout", ExecResult{ExitCode: 1, TimedOut: true, Err: errors.New("signal: killed")}},
		{"garbage output", ExecResult{Stdout: []byte("not json")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := NewFFProbe("ffprobe", time.Second)
			reader.Runner = &fakeRunner{result: tc.result}

			_, err := reader.ReadTags(context.Background(), "/music/broken.flac")
			if !errors.Is(err, ErrUnreadable) {
				t.Fatalf("expected ErrUnreadable, got %v", err)
			}
		})
	}
}

func TestFFProbeMissingBinaryIsNotUnreadable(t *testing.T) {
	reader := NewFFProbe("ffprobe", time.Second)
	reader.Runner = &fakeRunner{result: ExecResult{ExitCode: 127, Err: errors.New("executable file not found in $PATH")}}

	_, err := reader.ReadTags(context.Background(), "/music/track.mp3")
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrUnreadable) {
		t.Fatalf("missing binary must not be classified as unreadable input: %v", err)
	}
}

func TestFFProbeAvailable(t *testing.T) {
	reader := NewFFProbe("ffprobe", 0)

	reader.LookPath = func(bin string) (string, error) {
		if bin != "ffprobe" {
			t.Fatalf("unexpected lookup %q", bin)
		}
		return "/usr/bin/ffprobe", nil
	}
	if err := reader.Available(); err != nil {
		t.Fatalf("expected available, got %v", err)
	}

	reader.LookPath = func(string) (string, error) {
		return "", fmt.Errorf("not found")
	}
	if err := reader.Available(); err == nil {
		t.Fatalf("expected missing binary error")
	}
}

type stubReader struct {
	tags map[string]string
	err  error
}

func (s stubReader) ReadTags(context.Context, string) (map[string]string, error) {
	return s.tags, s.err
}

func TestChainFallsThroughToNextReader(t *testing.T) {
	reader := Chain(
		stubReader{err: fmt.Errorf("broken header: %w", ErrUnreadable)},
		stubReader{tags: map[string]string{"artist": "Queen"}},
	)

	tags, err := reader.ReadTags(context.Background(), "/music/track.mp3")
	if err != nil {
		t.Fatalf("read tags: %v", err)
	}
	if tags["artist"] != "Queen" {
		t.Fatalf("expected fallback tags, got %v", tags)
	}
}

func TestChainReturnsLastErrorWhenAllFail(t *testing.T) {
	lastErr := fmt.Errorf("still broken: %w", ErrUnreadable)
	reader := Chain(
		stubReader{err: errors.New("first failure")},
		stubReader{err: lastErr},
	)

	_, err := reader.ReadTags(context.Background(), "/music/track.mp3")
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected last error to propagate, got %v", err)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	cases := []struct {
		name  string
		tags  map[string]string
		field string
		want  string
	}{
		{"lowercase exact", map[string]string{"artist": "Queen"}, FieldArtist, "Queen"},
		{"uppercase exact", map[string]string{"ARTIST": "Queen"}, FieldArtist, "Queen"},
		{"mixed case", map[string]string{"Artist": "Queen"}, FieldArtist, "Queen"},
		{"lowercase preferred over upper", map[string]string{"artist": "lower", "ARTIST": "upper"}, FieldArtist, "lower"},
		{"empty lowercase falls through", map[string]string{"artist": "  ", "ARTIST": "upper"}, FieldArtist, "upper"},
		{"whitespace trimmed", map[string]string{"album": "  A Night at the Opera  "}, FieldAlbum, "A Night at the Opera"},
		{"absent field", map[string]string{"genre": "Rock"}, FieldTitle, ""},
		{"nil map", nil, FieldAlbum, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Lookup(tc.tags, tc.field)
			if got != tc.want {
				t.Fatalf("Lookup(%v, %q) = %q, want %q", tc.tags, tc.field, got, tc.want)
			}
		})
	}
}

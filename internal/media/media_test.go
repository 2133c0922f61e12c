package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestIsVideo(t *testing.T) {
	cases := map[string]bool{
		"talk.mp4":          true,
		"TALK.MKV":          true,
		"/tmp/clip.webm":    true,
		"phone.3g2":         true,
		"voice.wav":         false,
		"voice.mp3":         false,
		"archive.mp4.zip":   false,
		"noext":             false,
		"":                  false,
		" spaced.mov ":      true,
		"dir.mkv/track.wav": false,
	}
	for path, want := range cases {
		if got := IsVideo(path); got != want {
			t.Errorf("IsVideo(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsSupportedUpload(t *testing.T) {
	for _, ok := range []string{"a.mp4", "a.WAV", "a.mp3", "a.mp2", "a.mpeg"} {
		if !IsSupportedUpload(ok) {
			t.Errorf("expected %q to be accepted", ok)
		}
	}
	for _, bad := range []string{"a.webm", "a.flac", "a.txt", "a"} {
		if IsSupportedUpload(bad) {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
	if !slices.Contains(UploadExtensions(), "wav") {
		t.Fatalf("UploadExtensions missing wav: %v", UploadExtensions())
	}
}

func TestExtractAudioUsesRunner(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "audio.wav")
	var gotName string
	var gotArgs []string
	extractor := NewExtractor("/opt/ffmpeg")
	extractor.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	if err := extractor.ExtractAudio(context.Background(), "/in/movie.mkv", dest); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("runner got binary %q", gotName)
	}
	if !slices.Equal(gotArgs, ExtractArgs("/in/movie.mkv", dest)) {
		t.Fatalf("unexpected args %v", gotArgs)
	}
	if gotArgs[len(gotArgs)-1] != dest {
		t.Fatalf("destination must be last argument, got %v", gotArgs)
	}
	if _, err := os.Stat(filepath.Dir(dest)); err != nil {
		t.Fatalf("destination dir not created: %v", err)
	}
}

func TestExtractAudioWrapsRunnerError(t *testing.T) {
	extractor := NewExtractor("")
	if extractor.Binary() != DefaultFFmpeg {
		t.Fatalf("default binary = %q", extractor.Binary())
	}
	boom := errors.New("boom")
	extractor.WithCommandRunner(func(context.Context, string, ...string) error { return boom })
	err := extractor.ExtractAudio(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped runner error, got %v", err)
	}
	if err := extractor.ExtractAudio(context.Background(), "", "out.wav"); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestProbe(t *testing.T) {
	prober := NewProber("")
	prober.WithOutputRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != DefaultFFprobe {
			t.Fatalf("unexpected binary %q", name)
		}
		if args[len(args)-1] != "clip.mp4" {
			t.Fatalf("path must be last argument: %v", args)
		}
		return []byte(`{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","channels":2}],"format":{"duration":"12.5"}}`), nil
	})
	result, err := prober.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if result.AudioStreamCount() != 1 || result.VideoStreamCount() != 1 {
		t.Fatalf("unexpected stream counts %+v", result.Streams)
	}
	if result.DurationSeconds() != 12.5 {
		t.Fatalf("duration = %v", result.DurationSeconds())
	}
}

func TestProbeErrors(t *testing.T) {
	prober := NewProber("ffprobe")
	if _, err := prober.Probe(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty path")
	}
	prober.WithOutputRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("not json"), nil
	})
	if _, err := prober.Probe(context.Background(), "x.mp4"); err == nil {
		t.Fatal("expected parse error")
	}
	if (ProbeResult{Format: ProbeFormat{Duration: "bad"}}).DurationSeconds() != 0 {
		t.Fatal("expected zero duration for bad value")
	}
}

package subtitles

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"transcriber/internal/transcript"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{59.9996, "00:01:00,000"},
		{3661.234, "01:01:01,234"},
		{0.0004, "00:00:00,000"},
		{0.0005, "00:00:00,001"},
		{360000, "100:00:00,000"},
		{-1.5, "-1:59:58,500"},
	}
	for _, tt := range tests {
		got, err := FormatTimestamp(tt.seconds)
		if err != nil {
			t.Fatalf("FormatTimestamp(%v): %v", tt.seconds, err)
		}
		if got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTimestampRejectsUnrenderable(t *testing.T) {
	for _, seconds := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e300, -1e300, 9.3e15} {
		got, err := FormatTimestamp(seconds)
		if !errors.Is(err, ErrInvalidTiming) {
			t.Fatalf("FormatTimestamp(%v) = %q, %v; want ErrInvalidTiming", seconds, got, err)
		}
	}
	// The largest magnitudes that still fit are rendered.
	for _, seconds := range []float64{9.2e15, -9.2e15} {
		if _, err := FormatTimestamp(seconds); err != nil {
			t.Fatalf("FormatTimestamp(%v): %v", seconds, err)
		}
	}
}

func TestConvertSRTRejectsUnrenderableTiming(t *testing.T) {
	tests := []struct {
		name  string
		seg   transcript.Segment
		field string
	}{
		{"nan start", transcript.Segment{Start: math.NaN(), End: 1, Text: "x"}, "start"},
		{"inf end", transcript.Segment{Start: 0, End: math.Inf(1), Text: "x"}, "end"},
		{"overflow", transcript.Segment{Start: 1e300, End: 1e300, Text: "x"}, "start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			segments := []transcript.Segment{{Start: 0, End: 1, Text: "ok"}, tt.seg}
			_, err := newTestFormatter().Convert(segments, "srt", dir, false)
			var timingErr *TimingError
			if !errors.As(err, &timingErr) || !errors.Is(err, ErrInvalidTiming) {
				t.Fatalf("expected TimingError wrapping ErrInvalidTiming, got %v", err)
			}
			if timingErr.Segment != 1 || timingErr.Field != tt.field {
				t.Fatalf("unexpected timing error %+v", timingErr)
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Fatalf("failed conversion should write nothing, found %d entries", len(entries))
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:00:00,000", 0},
		{"01:01:01,234", 3661.234},
		{" 00:05:46.345 ", 346.345},
		{"-1:59:58,500", -1.5},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "00:00:00", "00:61:00,000", "aa:00:00,000", "00:00:00,1000"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Fatalf("ParseTimestamp(%q) expected error", bad)
		}
	}
}

func TestWriteSRTIndexesBlocks(t *testing.T) {
	for n := 0; n <= 4; n++ {
		segments := make([]transcript.Segment, n)
		for i := range segments {
			segments[i] = transcript.Segment{Start: float64(i), End: float64(i) + 0.5, Text: "cue"}
		}
		data, err := Render(segments, FormatSRT)
		if err != nil {
			t.Fatal(err)
		}
		cues, err := ParseSRT(strings.NewReader(string(data)))
		if err != nil {
			t.Fatal(err)
		}
		if len(cues) != n {
			t.Fatalf("n=%d: parsed %d cues", n, len(cues))
		}
		for i, cue := range cues {
			if cue.Index != i+1 {
				t.Fatalf("cue %d has index %d", i, cue.Index)
			}
		}
	}
}

func TestSRTRoundTrip(t *testing.T) {
	segments := []transcript.Segment{
		{Start: 0, End: 1.5, Text: "Hello"},
		{Start: 1.5, End: 3.0, Text: "two\nlines"},
		{Start: 3.0, End: 4.25, Text: ""},
		{Start: 59.999, End: 3661.234, Text: "long gap"},
		{Start: 5.0, End: 4.0, Text: "end before start"},
	}
	data, err := Render(segments, FormatSRT)
	if err != nil {
		t.Fatal(err)
	}
	path, err := NewFormatter(nil).Convert(segments, "srt", t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	cues, err := ParseSRTFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != len(segments) {
		t.Fatalf("round trip lost cues: %d vs %d\n%s", len(cues), len(segments), data)
	}
	got := CuesToSegments(cues)
	for i := range segments {
		if math.Abs(got[i].Start-segments[i].Start) > 0.0005 || math.Abs(got[i].End-segments[i].End) > 0.0005 {
			t.Fatalf("segment %d timing %v-%v, want %v-%v", i, got[i].Start, got[i].End, segments[i].Start, segments[i].End)
		}
		if got[i].Text != segments[i].Text {
			t.Fatalf("segment %d text %q, want %q", i, got[i].Text, segments[i].Text)
		}
	}
}

func TestWriteSRTPassesThroughInvertedTiming(t *testing.T) {
	data, err := Render([]transcript.Segment{{Start: 5, End: 4, Text: "x"}}, FormatSRT)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "00:00:05,000 --> 00:00:04,000") {
		t.Fatalf("timing was altered: %q", data)
	}
}

func TestWriteSRTSanitizesCaptionText(t *testing.T) {
	data, err := Render([]transcript.Segment{{Start: 0, End: 1, Text: "  a --> b\n\n c  "}}, FormatSRT)
	if err != nil {
		t.Fatal(err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\na -> b\nc\n\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestParseSRTToleratesCRLFAndGarbage(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nFirst\r\n\r\nnot a cue\r\n\r\n3\r\n00:00:03.500 --> 00:00:04.000\r\nThird\r\nline two\r\n"
	cues, err := ParseSRT(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[1].Index != 3 || cues[1].Start != 3.5 || cues[1].Text != "Third\nline two" {
		t.Fatalf("unexpected cue %+v", cues[1])
	}
}

func TestParseSRTEmpty(t *testing.T) {
	cues, err := ParseSRT(strings.NewReader("  \n\n"))
	if err != nil || cues != nil {
		t.Fatalf("expected no cues, got %v, %v", cues, err)
	}
}

package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Segment is one timed span of recognized speech. Start and End are seconds
// from the beginning of the media.
type Segment struct {
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Text  string  `json:"text" yaml:"text"`
}

// Transcript is the ordered result of one recognition run.
type Transcript struct {
	Language string    `json:"language,omitempty"`
	Text     string    `json:"text,omitempty"`
	Segments []Segment `json:"segments"`
}

// Duration returns the largest segment end time.
func (t Transcript) Duration() float64 {
	var last float64
	for _, seg := range t.Segments {
		if seg.End > last {
			last = seg.End
		}
	}
	return last
}

// PlainText returns Text when the recognizer supplied one, otherwise the
// trimmed segment texts joined by single spaces.
func (t Transcript) PlainText() string {
	if text := strings.TrimSpace(t.Text); text != "" {
		return text
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// WithSegments returns a copy of t carrying segs. The combined text is
// dropped because it no longer matches the segments.
func (t Transcript) WithSegments(segs []Segment) Transcript {
	out := Transcript{Language: t.Language}
	out.Segments = make([]Segment, len(segs))
	copy(out.Segments, segs)
	return out
}

type whisperSegment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

type whisperPayload struct {
	Language string           `json:"language"`
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

// DecodeWhisperJSON reads a whisper/WhisperX JSON result. Word-level timing
// and any other fields are ignored.
func DecodeWhisperJSON(r io.Reader) (Transcript, error) {
	var payload whisperPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return Transcript{}, fmt.Errorf("parse whisper json: %w", err)
	}
	out := Transcript{
		Language: strings.TrimSpace(payload.Language),
		Text:     strings.TrimSpace(payload.Text),
		Segments: make([]Segment, 0, len(payload.Segments)),
	}
	for i, seg := range payload.Segments {
		if seg.Start == nil || seg.End == nil {
			return Transcript{}, fmt.Errorf("parse whisper json: segment %d missing timing", i)
		}
		out.Segments = append(out.Segments, Segment{Start: *seg.Start, End: *seg.End, Text: seg.Text})
	}
	return out, nil
}

// LoadWhisperJSON reads a whisper/WhisperX JSON result from path.
func LoadWhisperJSON(path string) (Transcript, error) {
	if strings.TrimSpace(path) == "" {
		return Transcript{}, os.ErrNotExist
	}
	file, err := os.Open(path)
	if err != nil {
		return Transcript{}, err
	}
	defer file.Close()
	return DecodeWhisperJSON(file)
}

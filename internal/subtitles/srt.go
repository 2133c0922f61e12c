package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"transcriber/internal/transcript"
)

// Cue is one parsed SubRip entry.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// WriteSRT writes segments as SubRip: a 1-based index line, a timing line,
// the text, and a blank separator line per segment. A segment whose timing
// cannot be rendered stops the write with a *TimingError.
func WriteSRT(w io.Writer, segments []transcript.Segment) error {
	bw := bufio.NewWriter(w)
	for i, seg := range segments {
		start, err := FormatTimestamp(seg.Start)
		if err != nil {
			return &TimingError{Segment: i, Field: "start", Err: err}
		}
		end, err := FormatTimestamp(seg.End)
		if err != nil {
			return &TimingError{Segment: i, Field: "end", Err: err}
		}
		fmt.Fprintf(bw, "%d\n", i+1)
		fmt.Fprintf(bw, "%s --> %s\n", start, end)
		bw.WriteString(srtText(seg.Text))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// srtText keeps multi-line captions but drops blank lines, which would end
// the cue early, and defuses arrows that would read as a timing line.
func srtText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, strings.ReplaceAll(line, "-->", "->"))
	}
	return strings.Join(kept, "\n")
}

// ParseSRT reads SubRip content. Blocks without a numeric index or a valid
// timing line are skipped; a cue with no text lines yields empty Text.
func ParseSRT(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.Trim(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			continue
		}
		parts := strings.Split(lines[1], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			continue
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return cues, nil
}

// ParseSRTFile reads and parses the SubRip file at path.
func ParseSRTFile(path string) ([]Cue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	defer file.Close()
	return ParseSRT(file)
}

// CuesToSegments drops cue indices, keeping order.
func CuesToSegments(cues []Cue) []transcript.Segment {
	segments := make([]transcript.Segment, 0, len(cues))
	for _, cue := range cues {
		segments = append(segments, transcript.Segment{Start: cue.Start, End: cue.End, Text: cue.Text})
	}
	return segments
}

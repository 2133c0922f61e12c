package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	langpkg "transcriber/internal/language"
	"transcriber/internal/logging"
	"transcriber/internal/transcript"
)

// DefaultBatchSize is the number of segments sent per request.
const DefaultBatchSize = 40

// Completer returns the JSON content of a chat completion. *Client
// satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Translator translates transcripts segment by segment.
type Translator struct {
	completer Completer
	batchSize int
	logger    *slog.Logger
}

// NewTranslator returns a Translator sending batchSize segments per
// request (DefaultBatchSize when not positive).
func NewTranslator(completer Completer, batchSize int, logger *slog.Logger) *Translator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Translator{
		completer: completer,
		batchSize: batchSize,
		logger:    logging.NewComponentLogger(logger, "translator"),
	}
}

// MismatchError reports a batch whose response ids do not match the request.
type MismatchError struct {
	Batch    int
	Expected int
	Got      int
	Missing  int
}

func (e *MismatchError) Error() string {
	if e.Missing > 0 {
		return fmt.Sprintf("translate batch %d: response missing id %d", e.Batch, e.Missing)
	}
	return fmt.Sprintf("translate batch %d: expected %d lines, got %d", e.Batch, e.Expected, e.Got)
}

type line struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type batchRequest struct {
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language"`
	Lines          []line `json:"lines"`
}

type batchResponse struct {
	Lines []line `json:"lines"`
}

// Translate returns a copy of tr with every segment's text in target.
// Timings are copied unchanged and empty segments are not sent.
func (t *Translator) Translate(ctx context.Context, tr transcript.Transcript, target string) (transcript.Transcript, error) {
	tag, err := langpkg.Parse(target)
	if err != nil {
		return transcript.Transcript{}, fmt.Errorf("translate: %w", err)
	}
	targetName := langpkg.DisplayName(tag.String())
	sourceName := ""
	if tr.Language != "" {
		sourceName = langpkg.DisplayName(tr.Language)
	}

	out := tr.WithSegments(tr.Segments)
	out.Language = tag.String()
	if sourceName != "" && strings.EqualFold(sourceName, targetName) {
		t.logger.Info("transcript already in target language",
			logging.String("language", targetName),
		)
		return out, nil
	}

	pending := make([]line, 0, len(out.Segments))
	for i, seg := range out.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		pending = append(pending, line{ID: i + 1, Text: strings.TrimSpace(seg.Text)})
	}

	logger := logging.WithContext(ctx, t.logger)
	logger.Info("translation started",
		logging.String("source", sourceName),
		logging.String("target", targetName),
		logging.Int("lines", len(pending)),
		logging.Int("batch_size", t.batchSize),
	)

	for batch, start := 1, 0; start < len(pending); batch, start = batch+1, start+t.batchSize {
		end := min(start+t.batchSize, len(pending))
		translated, err := t.translateBatch(ctx, batch, batchRequest{
			SourceLanguage: sourceName,
			TargetLanguage: targetName,
			Lines:          pending[start:end],
		})
		if err != nil {
			return transcript.Transcript{}, err
		}
		for id, text := range translated {
			out.Segments[id-1].Text = text
		}
		logger.Debug("translation batch complete",
			logging.Int("batch", batch),
			logging.Int("lines", end-start),
		)
	}
	return out, nil
}

func (t *Translator) translateBatch(ctx context.Context, batch int, req batchRequest) (map[int]string, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("translate batch %d: encode: %w", batch, err)
	}
	content, err := t.completer.CompleteJSON(ctx, systemPrompt, string(encoded))
	if err != nil {
		return nil, fmt.Errorf("translate batch %d: %w", batch, err)
	}
	var resp batchResponse
	if err := DecodeJSON(content, &resp); err != nil {
		return nil, fmt.Errorf("translate batch %d: parse payload: %w", batch, err)
	}
	if len(resp.Lines) != len(req.Lines) {
		return nil, &MismatchError{Batch: batch, Expected: len(req.Lines), Got: len(resp.Lines)}
	}
	byID := make(map[int]string, len(resp.Lines))
	for _, l := range resp.Lines {
		byID[l.ID] = strings.TrimSpace(l.Text)
	}
	for _, l := range req.Lines {
		if _, ok := byID[l.ID]; !ok {
			return nil, &MismatchError{Batch: batch, Expected: len(req.Lines), Got: len(resp.Lines), Missing: l.ID}
		}
	}
	return byID, nil
}

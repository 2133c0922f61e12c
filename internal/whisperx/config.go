package whisperx

import (
	"fmt"
	"slices"
	"strings"
)

// Config captures runtime settings for WhisperX operations.
type Config struct {
	// Model is the WhisperX model to use (e.g., "medium").
	Model string
	// Language is an optional source-language hint; empty lets the model detect it.
	Language string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// VADMethod selects the voice activity detection method ("silero" or "pyannote").
	VADMethod string
	// HFToken is the Hugging Face token for pyannote VAD.
	HFToken string
	// Command overrides the uvx launcher.
	Command string
}

// WhisperX configuration constants.
const (
	DefaultModel      = "medium"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "10"
	BestOf            = "10"
	Temperature       = "0.0"
	Patience          = "1.0"
	SegmentResolution = "sentence"
	OutputFormat      = "json"
	CPUDevice         = "cpu"
	CUDADevice        = "cuda"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// UVXCommand launches WhisperX from its published package.
const UVXCommand = "uvx"

var models = []string{
	"tiny", "tiny.en",
	"base", "base.en",
	"small", "small.en",
	"medium", "medium.en",
	"large", "large-v1", "large-v2", "large-v3", "large-v3-turbo", "turbo",
}

// Models lists the accepted model names.
func Models() []string {
	return slices.Clone(models)
}

// ValidateModel reports an error for names WhisperX does not ship.
func ValidateModel(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	if slices.Contains(models, name) {
		return nil
	}
	return fmt.Errorf("whisperx: unknown model %q (want one of %s)", name, strings.Join(models, ", "))
}

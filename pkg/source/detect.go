package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultSampleSize is the number of lines sampled for format detection.
const DefaultSampleSize = 100

// jsonlThreshold is the fraction of sampled non-empty lines that must
// parse as JSON objects for a file to be classified as JSON-Lines.
const jsonlThreshold = 0.9

// DetectionResult holds the outcome of sampling a file for its format.
type DetectionResult struct {
	Mode         Mode    // Detected mode (text or jsonl)
	SampledLines int     // Non-empty lines examined
	JSONLines    int     // Lines that parsed as JSON objects
	Confidence   float64 // JSONLines / SampledLines
}

// DetectMode samples up to sampleSize lines from r and classifies the
// content as jsonl or text. An empty input classifies as text.
func DetectMode(r io.Reader, sampleSize int) (Mode, error) {
	result, err := Detect(r, sampleSize)
	if err != nil {
		return "", err
	}
	return result.Mode, nil
}

// Detect samples up to sampleSize lines from r and reports how strongly
// the content resembles JSON-Lines.
func Detect(r io.Reader, sampleSize int) (*DetectionResult, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	result := &DetectionResult{Mode: ModeText}
	for result.SampledLines < sampleSize && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result.SampledLines++

		var obj map[string]any
		if json.Unmarshal([]byte(line), &obj) == nil {
			result.JSONLines++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sampling input: %w", err)
	}

	if result.SampledLines > 0 {
		result.Confidence = float64(result.JSONLines) / float64(result.SampledLines)
		if result.Confidence >= jsonlThreshold {
			result.Mode = ModeJSONL
		}
	}
	return result, nil
}

// DetectFile opens path and runs format detection over its head.
func DetectFile(path string, sampleSize int) (*DetectionResult, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		case os.IsPermission(err):
			return nil, fmt.Errorf("%w: %s", ErrPermission, path)
		default:
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
	}
	defer f.Close()

	return Detect(f, sampleSize)
}

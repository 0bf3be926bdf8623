package ingest

import "strings"

const (
	// DefaultChunkSize and DefaultChunkOverlap control the sliding
	// window over long free-text fields. The overlap preserves context
	// that would otherwise be split across a chunk boundary.
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// SlidingWindow splits text into windows of size characters with
// overlap characters shared between consecutive windows. A 1200-char
// body at 500/100 yields windows [0,500), [400,900), [800,1200).
// Empty or whitespace-only text yields nothing.
func SlidingWindow(text string, size, overlap int) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(clean)
	if len(runes) <= size {
		return []string{clean}
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/workmesh/talentrag/internal/llm"
)

const (
	// DefaultMaxVariants bounds how many alternative phrasings the
	// expander asks for.
	DefaultMaxVariants = 3

	expandSystemPrompt = "You generate alternative phrasings of a search query to improve recall. " +
		"Each variant must preserve the original intent. " +
		"Respond with a JSON array of strings and nothing else."
)

var (
	quotedPattern   = regexp.MustCompile(`"([^"]+)"`)
	numberedPattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(.+)$`)
)

// Expander produces query variants for multi-query retrieval. Like the
// rewriter it is best-effort: on any failure the caller gets just the
// original query back.
type Expander struct {
	completer   llm.Completer
	maxVariants int

	// Enabled gates the expansion stage without unwiring it.
	Enabled bool
}

func NewExpander(completer llm.Completer) *Expander {
	return &Expander{
		completer:   completer,
		maxVariants: DefaultMaxVariants,
		Enabled:     true,
	}
}

// Expand returns the original query followed by up to maxVariants
// alternative phrasings. The original is always first so callers can
// weight it highest.
func (e *Expander) Expand(ctx context.Context, q string) []string {
	if e == nil || !e.Enabled || e.completer == nil || q == "" {
		return []string{q}
	}

	resp, err := e.completer.Complete(ctx, llm.CompletionRequest{
		System:      expandSystemPrompt,
		User:        fmt.Sprintf("Generate %d alternative phrasings for this search query:\n\n%s", e.maxVariants, q),
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		log.Printf("query expansion failed, using original query only: %v", err)
		return []string{q}
	}

	variants := parseVariants(resp)
	out := []string{q}
	for _, v := range variants {
		if len(out) > e.maxVariants {
			break
		}
		if v != "" && !strings.EqualFold(v, q) {
			out = append(out, v)
		}
	}
	return out
}

// parseVariants tries a JSON array first, then quoted substrings, then
// numbered list lines. Models are inconsistent about honoring the
// output format even when told explicitly.
func parseVariants(resp string) []string {
	resp = strings.TrimSpace(resp)

	var parsed []string
	if start := strings.IndexByte(resp, '['); start >= 0 {
		if end := strings.LastIndexByte(resp, ']'); end > start {
			if err := json.Unmarshal([]byte(resp[start:end+1]), &parsed); err == nil {
				return trimAll(parsed)
			}
		}
	}

	if matches := quotedPattern.FindAllStringSubmatch(resp, -1); len(matches) > 0 {
		var out []string
		for _, m := range matches {
			out = append(out, m[1])
		}
		return trimAll(out)
	}

	if matches := numberedPattern.FindAllStringSubmatch(resp, -1); len(matches) > 0 {
		var out []string
		for _, m := range matches {
			out = append(out, m[1])
		}
		return trimAll(out)
	}

	return nil
}

func trimAll(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

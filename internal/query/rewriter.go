package query

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
)

const (
	// historyTurns is how many trailing conversation turns are fed into
	// the rewrite prompt.
	historyTurns = 3

	rewriteSystemPrompt = "You reformulate a user's search query into a single, self-contained search query. " +
		"Resolve pronouns and references using the conversation history. " +
		"Respond with the rewritten query only, no explanation and no quotes."
)

// Rewriter reformulates a query with one text-completion call, using
// recent conversation history and an optional domain hint. Rewriting is
// best-effort: any failure returns the input query unchanged so it can
// never block retrieval.
type Rewriter struct {
	completer llm.Completer
}

func NewRewriter(completer llm.Completer) *Rewriter {
	return &Rewriter{completer: completer}
}

// Rewrite returns the reformulated query, or q itself when no completer
// is configured or the call fails.
func (r *Rewriter) Rewrite(ctx context.Context, q string, history []domain.ConversationTurn, domainHint string) string {
	if r == nil || r.completer == nil || q == "" {
		return q
	}

	resp, err := r.completer.Complete(ctx, llm.CompletionRequest{
		System:      rewriteSystemPrompt,
		User:        rewriteUserPrompt(q, history, domainHint),
		Temperature: 0.3,
		MaxTokens:   100,
	})
	if err != nil {
		log.Printf("query rewrite failed, using original query: %v", err)
		return q
	}

	rewritten := firstLine(resp)
	if rewritten == "" {
		log.Printf("query rewrite returned empty response, using original query")
		return q
	}
	return rewritten
}

func rewriteUserPrompt(q string, history []domain.ConversationTurn, domainHint string) string {
	var sb strings.Builder
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
		sb.WriteString("\n")
	}
	if domainHint != "" {
		fmt.Fprintf(&sb, "The user is searching for %s content.\n\n", domainHint)
	}
	fmt.Fprintf(&sb, "Query: %s", q)
	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.Trim(strings.TrimSpace(s), `"`)
}

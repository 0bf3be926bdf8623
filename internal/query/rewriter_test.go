package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/workmesh/talentrag/internal/domain"
	"github.com/workmesh/talentrag/internal/llm"
)

// MockCompleter mocks the text-completion client
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestRewriter_Success(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("remote golang jobs in berlin", nil)

	r := NewRewriter(completer)
	got := r.Rewrite(context.Background(), "jobs there", nil, "")

	assert.Equal(t, "remote golang jobs in berlin", got)
	completer.AssertExpectations(t)
}

func TestRewriter_FailureReturnsOriginal(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	r := NewRewriter(completer)
	got := r.Rewrite(context.Background(), "golang jobs", nil, "")

	assert.Equal(t, "golang jobs", got)
}

func TestRewriter_EmptyResponseReturnsOriginal(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("  \n ", nil)

	r := NewRewriter(completer)
	got := r.Rewrite(context.Background(), "golang jobs", nil, "")

	assert.Equal(t, "golang jobs", got)
}

func TestRewriter_NilCompleterPassthrough(t *testing.T) {
	r := NewRewriter(nil)
	assert.Equal(t, "golang jobs", r.Rewrite(context.Background(), "golang jobs", nil, ""))
}

func TestRewriter_OnlyFirstLineKept(t *testing.T) {
	completer := new(MockCompleter)
	completer.On("Complete", mock.Anything, mock.Anything).Return("\"golang jobs\"\nHere is why I chose this.", nil)

	r := NewRewriter(completer)
	assert.Equal(t, "golang jobs", r.Rewrite(context.Background(), "go jobs", nil, ""))
}

func TestRewriter_PromptCarriesHistoryAndHint(t *testing.T) {
	completer := new(MockCompleter)
	var captured llm.CompletionRequest
	completer.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.CompletionRequest) bool {
		captured = req
		return true
	})).Return("rewritten", nil)

	history := []domain.ConversationTurn{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "turn two"},
		{Role: "user", Content: "turn three"},
		{Role: "assistant", Content: "turn four"},
	}

	r := NewRewriter(completer)
	r.Rewrite(context.Background(), "what about those", history, "job")

	assert.Contains(t, captured.User, "turn four")
	assert.NotContains(t, captured.User, "turn one", "only the last three turns are included")
	assert.Contains(t, captured.User, "job content")
	assert.Contains(t, captured.User, "Query: what about those")
}

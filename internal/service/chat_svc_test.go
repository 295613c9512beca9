package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	s.calls++
	if s.err != nil {
		return pgvector.Vector{}, s.err
	}
	return pgvector.NewVector([]float32{0.5, 0.5, 0.5}), nil
}

type stubRetriever struct {
	chunks    []RetrievedChunk
	lastScope Scope
	lastK     int
}

func (s *stubRetriever) Retrieve(ctx context.Context, scope Scope, query pgvector.Vector, k int) ([]RetrievedChunk, error) {
	s.lastScope = scope
	s.lastK = k
	return s.chunks, nil
}

type stubSearcher struct {
	results []WebResult
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]WebResult, error) {
	s.calls++
	return s.results, s.err
}

type stubCompleter struct {
	answer string
	err    error
	calls  int
	prompt string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func TestAsk_EmptyWorkspaceShortCircuits(t *testing.T) {
	llm := &stubCompleter{answer: "never"}
	svc := NewChatService(&stubEmbedder{}, &stubRetriever{}, &stubSearcher{}, llm)

	answer, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "what is raft?", false)
	require.NoError(t, err)
	assert.Contains(t, answer, "couldn't find any relevant information")
	// No wasted LLM call when there is nothing to ground the answer on
	assert.Equal(t, 0, llm.calls)
}

func TestAsk_EmptyDocumentShortCircuits(t *testing.T) {
	llm := &stubCompleter{answer: "never"}
	svc := NewChatService(&stubEmbedder{}, &stubRetriever{}, nil, llm)

	answer, err := svc.Ask(context.Background(), DocumentScope(uuid.New()), "what is raft?", false)
	require.NoError(t, err)
	assert.Contains(t, answer, "couldn't find any relevant information in this document")
	assert.Equal(t, 0, llm.calls)
}

func TestAsk_TopKPerScope(t *testing.T) {
	retriever := &stubRetriever{chunks: []RetrievedChunk{{Content: "c", DocumentTitle: "t"}}}
	svc := NewChatService(&stubEmbedder{}, retriever, nil, &stubCompleter{answer: "ok"})

	_, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "q?", false)
	require.NoError(t, err)
	assert.Equal(t, 8, retriever.lastK)

	_, err = svc.Ask(context.Background(), DocumentScope(uuid.New()), "q?", false)
	require.NoError(t, err)
	assert.Equal(t, 5, retriever.lastK)
}

func TestAsk_WorkspacePromptCitesSources(t *testing.T) {
	retriever := &stubRetriever{chunks: []RetrievedChunk{
		{Content: "Raft elects a leader.", DocumentTitle: "consensus.pdf"},
		{Content: "Paxos is older.", DocumentTitle: "history.pdf"},
	}}
	llm := &stubCompleter{answer: "grounded answer"}
	svc := NewChatService(&stubEmbedder{}, retriever, nil, llm)

	answer, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "who elects a leader?", false)
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)

	assert.Contains(t, llm.prompt, "[Source: consensus.pdf] Raft elects a leader.")
	assert.Contains(t, llm.prompt, "[Source: history.pdf] Paxos is older.")
	assert.Contains(t, llm.prompt, "who elects a leader?")
	assert.Contains(t, llm.prompt, "MUST cite your sources")
}

func TestAsk_WebSearchFailureDegrades(t *testing.T) {
	retriever := &stubRetriever{chunks: []RetrievedChunk{{Content: "c", DocumentTitle: "t"}}}
	searcher := &stubSearcher{err: errors.New("search down")}
	llm := &stubCompleter{answer: "still answered"}
	svc := NewChatService(&stubEmbedder{}, retriever, searcher, llm)

	answer, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "q?", true)
	require.NoError(t, err)
	assert.Equal(t, "still answered", answer)
	assert.Equal(t, 1, searcher.calls)
	assert.NotContains(t, llm.prompt, "WEB SEARCH RESULTS")
}

func TestAsk_WebOnlyContext(t *testing.T) {
	searcher := &stubSearcher{results: []WebResult{
		{URL: "https://example.com/raft", Title: "Raft paper", Markdown: "In search of an understandable consensus algorithm."},
	}}
	llm := &stubCompleter{answer: "from the web"}
	svc := NewChatService(&stubEmbedder{}, &stubRetriever{}, searcher, llm)

	answer, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "q?", true)
	require.NoError(t, err)
	assert.Equal(t, "from the web", answer)
	assert.Contains(t, llm.prompt, "WEB SEARCH RESULTS")
	assert.Contains(t, llm.prompt, "[Web Source: https://example.com/raft] Raft paper")
}

func TestAsk_NoWebSearchWhenFlagOff(t *testing.T) {
	retriever := &stubRetriever{chunks: []RetrievedChunk{{Content: "c", DocumentTitle: "t"}}}
	searcher := &stubSearcher{results: []WebResult{{URL: "https://example.com"}}}
	svc := NewChatService(&stubEmbedder{}, retriever, searcher, &stubCompleter{answer: "ok"})

	_, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "q?", false)
	require.NoError(t, err)
	assert.Equal(t, 0, searcher.calls)
}

func TestAsk_EmptyQuestionRejected(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := NewChatService(embedder, &stubRetriever{}, nil, &stubCompleter{})

	_, err := svc.Ask(context.Background(), WorkspaceScope(uuid.New()), "   ", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, embedder.calls)
}

func TestAsk_EmbedFailurePropagates(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("all providers down")}
	llm := &stubCompleter{}
	svc := NewChatService(embedder, &stubRetriever{}, nil, llm)

	_, err := svc.Ask(context.Background(), DocumentScope(uuid.New()), "q?", false)
	require.Error(t, err)
	assert.Equal(t, 0, llm.calls)
}

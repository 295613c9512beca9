package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/pgvector/pgvector-go"
)

const (
	// Wider fan-out for workspace chat: relevant passages are spread
	// across several documents.
	workspaceTopK = 8
	documentTopK  = 5

	noWorkspaceInfoAnswer = "I couldn't find any relevant information in the workspace or the web to answer your question."
	noDocumentInfoAnswer  = "I couldn't find any relevant information in this document to answer your question."
)

// Completer produces a chat-completion answer for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type retriever interface {
	Retrieve(ctx context.Context, scope Scope, query pgvector.Vector, k int) ([]RetrievedChunk, error)
}

// ChatService synthesizes grounded answers: embed the question, retrieve the
// nearest chunks, optionally augment with web search, then ask the LLM to
// answer from that context only.
type ChatService struct {
	embedder  Embedder
	retriever retriever
	searcher  WebSearcher
	llm       Completer
}

func NewChatService(embedder Embedder, retriever retriever, searcher WebSearcher, llm Completer) *ChatService {
	return &ChatService{
		embedder:  embedder,
		retriever: retriever,
		searcher:  searcher,
		llm:       llm,
	}
}

// Ask answers a question against the given scope. With deepSearch set, web
// snippets are appended to the context; a failing search degrades to
// document-only context rather than aborting. When neither documents nor the
// web produced context, a fixed answer is returned without calling the LLM.
func (s *ChatService) Ask(ctx context.Context, scope Scope, question string, deepSearch bool) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", ErrValidation)
	}

	queryEmbedding, err := s.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	k := documentTopK
	if scope.WorkspaceID != nil {
		k = workspaceTopK
	}
	chunks, err := s.retriever.Retrieve(ctx, scope, queryEmbedding, k)
	if err != nil {
		return "", err
	}

	var webResults []WebResult
	if deepSearch && s.searcher != nil {
		webResults, err = s.searcher.Search(ctx, question)
		if err != nil {
			log.Printf("web search failed, continuing with document context only: %v", err)
			webResults = nil
		}
	}

	if len(chunks) == 0 && len(webResults) == 0 {
		if scope.WorkspaceID != nil {
			return noWorkspaceInfoAnswer, nil
		}
		return noDocumentInfoAnswer, nil
	}

	prompt := buildPrompt(scope, question, chunks, webResults)
	return s.llm.Complete(ctx, prompt)
}

func buildPrompt(scope Scope, question string, chunks []RetrievedChunk, webResults []WebResult) string {
	blocks := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if scope.WorkspaceID != nil {
			blocks = append(blocks, fmt.Sprintf("[Source: %s] %s", c.DocumentTitle, c.Content))
		} else {
			blocks = append(blocks, c.Content)
		}
	}
	context := strings.Join(blocks, "\n---\n")

	if len(webResults) > 0 {
		webBlocks := make([]string, 0, len(webResults))
		for _, r := range webResults {
			webBlocks = append(webBlocks, fmt.Sprintf("[Web Source: %s] %s\n%s", r.URL, r.Title, r.Snippet()))
		}
		context += "\n\nWEB SEARCH RESULTS:\n" + strings.Join(webBlocks, "\n---\n")
	}

	if scope.WorkspaceID != nil {
		return fmt.Sprintf(`You are a smart study assistant. Use the following context from multiple documents and/or web results to answer the user's question.
Provide a detailed but concise answer.
IMPORTANT: You MUST cite your sources. When you use information from a document, mention its title (e.g., "[Source: Document Name]"). If you use information from a web search, mention the URL.

CONTEXT:
%s

QUESTION:
%s`, context, question)
	}

	return fmt.Sprintf(`You are a smart study assistant. Use the following context from a document to answer the user's question.
Provide a detailed but concise answer. If the answer is not in the context, clearly state that you cannot find it in the provided document.

CONTEXT:
%s

QUESTION:
%s`, context, question)
}

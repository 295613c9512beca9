package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// WebSearchResultLimit bounds how many snippets a single search may add to
// the chat context.
const WebSearchResultLimit = 3

// WebResult is one web-search snippet appended to the chat context.
type WebResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Markdown    string `json:"markdown"`
	Description string `json:"description"`
}

// Snippet returns the best available text for the result
func (r WebResult) Snippet() string {
	if r.Markdown != "" {
		return r.Markdown
	}
	return r.Description
}

// WebSearcher augments chat context with external search snippets.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]WebResult, error)
}

// FirecrawlService calls the Firecrawl search API. Search failures are not
// fatal to a chat request: the synthesizer degrades to document-only context.
type FirecrawlService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFirecrawlService(apiKey, baseURL string) *FirecrawlService {
	return &FirecrawlService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type firecrawlRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
	Lang  string `json:"lang"`
}

type firecrawlResponse struct {
	Data []WebResult `json:"data"`
}

// Search returns up to WebSearchResultLimit results. Every failure path
// returns an empty slice after logging; callers never abort on search errors.
func (s *FirecrawlService) Search(ctx context.Context, query string) ([]WebResult, error) {
	if s.apiKey == "" {
		log.Printf("firecrawl API key not configured, skipping web search")
		return nil, nil
	}

	jsonBody, err := json.Marshal(firecrawlRequest{Query: query, Limit: WebSearchResultLimit, Lang: "en"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var searchResp firecrawlResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return searchResp.Data, nil
}

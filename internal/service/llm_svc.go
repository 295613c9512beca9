package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrProviderNotConfigured is returned when a fallback slot in the chain has
// no credential. The message names the missing credential so the operator
// can fix the deployment.
var ErrProviderNotConfigured = errors.New("provider not configured")

const noAnswerText = "No answer generated."

// ChatProvider is one inference service capable of chat completion.
type ChatProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMService tries each configured chat provider in order: at most one call
// per provider per request, no retries, no backoff.
type LLMService struct {
	providers []ChatProvider
}

func NewLLMService(providers ...ChatProvider) *LLMService {
	return &LLMService{providers: providers}
}

// Complete returns the first provider's answer, falling back on any failure.
func (s *LLMService) Complete(ctx context.Context, prompt string) (string, error) {
	if len(s.providers) == 0 {
		return "", fmt.Errorf("%w: no chat providers configured", ErrProviderExhausted)
	}

	var failures []error
	for _, p := range s.providers {
		answer, err := p.Complete(ctx, prompt)
		if err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				log.Printf("chat provider %s quota exhausted, trying next provider", p.Name())
			} else {
				log.Printf("chat provider %s failed: %v", p.Name(), err)
			}
			failures = append(failures, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		return answer, nil
	}

	return "", fmt.Errorf("%w: %w", ErrProviderExhausted, errors.Join(failures...))
}

// OpenAIChatProvider calls an OpenAI-compatible /chat/completions endpoint.
// OpenRouter and Groq both speak this wire format.
type OpenAIChatProvider struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	referer    string
	httpClient *http.Client
}

func NewOpenAIChatProvider(name, apiKey, baseURL, model, referer string) *OpenAIChatProvider {
	return &OpenAIChatProvider{
		name:       name,
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		referer:    referer,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIChatProvider) Name() string {
	return p.name
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIChatProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: missing API key for %s", ErrProviderNotConfigured, p.name)
	}

	jsonBody, err := json.Marshal(chatRequest{
		Model:    p.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
		req.Header.Set("X-Title", "StudyHub Workspace Chat")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		return "", fmt.Errorf("%w: %s", ErrQuotaExhausted, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return noAnswerText, nil
	}

	return chatResp.Choices[0].Message.Content, nil
}

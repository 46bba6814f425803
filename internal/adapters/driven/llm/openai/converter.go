// Package openai provides the LLM-backed Converter adapter using the
// OpenAI chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.Converter = (*Converter)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI converter.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Converter performs best-effort math-to-prose and table-summary
// conversions. Each batch fans out one request per text in parallel;
// a failed request yields an empty string so the caller keeps its
// deterministic fallback instead of failing the section.
type Converter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the OpenAI chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewConverter creates a new OpenAI converter.
func NewConverter(cfg Config) (*Converter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Converter{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// ConvertMath rewrites each text so its mathematical notation reads
// as prose.
func (c *Converter) ConvertMath(ctx context.Context, texts []string, articleTitle, sectionHeading string) ([]string, error) {
	prompt := func(text string) string {
		return fmt.Sprintf(
			"The following passage is from the article %q, section %q. "+
				"Rewrite it so every piece of mathematical notation reads as plain prose, "+
				"keeping all other wording unchanged. Reply with the rewritten passage only.\n\n%s",
			articleTitle, sectionHeading, text)
	}
	return c.convertAll(ctx, texts, prompt), nil
}

// SummarizeTables produces a short natural-language summary for each
// markdown table.
func (c *Converter) SummarizeTables(ctx context.Context, tables []string, articleTitle, sectionHeading string) ([]string, error) {
	prompt := func(table string) string {
		return fmt.Sprintf(
			"The following markdown table is from the article %q, section %q. "+
				"Describe its structure and the key relationships it shows in a short prose "+
				"paragraph. Reply with the description only.\n\n%s",
			articleTitle, sectionHeading, table)
	}
	return c.convertAll(ctx, tables, prompt), nil
}

// convertAll fans out one request per text and restores results to
// input order.
func (c *Converter) convertAll(ctx context.Context, texts []string, prompt func(string) string) []string {
	results := make([]string, len(texts))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			converted, err := c.complete(ctx, prompt(text))
			if err != nil {
				logger.Warn("Conversion request %d failed: %v", i, err)
				return
			}
			results[i] = strings.TrimSpace(converted)
		}(i, text)
	}
	wg.Wait()

	return results
}

// complete runs a single single-turn chat completion.
func (c *Converter) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model:    c.model,
		Messages: []chatCompletionMsg{{Role: "user", Content: prompt}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Close releases resources.
func (c *Converter) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Package summary talks to an OpenAI-compatible chat completions API to
// generate daily digests. The API key is supplied per request by the
// caller and never stored server-side.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL       = "https://api.groq.com/openai/v1"
	defaultPrimaryModel  = "llama-3.3-70b-versatile"
	defaultFallbackModel = "llama-3.1-8b-instant"
)

// Client issues chat completion requests. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL       string
	primaryModel  string
	fallbackModel string
	http          *http.Client
}

// NewClient builds a client from the environment. LLM_BASE_URL,
// LLM_MODEL and LLM_FALLBACK_MODEL override the defaults.
func NewClient() *Client {
	c := &Client{
		baseURL:       defaultBaseURL,
		primaryModel:  defaultPrimaryModel,
		fallbackModel: defaultFallbackModel,
		http:          &http.Client{Timeout: 30 * time.Second},
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.baseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.primaryModel = v
	}
	if v := os.Getenv("LLM_FALLBACK_MODEL"); v != "" {
		c.fallbackModel = v
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt to the primary model and falls back to the
// secondary model when the primary request fails. Returns the trimmed
// completion text.
func (c *Client) Complete(ctx context.Context, apiKey, prompt string, temperature float64, maxTokens int) (string, error) {
	out, err := c.complete(ctx, apiKey, c.primaryModel, prompt, temperature, maxTokens)
	if err == nil {
		return out, nil
	}
	if c.fallbackModel == "" || c.fallbackModel == c.primaryModel {
		return "", err
	}
	return c.complete(ctx, apiKey, c.fallbackModel, prompt, temperature, maxTokens)
}

func (c *Client) complete(ctx context.Context, apiKey, model, prompt string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("chat completion: unexpected response (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("chat completion: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("chat completion: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

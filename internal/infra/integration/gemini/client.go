// Package gemini generates outreach copy with Google's Generative
// Language API. The rest of the system only depends on the contract
// "produces text or fails": swap the model list freely.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Tried in order until one answers; the free-tier availability of
// individual models shifts over time.
var models = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-latest",
	"gemini-pro",
	"gemini-1.0-pro",
}

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// APIKeyError means the key itself was rejected; trying other models
// is pointless.
type APIKeyError struct {
	Message string
}

func (e *APIKeyError) Error() string {
	return "API key error: " + e.Message
}

// GenerateMessage builds the prompt from the lead context and walks
// the model fallback list until one produces text.
func (c *Client) GenerateMessage(ctx context.Context, apiKey string, input GenerateInput) (string, error) {
	if apiKey == "" {
		return "", &APIKeyError{Message: "no Gemini API key configured"}
	}

	prompt := BuildPrompt(input)

	var lastErr error
	for _, model := range models {
		text, err := c.callModel(ctx, apiKey, model, prompt)
		if err == nil {
			return text, nil
		}
		if _, keyErr := err.(*APIKeyError); keyErr {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("all models failed, last error: %w", lastErr)
}

func (c *Client) callModel(ctx context.Context, apiKey, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.85,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 512,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("model %s: bad response: %w", model, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return "", &APIKeyError{Message: msg}
		}
		return "", fmt.Errorf("model %s: %s", model, msg)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s: empty response", model)
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("model %s: empty response", model)
	}
	return text, nil
}

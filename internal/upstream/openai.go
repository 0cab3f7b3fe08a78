package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/LavishGent/breedbase/internal/types"
)

// ChatMessage is one message of a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// Chat calls the chat completions endpoint of an OpenAI-compatible API.
type Chat struct {
	client      *Client
	baseURL     string
	apiKey      types.SecretString
	model       string
	temperature float64
}

// NewChat creates a chat-completions client for model.
func NewChat(client *Client, baseURL string, apiKey types.SecretString, model string, temperature float64) *Chat {
	return &Chat{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

// Model returns the configured model name.
func (c *Chat) Model() string {
	return c.model
}

// Complete sends messages and returns the content of the first choice. With
// jsonMode set the API is asked for a JSON object reply.
func (c *Chat) Complete(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error) {
	const op = "openai.chat"

	if c.apiKey.IsEmpty() {
		return "", types.NewUpstreamError(op, 0, errors.New("OPENAI_API_KEY is not set"))
	}

	body := chatRequest{
		Model:    c.model,
		Messages: messages,
	}
	if c.temperature > 0 {
		t := c.temperature
		body.Temperature = &t
	}
	if jsonMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey.Value())

	var resp chatResponse
	if err := c.client.doJSON(req, SourceOpenAI, op, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", types.NewParseError(op, errors.New("response has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

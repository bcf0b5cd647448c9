package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const systemPrompt = "You are a supportive well-being assistant for employees. " +
	"Answer briefly and kindly, suggest practical self-care steps and recommend " +
	"professional help when the user describes a crisis. You are not a doctor."

const summaryPrompt = "Summarize the user's well-being history below in at most three sentences " +
	"for a future conversation. Do not give advice."

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	client *resty.Client
	model  string
}

// NewOpenAI builds a client for baseURL (for example https://api.openai.com/v1).
func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) *OpenAI {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &OpenAI{client: c, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

func (o *OpenAI) Reply(ctx context.Context, prompt string, h History) (string, error) {
	msgs := []chatMessage{{Role: "system", Content: systemPrompt}}
	if h.Summary != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: "Context about the user: " + h.Summary})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: prompt})
	return o.complete(ctx, msgs, 800, 0.8)
}

func (o *OpenAI) Summarize(ctx context.Context, h History) (string, error) {
	msgs := []chatMessage{
		{Role: "system", Content: summaryPrompt},
		{Role: "user", Content: Facts(h)},
	}
	out, err := o.complete(ctx, msgs, 300, 0.3)
	if err != nil {
		return "", err
	}
	if len([]rune(out)) < 5 {
		return "", fmt.Errorf("summary too short: %q", out)
	}
	return truncate(out, maxSummaryRunes), nil
}

func (o *OpenAI) complete(ctx context.Context, msgs []chatMessage, maxTokens int, temperature float64) (string, error) {
	reqBody := chatRequest{Model: o.model, Messages: msgs, MaxTokens: maxTokens, Temperature: temperature}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("chat status %d: %s", resp.StatusCode(), resp.String())
	}
	content := gjson.GetBytes(resp.Body(), "choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("chat response has no content: %s", resp.String())
	}
	out := strings.TrimSpace(content.String())
	if out == "" {
		return "", fmt.Errorf("chat response is empty")
	}
	return out, nil
}

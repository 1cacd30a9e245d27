package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/seolab/facetlens/pkg/facetlens/insight"
)

// Client calls an OpenAI-compatible chat completion endpoint to critique
// a generated insight list. It is strictly a post-processing
// collaborator: callers apply its annotations after the core has
// finished, and any failure here leaves the core's output untouched.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
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

const reviewSystem = "You are a technical SEO reviewer. You receive faceted-navigation findings as JSON. " +
	"Return ONLY a JSON array of objects {\"insight_id\": string, \"false_positive\": bool, \"note\": string} " +
	"covering the findings you dispute. Return [] if you dispute none."

type reviewVerdict struct {
	InsightID     string `json:"insight_id"`
	FalsePositive bool   `json:"false_positive"`
	Note          string `json:"note"`
}

// Review asks the model to dispute findings and maps its verdicts to
// annotations. Implements facetlens.Critic.
func (c *Client) Review(ctx context.Context, insights []insight.Insight) ([]insight.Annotation, error) {
	payload, err := json.Marshal(insights)
	if err != nil {
		return nil, err
	}
	answer, err := c.Chat(ctx, reviewSystem, string(payload))
	if err != nil {
		return nil, err
	}

	var verdicts []reviewVerdict
	if err := json.Unmarshal([]byte(answer), &verdicts); err != nil {
		return nil, fmt.Errorf("llm: unparseable review: %w", err)
	}
	anns := make([]insight.Annotation, 0, len(verdicts))
	for _, v := range verdicts {
		anns = append(anns, insight.Annotation{
			InsightID:     v.InsightID,
			FalsePositive: v.FalsePositive,
			Note:          v.Note,
		})
	}
	return anns, nil
}

func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	messages := []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}}
	payload, err := c.send(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

func (c *Client) send(ctx context.Context, messages []chatMessage) (*chatResponse, error) {
	reqBody, err := json.Marshal(chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	return &payload, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

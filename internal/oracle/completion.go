package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-ai/pkg/shared/config"
)

const opCompletion = "completion request"

// CompletionRequest is the body posted to the completion API.
type CompletionRequest struct {
	Model            string  `json:"model"`
	MaxTokens        int     `json:"max_tokens"`
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	TopK             int     `json:"top_k"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	Prompt           string  `json:"prompt"`
}

// CompletionResponse is the subset of the completion API response that is consumed.
type CompletionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Completion is an Oracle backed by a remote text-completion HTTP API.
type Completion struct {
	client *resty.Client
	cfg    config.Completion
	logger hclog.Logger
}

// NewCompletion creates a Completion oracle that posts through client.
func NewCompletion(client *resty.Client, cfg config.Completion, logger hclog.Logger) *Completion {
	return &Completion{
		client: client,
		cfg:    cfg,
		logger: logger.Named("completion"),
	}
}

// Invoke posts prompt and returns the trimmed text of the first choice. The body is decoded
// whatever its content type; a body that is not a completion response is returned verbatim.
func (c *Completion) Invoke(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.APIKey).
		SetHeader("Accept", "application/json").
		SetBody(c.newRequest(prompt)).
		Post(c.cfg.Endpoint)
	if err != nil {
		return "", timeoutOr(ctx, opCompletion, "request failed", err)
	}

	if resp.IsError() {
		c.logger.Debug("completion API returned an error status", "status", resp.StatusCode(), "body", resp.String())
		return "", timeoutOr(ctx, opCompletion, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())), nil)
	}

	var result CompletionResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil || result.Choices == nil {
		c.logger.Debug("completion API returned a body without choices",
			"status", resp.StatusCode(),
			"content_type", resp.Header().Get("Content-Type"),
			"error", err,
		)
		return strings.TrimSpace(resp.String()), nil
	}
	if len(result.Choices) == 0 {
		c.logger.Debug("completion API returned no choices", "status", resp.StatusCode())
		return "", nil
	}
	return strings.TrimSpace(result.Choices[0].Text), nil
}

func (c *Completion) newRequest(prompt string) CompletionRequest {
	return CompletionRequest{
		Model:            c.cfg.Model,
		MaxTokens:        c.cfg.MaxTokens,
		Temperature:      c.cfg.Temperature,
		TopP:             c.cfg.TopP,
		TopK:             c.cfg.TopK,
		PresencePenalty:  c.cfg.PresencePenalty,
		FrequencyPenalty: c.cfg.FrequencyPenalty,
		Prompt:           prompt,
	}
}

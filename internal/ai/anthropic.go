package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicVersion = "2023-06-01"
)

type anthropicConfig struct {
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Version        string `json:"version"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type anthropicProvider struct {
	apiKey  string
	version string
	client  *resty.Client
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

// Invoke forwards the body to the messages endpoint unchanged apart from the
// model field, and returns the raw envelope.
func (p *anthropicProvider) Invoke(ctx context.Context, model string, body []byte) ([]byte, error) {
	if p.apiKey == "" {
		return nil, ErrUnavailable
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode anthropic request: %w", err)
	}
	modelJSON, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}
	fields["model"] = modelJSON
	// only the bedrock transport understands this field
	delete(fields, "anthropic_version")
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", p.apiKey).
		SetHeader("anthropic-version", p.version).
		SetHeader("Content-Type", "application/json").
		SetBody(data).
		Post("/v1/messages")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic request failed: %s: %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	return resp.Body(), nil
}

func createAnthropicFactory(args interface{}) (IInvokeProvider, error) {
	cfg := &anthropicConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultAnthropicVersion
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &anthropicProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		version: version,
		client:  client,
	}, nil
}

func init() {
	Register("anthropic", createAnthropicFactory)
}

package extract

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/solpipe/internal/ai"
	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

type Config struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type Extractor struct {
	invoker ai.IInvoker
	cfg     Config
}

func NewExtractor(invoker ai.IInvoker, cfg Config) *Extractor {
	return &Extractor{invoker: invoker, cfg: cfg}
}

// envelope accepts both the snake and camel case stop reason spellings seen
// across transports.
type envelope struct {
	StopReason      string            `json:"stop_reason"`
	StopReasonCamel string            `json:"stopReason"`
	Usage           json.RawMessage   `json:"usage"`
	Content         []ai.ContentBlock `json:"content"`
}

func (e *envelope) stopReason() string {
	if e.StopReason != "" {
		return e.StopReason
	}
	return e.StopReasonCamel
}

func (e *envelope) text() string {
	if len(e.Content) == 0 {
		return ""
	}
	return strings.TrimSpace(e.Content[0].Text)
}

func (x *Extractor) Extract(ctx context.Context, chunk string, ordinal, totalChunks int) (*model.ExtractionResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.Int("ordinal", ordinal), zap.Int("total_chunks", totalChunks))
	body, err := x.buildRequest(chunk, ordinal, totalChunks)
	if err != nil {
		return nil, err
	}
	if x.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.cfg.Timeout)
		defer cancel()
	}
	logger.Debug("invoking model", zap.String("model", x.invoker.ModelName()), zap.Int("chunk_size", len(chunk)))
	raw, err := x.invoker.Invoke(ctx, body)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, appErr.Wrap(appErr.KindInvalidEnvelope, err, "chunk %d: decode model envelope", ordinal)
	}
	switch env.stopReason() {
	case ai.StopReasonMaxTokens, "length":
		logger.Warn("model output truncated, parsing anyway", zap.String("stop_reason", env.stopReason()), zap.ByteString("usage", env.Usage))
	}
	text := env.text()
	if text == "" {
		return nil, appErr.New(appErr.KindEmptyModelOutput, "chunk %d: model returned no text", ordinal)
	}
	result, err := ParseResult(text)
	if err != nil {
		return nil, appErr.Wrap(appErr.KindSchemaViolation, err, "chunk %d", ordinal)
	}
	logger.Debug("chunk extracted", zap.Int("sections", len(result.Sections)))
	return result, nil
}

func (x *Extractor) buildRequest(chunk string, ordinal, totalChunks int) ([]byte, error) {
	temp := x.cfg.Temperature
	req := ai.MessagesRequest{
		AnthropicVersion: ai.BedrockAnthropicVersion,
		System:           systemPrompt,
		Messages: []ai.Message{{
			Role:    ai.RoleUser,
			Content: []ai.ContentBlock{ai.TextBlock(userPrompt(chunk, ordinal, totalChunks))},
		}},
		MaxTokens:   x.cfg.MaxTokens,
		Temperature: &temp,
	}
	return json.Marshal(req)
}

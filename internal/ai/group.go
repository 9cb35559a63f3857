package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type InvokerEntry struct {
	Name    string
	Invoker IInvoker
}

type EmbedderEntry struct {
	Name     string
	Embedder IEmbedder
}

// groupInvoker tries each entry in order and returns the first success.
type groupInvoker struct {
	items []InvokerEntry
}

func NewGroupInvoker(items []InvokerEntry) IInvoker {
	if len(items) == 0 {
		return nil
	}
	return &groupInvoker{items: items}
}

func (g *groupInvoker) Invoke(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Invoker == nil {
			continue
		}
		res, err := item.Invoker.Invoke(ctx, body)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("invoker failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("invoker not configured")
	}
	return nil, lastErr
}

func (g *groupInvoker) ModelName() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		if item.Invoker == nil {
			continue
		}
		names = append(names, item.Invoker.ModelName())
	}
	return strings.Join(names, "|")
}

type groupEmbedder struct {
	items []EmbedderEntry
}

// NewGroupEmbedder falls back across embedders. Every entry must produce
// vectors of the same dimension for the index to stay consistent.
func NewGroupEmbedder(items []EmbedderEntry) IEmbedder {
	if len(items) == 0 {
		return nil
	}
	return &groupEmbedder{items: items}
}

func (g *groupEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		res, err := item.Embedder.Embed(ctx, text, taskType)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embedder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return nil, lastErr
}

func (g *groupEmbedder) ModelName() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "|")
}

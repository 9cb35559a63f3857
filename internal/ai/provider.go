package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/solpipe/internal/config"
)

var ErrUnavailable = errors.New("ai provider unavailable")

// IInvokeProvider sends a messages-style request body to a model and returns
// the raw response envelope.
type IInvokeProvider interface {
	Name() string
	Invoke(ctx context.Context, model string, body []byte) ([]byte, error)
}

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

// IInvoker is an IInvokeProvider bound to a model.
type IInvoker interface {
	Invoke(ctx context.Context, body []byte) ([]byte, error)
	ModelName() string
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type invoker struct {
	provider IInvokeProvider
	model    string
}

func NewInvoker(p IInvokeProvider, model string) IInvoker {
	return &invoker{provider: p, model: model}
}

func (i *invoker) Invoke(ctx context.Context, body []byte) ([]byte, error) {
	return i.provider.Invoke(ctx, i.model, body)
}

func (i *invoker) ModelName() string {
	return i.model
}

type embedder struct {
	provider IEmbedProvider
	model    string
}

func NewEmbedder(p IEmbedProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type InvokeFactory func(args interface{}) (IInvokeProvider, error)
type EmbedFactory func(args interface{}) (IEmbedProvider, error)

var (
	registry      = map[string]InvokeFactory{}
	embedRegistry = map[string]EmbedFactory{}
)

func Register(name string, factory InvokeFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func RegisterEmbed(name string, factory EmbedFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewProvider(name string, args interface{}) (IInvokeProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported embed provider: %s", name)
	}
	return factory(args)
}

// BuildInvoker creates every configured generator and chains them in order.
func BuildInvoker(items []config.ProviderConfig) (IInvoker, error) {
	entries := make([]InvokerEntry, 0, len(items))
	for _, item := range items {
		p, err := NewProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("init generator %s: %w", item.Provider, err)
		}
		entries = append(entries, InvokerEntry{Name: entryName(item), Invoker: NewInvoker(p, item.Model)})
	}
	if len(entries) == 1 {
		return entries[0].Invoker, nil
	}
	inv := NewGroupInvoker(entries)
	if inv == nil {
		return nil, fmt.Errorf("no generator configured")
	}
	return inv, nil
}

func BuildEmbedder(items []config.ProviderConfig) (IEmbedder, error) {
	entries := make([]EmbedderEntry, 0, len(items))
	for _, item := range items {
		p, err := NewEmbedProvider(item.Provider, item.Data)
		if err != nil {
			return nil, fmt.Errorf("init embedder %s: %w", item.Provider, err)
		}
		entries = append(entries, EmbedderEntry{Name: entryName(item), Embedder: NewEmbedder(p, item.Model)})
	}
	if len(entries) == 1 {
		return entries[0].Embedder, nil
	}
	emb := NewGroupEmbedder(entries)
	if emb == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	return emb, nil
}

func entryName(item config.ProviderConfig) string {
	if item.Name != "" {
		return item.Name
	}
	return item.Provider + ":" + item.Model
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}

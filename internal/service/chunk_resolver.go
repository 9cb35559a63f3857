package service

import (
	"context"
	"strings"

	"github.com/xxxsen/solpipe/internal/filestore"
	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

type ChunkResolver struct {
	store filestore.Store
}

func NewChunkResolver(store filestore.Store) *ChunkResolver {
	return &ChunkResolver{store: store}
}

// Resolve prefers inline text. Anything that is not a non-blank JSON string
// falls back to the object stored under the chunk key.
func (r *ChunkResolver) Resolve(ctx context.Context, event *model.ChunkIndexingEvent) (string, error) {
	if event.Text.Valid && strings.TrimSpace(event.Text.Value) != "" {
		return event.Text.Value, nil
	}
	text, err := filestore.ReadText(ctx, r.store, event.ChunkKey)
	if err != nil {
		if appErr.IsNotFound(err) {
			return "", appErr.Wrap(appErr.KindEmptyChunkSource, err, "chunk %s", event.ChunkKey)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", appErr.New(appErr.KindEmptyChunkSource, "chunk %s has empty body", event.ChunkKey)
	}
	return text, nil
}

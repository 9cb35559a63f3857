package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/solpipe/internal/ai"
	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

const (
	TaskTypeRetrievalDocument = "RETRIEVAL_DOCUMENT"
	SkipReasonDocumentDeleted = "document_deleted"
)

type IndexResult struct {
	Success       bool   `json:"success"`
	Skipped       bool   `json:"skipped"`
	SkipReason    string `json:"skipReason,omitempty"`
	DocumentID    string `json:"documentId"`
	MarkedIndexed bool   `json:"markedIndexed"`
}

type IndexingService struct {
	docs     DocumentStore
	resolver *ChunkResolver
	embedder ai.IEmbedder
	vectors  VectorStore
	now      func() time.Time
}

func NewIndexingService(docs DocumentStore, resolver *ChunkResolver, embedder ai.IEmbedder, vectors VectorStore) *IndexingService {
	return &IndexingService{
		docs:     docs,
		resolver: resolver,
		embedder: embedder,
		vectors:  vectors,
		now:      time.Now,
	}
}

var indexingRequired = []string{"orgId", "documentId", "chunkKey"}

// Index embeds one chunk and upserts it under its chunk key. The document
// is flagged indexed when the event says it carries the last chunk.
func (s *IndexingService) Index(ctx context.Context, event *model.ChunkIndexingEvent) (*IndexResult, error) {
	if event == nil {
		event = &model.ChunkIndexingEvent{}
	}
	if err := appErr.MissingFields(indexingRequired, map[string]string{
		"orgId":      event.OrgID,
		"documentId": event.DocumentID,
		"chunkKey":   event.ChunkKey,
	}); err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("document_id", event.DocumentID),
		zap.String("chunk_key", event.ChunkKey),
	)
	if _, err := s.docs.GetByID(ctx, event.DocumentID); err != nil {
		if appErr.IsNotFound(err) {
			logger.Info("document deleted, skip chunk")
			return &IndexResult{
				Success:    true,
				Skipped:    true,
				SkipReason: SkipReasonDocumentDeleted,
				DocumentID: event.DocumentID,
			}, nil
		}
		return nil, fmt.Errorf("lookup document %s: %w", event.DocumentID, err)
	}
	text, err := s.resolver.Resolve(ctx, event)
	if err != nil {
		return nil, err
	}
	vec, err := s.embedder.Embed(ctx, text, TaskTypeRetrievalDocument)
	if err != nil {
		return nil, fmt.Errorf("embed chunk %s: %w", event.ChunkKey, err)
	}
	now := s.now().UnixMilli()
	if err := s.vectors.Upsert(ctx, &model.IndexedChunk{
		ChunkKey:        event.ChunkKey,
		OrgID:           event.OrgID,
		DocumentID:      event.DocumentID,
		KnowledgeBaseID: event.KnowledgeBaseID,
		Content:         text,
		Embedding:       vec,
		Metadata:        chunkMetadata(event, s.embedder.ModelName()),
		Mtime:           now,
	}); err != nil {
		return nil, err
	}
	res := &IndexResult{Success: true, DocumentID: event.DocumentID}
	if isLastChunk(event) {
		if err := s.docs.MarkIndexed(ctx, event.DocumentID, now); err != nil {
			return nil, fmt.Errorf("mark %s indexed: %w", event.DocumentID, err)
		}
		res.MarkedIndexed = true
	}
	logger.Info("chunk indexed", zap.Int("dimension", len(vec)), zap.Bool("marked_indexed", res.MarkedIndexed))
	return res, nil
}

func isLastChunk(event *model.ChunkIndexingEvent) bool {
	return event.Index.Valid && event.TotalChunks.Valid && event.Index.Value == event.TotalChunks.Value
}

func chunkMetadata(event *model.ChunkIndexingEvent, modelName string) map[string]any {
	meta := map[string]any{
		"orgId":      event.OrgID,
		"documentId": event.DocumentID,
		"chunkKey":   event.ChunkKey,
		"model":      modelName,
	}
	if event.KnowledgeBaseID != "" {
		meta["knowledgeBaseId"] = event.KnowledgeBaseID
	}
	if event.Index.Valid {
		meta["index"] = event.Index.Value
	}
	if event.TotalChunks.Valid {
		meta["totalChunks"] = event.TotalChunks.Value
	}
	return meta
}

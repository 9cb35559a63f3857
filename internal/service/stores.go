package service

import (
	"context"

	"github.com/xxxsen/solpipe/internal/model"
)

// QuestionFileStore scopes the cancellation lookup by project and opportunity.
type QuestionFileStore interface {
	IsCancelled(ctx context.Context, projectID, opportunityID, id string) (bool, error)
	MarkProcessed(ctx context.Context, id string, totalQuestions int, mtime int64) error
	MarkFailed(ctx context.Context, id string, message string, mtime int64) error
}

// DocumentStore returns appErr.ErrNotFound from GetByID for a deleted document.
type DocumentStore interface {
	GetByID(ctx context.Context, id string) (*model.KnowledgeDocument, error)
	MarkIndexed(ctx context.Context, id string, mtime int64) error
}

type VectorStore interface {
	Upsert(ctx context.Context, item *model.IndexedChunk) error
}

type ChunkExtractor interface {
	Extract(ctx context.Context, chunk string, ordinal, totalChunks int) (*model.ExtractionResult, error)
}

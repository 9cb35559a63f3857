package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/solpipe/internal/model"
	appErr "github.com/xxxsen/solpipe/internal/pkg/errors"
)

type ChunkVectorRepo struct {
	db *sql.DB
}

func NewChunkVectorRepo(db *sql.DB) *ChunkVectorRepo {
	return &ChunkVectorRepo{db: db}
}

// Upsert overwrites whatever is stored under the chunk key.
func (r *ChunkVectorRepo) Upsert(ctx context.Context, item *model.IndexedChunk) error {
	const query = `
		INSERT INTO chunk_vectors (chunk_key, org_id, document_id, knowledge_base_id, content, embedding, metadata, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chunk_key) DO UPDATE SET
			org_id = EXCLUDED.org_id,
			document_id = EXCLUDED.document_id,
			knowledge_base_id = EXCLUDED.knowledge_base_id,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			mtime = EXCLUDED.mtime
	`
	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for %s: %w", item.ChunkKey, err)
	}
	_, err = r.db.ExecContext(ctx, query,
		item.ChunkKey,
		item.OrgID,
		item.DocumentID,
		item.KnowledgeBaseID,
		item.Content,
		pgvector.NewVector(item.Embedding),
		string(meta),
		item.Mtime,
	)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", item.ChunkKey, err)
	}
	return nil
}

func (r *ChunkVectorRepo) Get(ctx context.Context, chunkKey string) (*model.IndexedChunk, error) {
	const query = `
		SELECT chunk_key, org_id, document_id, knowledge_base_id, content, embedding, metadata, mtime
		FROM chunk_vectors
		WHERE chunk_key = $1
	`
	row := r.db.QueryRowContext(ctx, query, chunkKey)
	var item model.IndexedChunk
	var embedding pgvector.Vector
	var meta []byte
	if err := row.Scan(&item.ChunkKey, &item.OrgID, &item.DocumentID, &item.KnowledgeBaseID,
		&item.Content, &embedding, &meta, &item.Mtime); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	item.Embedding = embedding.Slice()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &item.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", chunkKey, err)
		}
	}
	return &item, nil
}

func (r *ChunkVectorRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	const query = `SELECT COUNT(1) FROM chunk_vectors WHERE document_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

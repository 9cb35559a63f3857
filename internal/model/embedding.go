package model

// IndexedChunk is one vector store row, keyed by ChunkKey.
type IndexedChunk struct {
	ChunkKey        string         `json:"chunk_key"`
	OrgID           string         `json:"org_id"`
	DocumentID      string         `json:"document_id"`
	KnowledgeBaseID string         `json:"knowledge_base_id"`
	Content         string         `json:"content"`
	Embedding       []float32      `json:"embedding"`
	Metadata        map[string]any `json:"metadata"`
	Mtime           int64          `json:"mtime"`
}

// EmbeddingCacheKey addresses a cached vector. ContentHash is the hex
// sha256 of the embedded text.
type EmbeddingCacheKey struct {
	ModelName   string
	TaskType    string
	ContentHash string
}

type EmbeddingCache struct {
	EmbeddingCacheKey
	Embedding []float32 `json:"embedding"`
	Ctime     int64     `json:"ctime"`
}

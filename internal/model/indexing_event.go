package model

import (
	"bytes"
	"encoding/json"
)

// ChunkIndexingEvent is produced by the orchestrator, one per chunk.
// Index and TotalChunks count completed chunks, not positions.
type ChunkIndexingEvent struct {
	OrgID           string      `json:"orgId"`
	DocumentID      string      `json:"documentId"`
	KnowledgeBaseID string      `json:"knowledgeBaseId"`
	ChunkKey        string      `json:"chunkKey"`
	Text            MaybeString `json:"text"`
	Index           OptionalInt `json:"index"`
	TotalChunks     OptionalInt `json:"totalChunks"`
}

// MaybeString accepts any JSON value. Only a JSON string is kept.
type MaybeString struct {
	Value string
	Valid bool
}

func NewMaybeString(s string) MaybeString {
	return MaybeString{Value: s, Valid: true}
}

func (m *MaybeString) UnmarshalJSON(data []byte) error {
	*m = MaybeString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	*m = MaybeString{Value: s, Valid: true}
	return nil
}

func (m MaybeString) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// OptionalInt accepts any JSON value. Only an integral number is kept.
type OptionalInt struct {
	Value int
	Valid bool
}

func NewOptionalInt(v int) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	if f != float64(int(f)) {
		return nil
	}
	*o = OptionalInt{Value: int(f), Valid: true}
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

package model

type TextChunk struct {
	Content     string `json:"content"`
	Ordinal     int    `json:"ordinal"`
	TotalChunks int    `json:"total_chunks"`
	Offset      int    `json:"offset"`
}

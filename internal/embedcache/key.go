package embedcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/xxxsen/solpipe/internal/model"
)

func cacheKey(modelName, taskType, text string) model.EmbeddingCacheKey {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = "unknown"
	}
	sum := sha256.Sum256([]byte(text))
	return model.EmbeddingCacheKey{
		ModelName:   modelName,
		TaskType:    taskType,
		ContentHash: hex.EncodeToString(sum[:]),
	}
}

func lruKey(k model.EmbeddingCacheKey) string {
	return "embed:" + k.ModelName + ":" + k.TaskType + ":" + k.ContentHash
}

func cloneEmbedding(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}

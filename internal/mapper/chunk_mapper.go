package mapper

import (
	"encoding/json"
	"strconv"
	"strings"

	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.DocumentChunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	return &entity.Chunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		WebsiteId:  c.WebsiteId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  CoerceEmbedding(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	return &model.DocumentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		WebsiteId:  c.WebsiteId,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  EncodeEmbedding(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(models []*model.DocumentChunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

// CoerceEmbedding resolves the stored embedding representation into a
// numeric vector. The driver hands the vector column back as text,
// usually pgvector's "[0.1,0.2,...]" form, occasionally JSON when rows
// were written by older tooling. Anything unparsable means "missing
// embedding" and the chunk is skipped downstream.
func CoerceEmbedding(raw string) []float32 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		inner := strings.TrimSpace(raw[1 : len(raw)-1])
		if inner == "" {
			return nil
		}
		parts := strings.Split(inner, ",")
		values := make([]float32, 0, len(parts))
		ok := true
		for _, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				ok = false
				break
			}
			values = append(values, float32(f))
		}
		if ok {
			return values
		}
	}

	// Fallback: JSON array of numbers
	var jsonValues []float32
	if err := json.Unmarshal([]byte(raw), &jsonValues); err == nil && len(jsonValues) > 0 {
		return jsonValues
	}

	return nil
}

// EncodeEmbedding renders a vector in pgvector's textual form for writes.
func EncodeEmbedding(values []float32) string {
	if len(values) == 0 {
		return ""
	}
	return pgvector.NewVector(values).String()
}

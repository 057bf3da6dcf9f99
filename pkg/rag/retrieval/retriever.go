package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"site-assistant-be/internal/apperror"
	"site-assistant-be/internal/entity"
	"site-assistant-be/internal/pkg/logger"
	"site-assistant-be/internal/repository/contract"
	"site-assistant-be/pkg/embedding"
	"site-assistant-be/pkg/rag/scoring"

	"github.com/google/uuid"
)

const DefaultTopN = 8

// Retriever ranks a tenant's chunks against a question and assembles the
// grounding context handed to the model.
type Retriever struct {
	embedder *embedding.Client
	chunks   contract.ChunkRepository
	log      logger.ILogger
}

func NewRetriever(embedder *embedding.Client, chunks contract.ChunkRepository, log logger.ILogger) *Retriever {
	return &Retriever{
		embedder: embedder,
		chunks:   chunks,
		log:      log,
	}
}

type scoredChunk struct {
	chunk *entity.Chunk
	score float64
}

// GatherContext embeds the question, scores every stored chunk for the
// website and returns the assembled context plus the distinct document
// ids that contributed, best first. An empty tenant yields ("", nil, nil).
func (r *Retriever) GatherContext(ctx context.Context, websiteId uuid.UUID, question string, topN int) (string, []uuid.UUID, error) {
	if websiteId == uuid.Nil {
		return "", nil, apperror.NewRetrievalError("website_id is required", nil)
	}
	if strings.TrimSpace(question) == "" {
		return "", nil, apperror.NewRetrievalError("question is required", nil)
	}
	if topN <= 0 {
		topN = DefaultTopN
	}

	queryVec, err := r.embedder.Generate(ctx, question)
	if err != nil {
		return "", nil, err
	}

	chunks, err := r.chunks.FindByWebsite(ctx, websiteId, 0)
	if err != nil {
		if apperror.IsKind(err, apperror.KindDatabase) || apperror.IsKind(err, apperror.KindRetrieval) {
			return "", nil, err
		}
		return "", nil, apperror.NewRetrievalError("fetch chunks failed", err).
			WithDetail("website_id", websiteId.String())
	}
	if len(chunks) == 0 {
		return "", nil, nil
	}

	keywords := scoring.Keywords(question)

	scored := make([]scoredChunk, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		// Chunks with blank content or missing/malformed vectors are
		// skipped, not fatal.
		if strings.TrimSpace(c.Content) == "" {
			skipped++
			continue
		}
		if len(c.Embedding) == 0 || len(c.Embedding) != len(queryVec) {
			skipped++
			continue
		}
		sem := scoring.CosineSimilarity(queryVec, c.Embedding)
		lex := scoring.LexicalScore(keywords, c.Content)
		scored = append(scored, scoredChunk{
			chunk: c,
			score: scoring.Score(sem, lex),
		})
	}

	if skipped > 0 {
		r.log.Debug("retrieval", "skipped chunks without usable embeddings", map[string]interface{}{
			"website_id": websiteId.String(),
			"skipped":    skipped,
		})
	}

	if len(scored) == 0 {
		return "", nil, nil
	}

	// Stable so equally scored chunks keep their storage order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}

	blocks := make([]string, 0, len(scored))
	seenDocs := make(map[uuid.UUID]struct{}, len(scored))
	docIds := make([]uuid.UUID, 0, len(scored))
	for _, sc := range scored {
		blocks = append(blocks, fmt.Sprintf(
			"[document %s - chunk %d]\n%s",
			sc.chunk.DocumentId,
			sc.chunk.ChunkIndex,
			sc.chunk.Content,
		))
		if _, ok := seenDocs[sc.chunk.DocumentId]; !ok {
			seenDocs[sc.chunk.DocumentId] = struct{}{}
			docIds = append(docIds, sc.chunk.DocumentId)
		}
	}

	return strings.Join(blocks, "\n\n"), docIds, nil
}

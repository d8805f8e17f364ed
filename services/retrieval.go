package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"rag-edu-backend/internal/ai"
	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/vector"
	"rag-edu-backend/models"
	"rag-edu-backend/utils"
)

// storeCallTimeout bounds one vector store call with the configured
// upstream deadline.
func storeCallTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(cfg.UpstreamTimeoutMS)*time.Millisecond)
}

// translateStoreErr maps a vector store failure onto the error
// taxonomy: deadline and cancellation are upstream timeouts, anything
// else is an upstream failure.
func translateStoreErr(err error, format string, args ...any) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.Wrap(utils.KindUpstreamTimeout, err, format, args...)
	}
	return utils.Wrap(utils.KindUpstream, err, format, args...)
}

// RetrievalService performs similarity search over an indexed document
// and fits the results into the model's context window.
type RetrievalService struct {
	cfg      *config.Config
	embedder ai.Embedder
	store    vector.Store
}

func NewRetrievalService(cfg *config.Config, embedder ai.Embedder, store vector.Store) *RetrievalService {
	return &RetrievalService{cfg: cfg, embedder: embedder, store: store}
}

// Retrieve returns up to k chunks relevant to the query, token-budgeted
// against the context window. k=0 returns an empty slice without
// touching the embedder or the store.
func (s *RetrievalService) Retrieve(ctx context.Context, documentID, query string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		return []models.RetrievedChunk{}, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// Over-fetch so that filtering short chunks still leaves k usable
	// candidates.
	qctx, cancel := storeCallTimeout(ctx, s.cfg)
	matches, err := s.store.Query(qctx, documentID, queryVec, 2*k)
	cancel()
	if err != nil {
		if errors.Is(err, vector.ErrNamespaceNotFound) {
			return nil, utils.NotFound("document %s not found", documentID)
		}
		return nil, translateStoreErr(err, "vector query failed")
	}

	candidates := make([]models.RetrievedChunk, 0, len(matches))
	for _, m := range matches {
		if NonWhitespaceLen(m.Metadata.Text) < s.cfg.MinChunkChars {
			continue
		}
		candidates = append(candidates, matchToChunk(m))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		if len(candidates[i].Text) != len(candidates[j].Text) {
			return len(candidates[i].Text) > len(candidates[j].Text)
		}
		return candidates[i].ChunkIndex < candidates[j].ChunkIndex
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	return s.fitBudget(query, candidates), nil
}

// RetrieveBreadth returns the top k chunks by similarity re-sorted into
// document order, for generation tasks that want coverage rather than a
// focused answer.
func (s *RetrievalService) RetrieveBreadth(ctx context.Context, documentID, query string, k int) ([]models.RetrievedChunk, error) {
	chunks, err := s.Retrieve(ctx, documentID, query, k)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// fitBudget keeps chunks while they fit the remaining token budget.
// The first chunk that does not fit whole is truncated at the last
// sentence boundary inside the budget, then everything after is
// dropped.
func (s *RetrievalService) fitBudget(query string, chunks []models.RetrievedChunk) []models.RetrievedChunk {
	budget := s.cfg.MaxContextTokens - estimateTokenCount(query) - s.cfg.ResponseReserve
	if budget <= 0 {
		return []models.RetrievedChunk{}
	}

	kept := make([]models.RetrievedChunk, 0, len(chunks))
	for _, chunk := range chunks {
		cost := estimateTokenCount(chunk.Text)
		if cost <= budget {
			kept = append(kept, chunk)
			budget -= cost
			continue
		}

		// Partial fit: cut at a sentence boundary within the budget.
		maxChars := budget * 4
		if truncated, ok := truncateAtSentence(chunk.Text, maxChars, s.cfg.MinChunkChars); ok {
			chunk.Text = truncated
			kept = append(kept, chunk)
		}
		break
	}
	return kept
}

// truncateAtSentence cuts text at the last sentence end within
// maxChars. Results shorter than minChars non-whitespace are rejected.
func truncateAtSentence(text string, maxChars, minChars int) (string, bool) {
	if maxChars <= 0 {
		return "", false
	}
	if maxChars > len(text) {
		maxChars = len(text)
	}
	window := text[:maxChars]

	cut := -1
	for _, end := range []string{". ", ".\n", "! ", "? "} {
		if idx := strings.LastIndex(window, end); idx >= 0 && idx+1 > cut {
			cut = idx + 1
		}
	}
	if cut < 0 {
		return "", false
	}
	truncated := strings.TrimRight(window[:cut], " ")
	if NonWhitespaceLen(truncated) < minChars {
		return "", false
	}
	return truncated, true
}

func matchToChunk(m vector.Match) models.RetrievedChunk {
	return models.RetrievedChunk{
		Chunk: models.Chunk{
			ChunkID:    m.ID,
			Text:       m.Metadata.Text,
			Filename:   m.Metadata.Filename,
			PageNumber: m.Metadata.PageNumber,
			ChunkIndex: m.Metadata.ChunkIndex,
			CharStart:  m.Metadata.CharStart,
			CharEnd:    m.Metadata.CharEnd,
		},
		Similarity: m.Score,
	}
}

// estimateTokenCount approximates tokens as ceil(len/4).
func estimateTokenCount(text string) int {
	return (len(text) + 3) / 4
}

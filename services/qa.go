package services

import (
	"context"

	"rag-edu-backend/internal/ai"
	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/models"
)

const answerTopK = 5

// QAService answers questions against an indexed document, falling
// back to general knowledge when the material does not cover the
// question.
type QAService struct {
	cfg       *config.Config
	retrieval *RetrievalService
	completer ai.Completer
}

func NewQAService(cfg *config.Config, retrieval *RetrievalService, completer ai.Completer) *QAService {
	return &QAService{cfg: cfg, retrieval: retrieval, completer: completer}
}

// Answer retrieves context for the question and generates a grounded
// answer. When retrieval finds nothing relevant, or the grounded
// answer declares the material silent, a second completion answers
// from general knowledge and the result carries no sources.
func (s *QAService) Answer(ctx context.Context, documentID, question string) (*models.ChatResult, error) {
	chunks, err := s.retrieval.Retrieve(ctx, documentID, question, answerTopK)
	if err != nil {
		return nil, err
	}

	if !s.hasRelevantContext(chunks) {
		logger.Info("No relevant context found, using general knowledge fallback",
			"document_id", documentID)
		return s.fallbackAnswer(ctx, question)
	}

	qt := ClassifyQuestion(question)
	logger.Debug("Classified question", "type", string(qt))

	prompt := BuildAnswerPrompt(question, qt, chunks)
	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer := PostProcessAnswer(raw)
	if IndicatesNoInfo(answer) {
		logger.Info("Grounded answer declared no information, using fallback",
			"document_id", documentID)
		return s.fallbackAnswer(ctx, question)
	}

	return &models.ChatResult{
		Answer:       answer,
		Sources:      buildSources(chunks),
		FromDocument: true,
		Filename:     chunks[0].Filename,
	}, nil
}

// hasRelevantContext is the pre-completion grounding signal: at least
// one chunk at or above the similarity floor.
func (s *QAService) hasRelevantContext(chunks []models.RetrievedChunk) bool {
	for _, chunk := range chunks {
		if chunk.Similarity >= s.cfg.SimilarityFallbackThreshold {
			return true
		}
	}
	return false
}

func (s *QAService) fallbackAnswer(ctx context.Context, question string) (*models.ChatResult, error) {
	raw, err := s.completer.Complete(ctx, BuildFallbackPrompt(question))
	if err != nil {
		return nil, err
	}
	return &models.ChatResult{
		Answer:       PostProcessAnswer(raw),
		Sources:      []models.Source{},
		FromDocument: false,
	}, nil
}

const (
	maxSources      = 3
	sourceTextLimit = 300
)

func buildSources(chunks []models.RetrievedChunk) []models.Source {
	sources := make([]models.Source, 0, maxSources)
	for _, chunk := range chunks {
		if len(sources) == maxSources {
			break
		}
		text := chunk.Text
		if len(text) > sourceTextLimit {
			text = text[:sourceTextLimit] + "..."
		}
		sources = append(sources, models.Source{
			Text:       text,
			PageNumber: chunk.PageNumber,
			Filename:   chunk.Filename,
			Similarity: chunk.Similarity,
		})
	}
	return sources
}

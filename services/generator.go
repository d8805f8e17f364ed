package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rag-edu-backend/internal/ai"
	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/models"
	"rag-edu-backend/utils"
)

// breadth retrieval sizes per content type.
const (
	quizContextK      = 10
	bankContextK      = 12
	summaryContextK   = 12
	flashcardContextK = 12
)

// ContentGenerator produces quizzes, summaries, flashcards and
// competitive question banks from indexed documents. All generation
// goes through a JSON contract with the model: the output is parsed
// and validated, and an invalid response gets exactly one repair
// attempt before the operation fails.
type ContentGenerator struct {
	cfg       *config.Config
	retrieval *RetrievalService
	completer ai.Completer
}

func NewContentGenerator(cfg *config.Config, retrieval *RetrievalService, completer ai.Completer) *ContentGenerator {
	return &ContentGenerator{cfg: cfg, retrieval: retrieval, completer: completer}
}

// GenerateQuiz creates numQuestions questions of the requested types
// from document content.
func (g *ContentGenerator) GenerateQuiz(ctx context.Context, documentID string, numQuestions int, questionTypes []string) (*models.Quiz, error) {
	contextText, err := g.documentContext(ctx, documentID, "key concepts important topics main ideas", quizContextK)
	if err != nil {
		return nil, err
	}

	prompt := buildQuizPrompt(contextText, numQuestions, questionTypes)
	quiz, err := completeJSON(ctx, g.completer, prompt, func(q *models.Quiz) error {
		return validateQuiz(q, questionTypes)
	})
	if err != nil {
		return nil, err
	}

	for i := range quiz.Questions {
		quiz.Questions[i].QuestionNumber = i + 1
	}
	logger.Info("Generated quiz", "document_id", documentID, "questions", len(quiz.Questions))
	return quiz, nil
}

// GenerateBank creates a difficulty-stratified multiple-choice bank of
// n items, from a document or from a bare topic.
func (g *ContentGenerator) GenerateBank(ctx context.Context, documentID, topic string, n int) ([]models.BankQuestion, error) {
	query := "key concepts important topics main ideas diverse content"
	if topic != "" {
		query = topic + " key concepts important topics"
	}

	var contextText string
	if documentID != "" {
		var err error
		contextText, err = g.documentContext(ctx, documentID, query, bankContextK)
		if err != nil {
			return nil, err
		}
	}

	prompt := buildBankPrompt(contextText, topic, n)
	bank, err := completeJSON(ctx, g.completer, prompt, validateBank)
	if err != nil {
		return nil, err
	}

	items := bank.Questions
	for i := range items {
		items[i].QuestionID = fmt.Sprintf("q%d", i+1)
	}

	counts := map[models.Difficulty]int{}
	for _, q := range items {
		counts[q.Difficulty]++
	}
	logger.Info("Generated question bank", "questions", len(items),
		"low", counts[models.DifficultyLow], "medium", counts[models.DifficultyMedium], "hard", counts[models.DifficultyHard])
	return items, nil
}

// GenerateSummary creates a summary of the requested length
// (short/medium/long).
func (g *ContentGenerator) GenerateSummary(ctx context.Context, documentID, length string) (*models.Summary, error) {
	contextText, err := g.documentContext(ctx, documentID, "main topics key points summary overview", summaryContextK)
	if err != nil {
		return nil, err
	}

	prompt := buildSummaryPrompt(contextText, length)
	summary, err := completeJSON(ctx, g.completer, prompt, validateSummary)
	if err != nil {
		return nil, err
	}
	logger.Info("Generated summary", "document_id", documentID, "length", length)
	return summary, nil
}

// GenerateFlashcards creates n front/back study cards.
func (g *ContentGenerator) GenerateFlashcards(ctx context.Context, documentID string, n int) (*models.FlashcardSet, error) {
	contextText, err := g.documentContext(ctx, documentID, "definitions concepts terms key vocabulary important facts", flashcardContextK)
	if err != nil {
		return nil, err
	}

	prompt := buildFlashcardsPrompt(contextText, n)
	set, err := completeJSON(ctx, g.completer, prompt, validateFlashcards)
	if err != nil {
		return nil, err
	}

	for i := range set.Flashcards {
		set.Flashcards[i].CardNumber = i + 1
	}
	logger.Info("Generated flashcards", "document_id", documentID, "cards", len(set.Flashcards))
	return set, nil
}

// EvaluateAnswer grades a short answer semantically. If the model's
// output cannot be parsed even after the repair attempt, a plain
// substring comparison stands in so grading never hard-fails.
func (g *ContentGenerator) EvaluateAnswer(ctx context.Context, userAnswer, correctAnswer, question string) (*models.Evaluation, error) {
	prompt := buildEvaluationPrompt(userAnswer, correctAnswer, question)
	eval, err := completeJSON(ctx, g.completer, prompt, func(e *models.Evaluation) error {
		if strings.TrimSpace(e.Feedback) == "" {
			return fmt.Errorf("feedback is empty")
		}
		return nil
	})
	if err != nil {
		if utils.KindOf(err) != utils.KindGeneration {
			return nil, err
		}
		logger.Warn("Evaluation output unparseable, falling back to simple comparison")
		userLower := strings.ToLower(strings.TrimSpace(userAnswer))
		correctLower := strings.ToLower(strings.TrimSpace(correctAnswer))
		isSimilar := userLower != "" &&
			(strings.Contains(correctLower, userLower) || strings.Contains(userLower, correctLower))
		return &models.Evaluation{
			IsCorrect: isSimilar,
			Feedback:  "Answer evaluated using simple comparison due to parsing error.",
		}, nil
	}
	return eval, nil
}

// documentContext runs a breadth retrieval and joins the chunks in
// document order.
func (g *ContentGenerator) documentContext(ctx context.Context, documentID, query string, k int) (string, error) {
	chunks, err := g.retrieval.RetrieveBreadth(ctx, documentID, query, k)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

// completeJSON runs one completion, strips any markdown fencing,
// unmarshals into T and validates. A parse or validation failure
// triggers one repair completion carrying the error; a second failure
// is a generation error.
func completeJSON[T any](ctx context.Context, completer ai.Completer, prompt string, validate func(*T) error) (*T, error) {
	raw, err := completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, parseErr := parseJSON[T](raw, validate)
	if parseErr == nil {
		return result, nil
	}

	logger.Warn("Model output failed validation, attempting repair", "error", parseErr)
	repairPrompt := fmt.Sprintf(`Your previous response could not be used: %s

Previous response:
%s

Original request:
%s

Return ONLY the corrected JSON object, no additional text.`, parseErr, raw, prompt)

	raw, err = completer.Complete(ctx, repairPrompt)
	if err != nil {
		return nil, err
	}
	result, parseErr = parseJSON[T](raw, validate)
	if parseErr != nil {
		return nil, utils.Wrap(utils.KindGeneration, parseErr, "model returned invalid content after repair attempt")
	}
	return result, nil
}

func parseJSON[T any](raw string, validate func(*T) error) (*T, error) {
	cleaned := stripJSONFence(raw)
	var result T
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if validate != nil {
		if err := validate(&result); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// stripJSONFence removes a surrounding markdown code fence, with or
// without a json language tag.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

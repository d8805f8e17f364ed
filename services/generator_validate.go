package services

import (
	"fmt"
	"strings"

	"rag-edu-backend/models"
)

// bankEnvelope matches the JSON shape the model returns for question
// banks.
type bankEnvelope struct {
	Questions []models.BankQuestion `json:"questions"`
}

func validateQuiz(quiz *models.Quiz, allowedTypes []string) error {
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("quiz has no questions")
	}
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	seenTypes := make(map[string]bool, len(allowedTypes))
	for i, q := range quiz.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
		if !allowed[q.QuestionType] {
			return fmt.Errorf("question %d has unexpected type %q", i+1, q.QuestionType)
		}
		seenTypes[q.QuestionType] = true
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return fmt.Errorf("question %d has no correct answer", i+1)
		}
		switch q.QuestionType {
		case models.QuestionTypeMultipleChoice:
			if err := validateOptions(q.Options); err != nil {
				return fmt.Errorf("question %d: %w", i+1, err)
			}
		case models.QuestionTypeShortAnswer:
			if len(q.Options) != 0 {
				return fmt.Errorf("question %d is short answer but carries options", i+1)
			}
		}
	}
	for _, t := range allowedTypes {
		if !seenTypes[t] {
			return fmt.Errorf("quiz has no %s questions", t)
		}
	}
	return nil
}

// validateOptions checks the multiple-choice option shape: exactly
// four, each opening with a distinct letter A-D and a separator.
func validateOptions(options []string) error {
	if len(options) != 4 {
		return fmt.Errorf("expected exactly 4 options, got %d", len(options))
	}
	var seen [4]bool
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if len(opt) < 3 || opt[0] < 'A' || opt[0] > 'D' {
			return fmt.Errorf("option %d must start with a letter A-D", i+1)
		}
		switch opt[1] {
		case ')', '.', ':', '-', ' ':
		default:
			return fmt.Errorf("option %d must separate the letter with punctuation or a space", i+1)
		}
		if seen[opt[0]-'A'] {
			return fmt.Errorf("option letter %c appears more than once", opt[0])
		}
		seen[opt[0]-'A'] = true
	}
	return nil
}

func validateBank(env *bankEnvelope) error {
	if len(env.Questions) == 0 {
		return fmt.Errorf("question bank is empty")
	}
	seen := map[models.Difficulty]bool{}
	for i, q := range env.Questions {
		seen[q.Difficulty] = true
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
		if !q.Difficulty.Valid() {
			return fmt.Errorf("question %d has invalid difficulty %q", i+1, q.Difficulty)
		}
		if err := validateOptions(q.Options); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		if !isAnswerLetter(q.CorrectAnswer) {
			return fmt.Errorf("question %d correct answer must be a letter A-D, got %q", i+1, q.CorrectAnswer)
		}
	}
	// Banks of three or more must cover every difficulty level.
	if len(env.Questions) >= 3 {
		for _, d := range models.Difficulties {
			if !seen[d] {
				return fmt.Errorf("question bank is missing %s difficulty questions", d)
			}
		}
	}
	return nil
}

func validateSummary(s *models.Summary) error {
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("summary text is empty")
	}
	if strings.TrimSpace(s.SummaryTitle) == "" {
		return fmt.Errorf("summary title is empty")
	}
	if len(s.KeyTopics) == 0 {
		return fmt.Errorf("key_topics is empty")
	}
	if s.WordCount <= 0 {
		return fmt.Errorf("word_count is missing")
	}
	return nil
}

func validateFlashcards(set *models.FlashcardSet) error {
	if len(set.Flashcards) == 0 {
		return fmt.Errorf("flashcard set is empty")
	}
	for i, card := range set.Flashcards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			return fmt.Errorf("flashcard %d has an empty side", i+1)
		}
	}
	return nil
}

// isAnswerLetter accepts a single letter A-D in either case.
func isAnswerLetter(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'A' && c <= 'D') || (c >= 'a' && c <= 'd')
}

package models

import "time"

// Difficulty is a closed set of question difficulty levels.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the levels in ascending order.
var Difficulties = []Difficulty{DifficultyLow, DifficultyMedium, DifficultyHard}

// Rank returns the ordinal of a difficulty (low=0, medium=1, hard=2).
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyLow:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	}
	return 1
}

// Valid reports whether d is one of the three known levels.
func (d Difficulty) Valid() bool {
	return d == DifficultyLow || d == DifficultyMedium || d == DifficultyHard
}

// Trend summarizes recent performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// QuizItem is one generated quiz question. Options and CorrectAnswer are
// present only for multiple-choice items.
type QuizItem struct {
	QuestionNumber int      `json:"question_number,omitempty"`
	QuestionType   string   `json:"question_type"`
	Question       string   `json:"question"`
	Options        []string `json:"options,omitempty"`
	CorrectAnswer  string   `json:"correct_answer"`
	Hint           string   `json:"hint"`
	Explanation    string   `json:"explanation"`
}

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeShortAnswer    = "short_answer"
)

// Quiz is a generated set of questions.
type Quiz struct {
	QuizTitle string     `json:"quiz_title"`
	Questions []QuizItem `json:"questions"`
}

// BankQuestion is one difficulty-tagged multiple-choice item in a
// competitive question bank.
type BankQuestion struct {
	QuestionID    string     `json:"question_id"`
	Difficulty    Difficulty `json:"difficulty"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"correct_answer"`
	Hint          string     `json:"hint"`
	Explanation   string     `json:"explanation"`
}

// QuestionBank is a pre-generated pool of items backing competitive
// quiz sessions. Banks may be shared across sessions.
type QuestionBank struct {
	QuizID string         `json:"quiz_id"`
	Items  []BankQuestion `json:"question_bank"`
}

// AnsweredTurn records one graded answer inside a session.
type AnsweredTurn struct {
	QuestionID string     `json:"question_id"`
	Difficulty Difficulty `json:"difficulty"`
	UserAnswer string     `json:"user_answer"`
	IsCorrect  bool       `json:"is_correct"`
	Reward     float64    `json:"reward"`
	AnsweredAt time.Time  `json:"answered_at"`
}

// SessionStats is returned on every graded answer.
type SessionStats struct {
	TotalQuestions         int                `json:"total_questions"`
	QuestionsAnswered      int                `json:"questions_answered"`
	CorrectAnswers         int                `json:"correct_answers"`
	Accuracy               float64            `json:"accuracy"`
	TotalReward            float64            `json:"total_reward"`
	PerformanceTrend       Trend              `json:"performance_trend"`
	DifficultyDistribution map[Difficulty]int `json:"difficulty_distribution"`
}

// AnswerResult is the outcome of grading one competitive quiz answer.
type AnswerResult struct {
	IsCorrect      bool          `json:"is_correct"`
	CorrectAnswer  string        `json:"correct_answer"`
	Explanation    string        `json:"explanation"`
	Reward         float64       `json:"reward"`
	NextQuestion   *BankQuestion `json:"next_question,omitempty"`
	NextDifficulty Difficulty    `json:"next_difficulty,omitempty"`
	IsComplete     bool          `json:"is_complete"`
	Stats          SessionStats  `json:"stats"`
}

// Summary is a generated document summary.
type Summary struct {
	SummaryTitle string   `json:"summary_title"`
	Summary      string   `json:"summary"`
	KeyTopics    []string `json:"key_topics"`
	WordCount    int      `json:"word_count"`
}

// Flashcard is one front/back study card.
type Flashcard struct {
	CardNumber int    `json:"card_number,omitempty"`
	Front      string `json:"front"`
	Back       string `json:"back"`
	Category   string `json:"category"`
}

// FlashcardSet is a generated set of flashcards.
type FlashcardSet struct {
	FlashcardSetTitle string      `json:"flashcard_set_title"`
	Flashcards        []Flashcard `json:"flashcards"`
}

// Evaluation is the semantic grading of a short answer.
type Evaluation struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}

package models

// Request bodies for the HTTP API. Validation beyond struct tags
// (enums, ranges tied to configuration) happens in the handlers.

type ChatRequest struct {
	Question   string `json:"question" binding:"required"`
	DocumentID string `json:"document_id" binding:"required"`
	Filename   string `json:"filename"`
}

type ChatResponse struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	FromDocument bool     `json:"from_document"`
	Filename     string   `json:"filename,omitempty"`
}

type QuizRequest struct {
	DocumentID    string   `json:"document_id" binding:"required"`
	NumQuestions  int      `json:"num_questions" binding:"required"`
	QuestionTypes []string `json:"question_types" binding:"required"`
}

type QuizResponse struct {
	Quiz Quiz `json:"quiz"`
}

type EvaluateAnswerRequest struct {
	UserAnswer    string `json:"user_answer" binding:"required"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
	Question      string `json:"question" binding:"required"`
}

type SummaryRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	Length     string `json:"length"`
}

type SummaryResponse struct {
	Summary Summary `json:"summary"`
}

type FlashcardsRequest struct {
	DocumentID    string `json:"document_id" binding:"required"`
	NumFlashcards int    `json:"num_flashcards" binding:"required"`
}

type FlashcardsResponse struct {
	Flashcards FlashcardSet `json:"flashcards"`
}

type GenerateBankRequest struct {
	NumQuestions int    `json:"num_questions"`
	DocumentID   string `json:"document_id"`
	Topic        string `json:"topic"`
}

type GenerateBankResponse struct {
	QuizID       string         `json:"quiz_id"`
	QuestionBank []BankQuestion `json:"question_bank"`
}

type StartQuizRequest struct {
	QuizID       string `json:"quiz_id" binding:"required"`
	NumQuestions int    `json:"num_questions"`
}

type StartQuizResponse struct {
	SessionID         string       `json:"session_id"`
	Question          BankQuestion `json:"question"`
	CurrentDifficulty Difficulty   `json:"current_difficulty"`
}

type SubmitAnswerRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

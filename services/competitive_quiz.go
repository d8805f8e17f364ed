package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	xrand "golang.org/x/exp/rand"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/models"
	"rag-edu-backend/utils"
)

// drawFallback is the difficulty order tried when the selected level
// has no unused questions left.
var drawFallback = []models.Difficulty{
	models.DifficultyMedium,
	models.DifficultyLow,
	models.DifficultyHard,
}

// QuizSession is the state of one user's run through a question bank.
// The mutex serializes answer turns; a concurrent answer on the same
// session fails instead of waiting.
type QuizSession struct {
	mu sync.Mutex

	ID          string
	QuizID      string
	TargetCount int

	CurrentQuestion *models.BankQuestion
	Used            map[string]bool
	Answered        []models.AnsweredTurn
	Complete        bool

	// selection state at the time CurrentQuestion was chosen
	prevState State

	qAgent   *QLearningAgent
	thompson *ThompsonAgent
	selector *DifficultySelector
}

// CompetitiveQuizService owns question banks and quiz sessions. Both
// live in process memory; banks may be shared across sessions.
type CompetitiveQuizService struct {
	cfg       *config.Config
	generator *ContentGenerator

	mu       sync.RWMutex
	banks    map[string]*models.QuestionBank
	sessions map[string]*QuizSession

	newRNG func() *xrand.Rand
}

func NewCompetitiveQuizService(cfg *config.Config, generator *ContentGenerator) *CompetitiveQuizService {
	return &CompetitiveQuizService{
		cfg:       cfg,
		generator: generator,
		banks:     make(map[string]*models.QuestionBank),
		sessions:  make(map[string]*QuizSession),
		newRNG: func() *xrand.Rand {
			return xrand.New(xrand.NewSource(uint64(time.Now().UnixNano())))
		},
	}
}

// SetRNGFactory overrides the per-session random source, used by tests
// for deterministic policies.
func (s *CompetitiveQuizService) SetRNGFactory(f func() *xrand.Rand) {
	s.newRNG = f
}

// GenerateBank creates and registers a question bank from a document
// or a bare topic. n=0 uses the configured default size.
func (s *CompetitiveQuizService) GenerateBank(ctx context.Context, documentID, topic string, n int) (*models.QuestionBank, error) {
	if n == 0 {
		n = s.cfg.CompetitiveBankSize
	}

	items, err := s.generator.GenerateBank(ctx, documentID, topic, n)
	if err != nil {
		return nil, err
	}

	bank := &models.QuestionBank{QuizID: uuid.NewString(), Items: items}
	s.mu.Lock()
	s.banks[bank.QuizID] = bank
	s.mu.Unlock()

	logger.Info("Registered question bank", "quiz_id", bank.QuizID, "items", len(items))
	return bank, nil
}

// Start mints a session over an existing bank. The first question is
// drawn at medium difficulty.
func (s *CompetitiveQuizService) Start(quizID string, targetCount int) (*models.StartQuizResponse, error) {
	s.mu.RLock()
	bank, ok := s.banks[quizID]
	s.mu.RUnlock()
	if !ok {
		return nil, utils.NotFound("quiz %s not found", quizID)
	}

	rng := s.newRNG()
	qAgent := NewQLearningAgent(s.cfg.QLAlpha, s.cfg.QLGamma, s.cfg.QLEpsilon, rng)
	thompson := NewThompsonAgent(rng)

	session := &QuizSession{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		TargetCount: targetCount,
		Used:        make(map[string]bool),
		prevState:   State{Difficulty: models.DifficultyMedium, Trend: models.TrendStable},
		qAgent:      qAgent,
		thompson:    thompson,
		selector:    NewDifficultySelector(qAgent, thompson, s.cfg.BlendWeightQ, rng),
	}

	first := drawQuestion(bank, session.Used, models.DifficultyMedium)
	if first == nil {
		return nil, utils.E(utils.KindInternal, "quiz %s has no questions", quizID)
	}
	session.CurrentQuestion = first
	session.Used[first.QuestionID] = true

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	logger.Info("Started quiz session", "session_id", session.ID, "quiz_id", quizID, "target", targetCount)
	return &models.StartQuizResponse{
		SessionID:         session.ID,
		Question:          *first,
		CurrentDifficulty: first.Difficulty,
	}, nil
}

// Answer grades one turn and advances the session. Turns on one
// session are strictly serialized: a second concurrent call loses with
// a conflict and does not touch session state.
func (s *CompetitiveQuizService) Answer(sessionID, questionID, userAnswer string) (*models.AnswerResult, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	bank := (*models.QuestionBank)(nil)
	if ok {
		bank = s.banks[session.QuizID]
	}
	s.mu.RUnlock()
	if !ok {
		return nil, utils.NotFound("session %s not found", sessionID)
	}

	if !session.mu.TryLock() {
		return nil, utils.Conflict("session %s is processing another answer", sessionID)
	}
	defer session.mu.Unlock()

	if session.Complete {
		return nil, utils.BadInput("session %s is already complete", sessionID)
	}
	if session.CurrentQuestion == nil || session.CurrentQuestion.QuestionID != questionID {
		return nil, utils.BadInput("question %s is not the current question", questionID)
	}

	question := session.CurrentQuestion
	isCorrect := strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(question.CorrectAnswer))
	reward := RewardFor(question.Difficulty, isCorrect)

	session.Answered = append(session.Answered, models.AnsweredTurn{
		QuestionID: question.QuestionID,
		Difficulty: question.Difficulty,
		UserAnswer: userAnswer,
		IsCorrect:  isCorrect,
		Reward:     reward,
		AnsweredAt: time.Now().UTC(),
	})

	trend := TrendOf(session.Answered)
	nextState := State{Difficulty: question.Difficulty, Trend: trend}
	session.qAgent.Update(session.prevState, question.Difficulty, reward, nextState)
	session.thompson.Update(question.Difficulty, isCorrect)

	result := &models.AnswerResult{
		IsCorrect:     isCorrect,
		CorrectAnswer: question.CorrectAnswer,
		Explanation:   question.Explanation,
		Reward:        reward,
	}

	if len(session.Answered) >= session.TargetCount {
		session.Complete = true
		session.CurrentQuestion = nil
		result.IsComplete = true
		result.Stats = sessionStats(session, trend)
		return result, nil
	}

	selected := session.selector.SelectNext(nextState, question.Difficulty, isCorrect)
	next := drawQuestion(bank, session.Used, selected)
	if next == nil {
		// Bank exhausted: terminate early with the target reduced to
		// what was actually answered.
		session.TargetCount = len(session.Answered)
		session.Complete = true
		session.CurrentQuestion = nil
		result.IsComplete = true
		result.Stats = sessionStats(session, trend)
		return result, nil
	}

	session.CurrentQuestion = next
	session.Used[next.QuestionID] = true
	session.prevState = nextState

	result.NextQuestion = next
	result.NextDifficulty = next.Difficulty
	result.Stats = sessionStats(session, trend)
	return result, nil
}

// drawQuestion picks an unused bank item of the wanted difficulty,
// falling back medium, low, hard, then any unused item.
func drawQuestion(bank *models.QuestionBank, used map[string]bool, want models.Difficulty) *models.BankQuestion {
	if bank == nil {
		return nil
	}
	order := append([]models.Difficulty{want}, drawFallback...)
	for _, d := range order {
		for i := range bank.Items {
			q := &bank.Items[i]
			if q.Difficulty == d && !used[q.QuestionID] {
				return q
			}
		}
	}
	for i := range bank.Items {
		if !used[bank.Items[i].QuestionID] {
			return &bank.Items[i]
		}
	}
	return nil
}

func sessionStats(session *QuizSession, trend models.Trend) models.SessionStats {
	correct := 0
	totalReward := 0.0
	distribution := make(map[models.Difficulty]int, 3)
	for _, turn := range session.Answered {
		if turn.IsCorrect {
			correct++
		}
		totalReward += turn.Reward
		distribution[turn.Difficulty]++
	}

	answered := len(session.Answered)
	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(correct) / float64(answered) * 100
	}

	return models.SessionStats{
		TotalQuestions:         session.TargetCount,
		QuestionsAnswered:      answered,
		CorrectAnswers:         correct,
		Accuracy:               accuracy,
		TotalReward:            totalReward,
		PerformanceTrend:       trend,
		DifficultyDistribution: distribution,
	}
}

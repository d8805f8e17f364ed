package services

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"rag-edu-backend/models"
)

// State is one of the nine (difficulty, trend) learning states.
type State struct {
	Difficulty models.Difficulty
	Trend      models.Trend
}

// actionOrder is the argmax tie-break order: medium beats low beats
// hard.
var actionOrder = []models.Difficulty{
	models.DifficultyMedium,
	models.DifficultyLow,
	models.DifficultyHard,
}

// RewardFor returns the reward for grading an answer served at the
// given difficulty.
func RewardFor(difficulty models.Difficulty, correct bool) float64 {
	if correct {
		switch difficulty {
		case models.DifficultyLow:
			return 0.50
		case models.DifficultyMedium:
			return 0.75
		case models.DifficultyHard:
			return 1.00
		}
	}
	switch difficulty {
	case models.DifficultyLow:
		return -0.50
	case models.DifficultyMedium:
		return -0.55
	case models.DifficultyHard:
		return -0.75
	}
	return 0
}

// TrendOf derives the performance trend from the last up to three
// answered turns. Fewer than two answers is always stable.
func TrendOf(turns []models.AnsweredTurn) models.Trend {
	window := turns
	if len(window) > 3 {
		window = window[len(window)-3:]
	}
	if len(window) < 2 {
		return models.TrendStable
	}

	correct := 0
	for _, t := range window {
		if t.IsCorrect {
			correct++
		}
	}
	incorrect := len(window) - correct
	switch {
	case correct >= 2:
		return models.TrendImproving
	case incorrect >= 2:
		return models.TrendDeclining
	}
	return models.TrendStable
}

// QLearningAgent holds a per-session Q-table over (state, action)
// pairs. Unknown entries read as zero.
type QLearningAgent struct {
	alpha   float64
	gamma   float64
	epsilon float64
	qTable  map[State]map[models.Difficulty]float64
	rng     *xrand.Rand
}

func NewQLearningAgent(alpha, gamma, epsilon float64, rng *xrand.Rand) *QLearningAgent {
	return &QLearningAgent{
		alpha:   alpha,
		gamma:   gamma,
		epsilon: epsilon,
		qTable:  make(map[State]map[models.Difficulty]float64),
		rng:     rng,
	}
}

// QValue reads a Q-table entry, defaulting to zero.
func (a *QLearningAgent) QValue(s State, action models.Difficulty) float64 {
	return a.qTable[s][action]
}

func (a *QLearningAgent) maxQ(s State) float64 {
	best := 0.0
	first := true
	for _, v := range a.qTable[s] {
		if first || v > best {
			best = v
			first = false
		}
	}
	if first {
		return 0
	}
	return best
}

// Update applies the temporal-difference rule:
// Q(s,a) += alpha * (r + gamma * max_a' Q(s',a') - Q(s,a)).
func (a *QLearningAgent) Update(s State, action models.Difficulty, reward float64, next State) {
	row, ok := a.qTable[s]
	if !ok {
		row = make(map[models.Difficulty]float64, 3)
		a.qTable[s] = row
	}
	current := row[action]
	row[action] = current + a.alpha*(reward+a.gamma*a.maxQ(next)-current)
}

// ChooseAction is epsilon-greedy: explore uniformly with probability
// epsilon, otherwise take the argmax with ties broken medium, low,
// hard.
func (a *QLearningAgent) ChooseAction(s State) models.Difficulty {
	if a.rng.Float64() < a.epsilon {
		return models.Difficulties[a.rng.Intn(len(models.Difficulties))]
	}

	best := actionOrder[0]
	bestQ := a.QValue(s, best)
	for _, action := range actionOrder[1:] {
		if q := a.QValue(s, action); q > bestQ {
			best, bestQ = action, q
		}
	}
	return best
}

// ThompsonAgent keeps a Beta(alpha, beta) arm per difficulty, starting
// from the uniform prior (1, 1).
type ThompsonAgent struct {
	params map[models.Difficulty]*betaParams
	rng    *xrand.Rand
}

type betaParams struct {
	Alpha float64
	Beta  float64
}

func NewThompsonAgent(rng *xrand.Rand) *ThompsonAgent {
	params := make(map[models.Difficulty]*betaParams, 3)
	for _, d := range models.Difficulties {
		params[d] = &betaParams{Alpha: 1, Beta: 1}
	}
	return &ThompsonAgent{params: params, rng: rng}
}

// ChooseAction samples every arm and returns the difficulty with the
// highest draw.
func (t *ThompsonAgent) ChooseAction() models.Difficulty {
	best := actionOrder[0]
	bestSample := -1.0
	for _, action := range actionOrder {
		p := t.params[action]
		sample := distuv.Beta{Alpha: p.Alpha, Beta: p.Beta, Src: t.rng}.Rand()
		if sample > bestSample {
			best, bestSample = action, sample
		}
	}
	return best
}

// Update credits the arm of the served difficulty: a success raises
// alpha, a failure raises beta.
func (t *ThompsonAgent) Update(action models.Difficulty, correct bool) {
	p, ok := t.params[action]
	if !ok {
		p = &betaParams{Alpha: 1, Beta: 1}
		t.params[action] = p
	}
	if correct {
		p.Alpha++
	} else {
		p.Beta++
	}
}

// Params exposes the current arm parameters, for stats and tests.
func (t *ThompsonAgent) Params(action models.Difficulty) (alpha, beta float64) {
	p := t.params[action]
	return p.Alpha, p.Beta
}

// DifficultySelector blends the Q-policy and the Thompson policy into
// one next-difficulty recommendation.
type DifficultySelector struct {
	qAgent   *QLearningAgent
	thompson *ThompsonAgent
	qWeight  float64
	rng      *xrand.Rand
}

func NewDifficultySelector(qAgent *QLearningAgent, thompson *ThompsonAgent, qWeight float64, rng *xrand.Rand) *DifficultySelector {
	return &DifficultySelector{qAgent: qAgent, thompson: thompson, qWeight: qWeight, rng: rng}
}

// SelectNext draws both policy recommendations, keeps the Q-policy's
// with probability qWeight, then applies the safety adjustment: a
// correct answer never steps easier than the current difficulty, an
// incorrect one never steps harder.
func (ds *DifficultySelector) SelectNext(next State, current models.Difficulty, lastCorrect bool) models.Difficulty {
	qRec := ds.qAgent.ChooseAction(next)
	tsRec := ds.thompson.ChooseAction()

	choice := tsRec
	if ds.rng.Float64() < ds.qWeight {
		choice = qRec
	}

	if lastCorrect && choice.Rank() < current.Rank() {
		choice = current
	}
	if !lastCorrect && choice.Rank() > current.Rank() {
		choice = current
	}
	return choice
}

package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/models"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

const (
	minBankQuestions    = 3
	maxBankQuestions    = 100
	minSessionQuestions = 5
	maxSessionQuestions = 10
)

func SetupCompetitiveQuizRoutes(router *gin.Engine, quiz *services.CompetitiveQuizService) {
	group := router.Group("/competitive-quiz")

	group.POST("/generate-bank", func(c *gin.Context) {
		var req models.GenerateBankRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("invalid request body"))
			return
		}
		if req.NumQuestions != 0 && (req.NumQuestions < minBankQuestions || req.NumQuestions > maxBankQuestions) {
			utils.RespondError(c, utils.BadInput("num_questions must be between %d and %d", minBankQuestions, maxBankQuestions))
			return
		}
		if req.DocumentID == "" && req.Topic == "" {
			utils.RespondError(c, utils.BadInput("either document_id or topic is required"))
			return
		}

		bank, err := quiz.GenerateBank(c.Request.Context(), req.DocumentID, req.Topic, req.NumQuestions)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.GenerateBankResponse{
			QuizID:       bank.QuizID,
			QuestionBank: bank.Items,
		})
	})

	group.POST("/start", func(c *gin.Context) {
		var req models.StartQuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("quiz_id is required"))
			return
		}
		if req.NumQuestions == 0 {
			req.NumQuestions = maxSessionQuestions
		}
		if req.NumQuestions < minSessionQuestions || req.NumQuestions > maxSessionQuestions {
			utils.RespondError(c, utils.BadInput("num_questions must be between %d and %d", minSessionQuestions, maxSessionQuestions))
			return
		}

		result, err := quiz.Start(req.QuizID, req.NumQuestions)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	group.POST("/answer", func(c *gin.Context) {
		var req models.SubmitAnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("session_id, question_id and answer are required"))
			return
		}
		if !isAnswerLetter(req.Answer) {
			utils.RespondError(c, utils.BadInput("answer must be a single letter A-D"))
			return
		}

		result, err := quiz.Answer(req.SessionID, req.QuestionID, req.Answer)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func isAnswerLetter(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return (c >= 'A' && c <= 'D') || (c >= 'a' && c <= 'd')
}

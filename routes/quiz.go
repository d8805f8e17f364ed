package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/models"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

const (
	minQuizQuestions = 5
	maxQuizQuestions = 50
)

func SetupQuizRoutes(router *gin.Engine, generator *services.ContentGenerator) {
	quiz := router.Group("/quiz")

	quiz.POST("", func(c *gin.Context) {
		var req models.QuizRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("document_id, num_questions and question_types are required"))
			return
		}
		if req.NumQuestions < minQuizQuestions || req.NumQuestions > maxQuizQuestions {
			utils.RespondError(c, utils.BadInput("num_questions must be between %d and %d", minQuizQuestions, maxQuizQuestions))
			return
		}
		if err := validateQuestionTypes(req.QuestionTypes); err != nil {
			utils.RespondError(c, err)
			return
		}

		result, err := generator.GenerateQuiz(c.Request.Context(), req.DocumentID, req.NumQuestions, req.QuestionTypes)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.QuizResponse{Quiz: *result})
	})

	quiz.POST("/evaluate-answer", func(c *gin.Context) {
		var req models.EvaluateAnswerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("user_answer, correct_answer and question are required"))
			return
		}

		eval, err := generator.EvaluateAnswer(c.Request.Context(), req.UserAnswer, req.CorrectAnswer, req.Question)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, eval)
	})
}

func validateQuestionTypes(types []string) error {
	if len(types) == 0 {
		return utils.BadInput("question_types must not be empty")
	}
	for _, t := range types {
		if t != models.QuestionTypeMultipleChoice && t != models.QuestionTypeShortAnswer {
			return utils.BadInput("unknown question type %q", t)
		}
	}
	return nil
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/models"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

func SetupChatRoutes(router *gin.Engine, qa *services.QAService) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("question and document_id are required"))
			return
		}

		result, err := qa.Answer(c.Request.Context(), req.DocumentID, req.Question)
		if err != nil {
			utils.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Answer:       result.Answer,
			Sources:      result.Sources,
			FromDocument: result.FromDocument,
			Filename:     result.Filename,
		})
	})
}

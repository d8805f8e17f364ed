package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/models"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

const (
	minFlashcards = 1
	maxFlashcards = 50
)

func SetupFlashcardRoutes(router *gin.Engine, generator *services.ContentGenerator) {
	router.POST("/flashcards", func(c *gin.Context) {
		var req models.FlashcardsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("document_id and num_flashcards are required"))
			return
		}
		if req.NumFlashcards < minFlashcards || req.NumFlashcards > maxFlashcards {
			utils.RespondError(c, utils.BadInput("num_flashcards must be between %d and %d", minFlashcards, maxFlashcards))
			return
		}

		result, err := generator.GenerateFlashcards(c.Request.Context(), req.DocumentID, req.NumFlashcards)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.FlashcardsResponse{Flashcards: *result})
	})
}

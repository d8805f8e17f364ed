package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/models"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

func SetupSummaryRoutes(router *gin.Engine, generator *services.ContentGenerator) {
	router.POST("/summary", func(c *gin.Context) {
		var req models.SummaryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.BadInput("document_id is required"))
			return
		}
		if req.Length == "" {
			req.Length = "medium"
		}
		switch req.Length {
		case "short", "medium", "long":
		default:
			utils.RespondError(c, utils.BadInput("length must be one of short, medium, long"))
			return
		}

		result, err := generator.GenerateSummary(c.Request.Context(), req.DocumentID, req.Length)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SummaryResponse{Summary: *result})
	})
}

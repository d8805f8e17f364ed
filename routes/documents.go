package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

func SetupDocumentRoutes(router *gin.Engine, ingestion *services.IngestionService) {
	documents := router.Group("/documents")

	documents.GET("/list", func(c *gin.Context) {
		docs, err := ingestion.ListDocuments(c.Request.Context())
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": docs})
	})
}

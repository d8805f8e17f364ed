package routes

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/services"
	"rag-edu-backend/utils"
)

func SetupUploadRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService) {
	router.POST("/upload", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			utils.RespondError(c, utils.BadInput("expected multipart form with files"))
			return
		}

		fileHeaders := form.File["files"]
		if len(fileHeaders) == 0 {
			utils.RespondError(c, utils.BadInput("no files provided"))
			return
		}

		files := make([]services.UploadedFile, 0, len(fileHeaders))
		for _, fh := range fileHeaders {
			if fh.Size > cfg.MaxFileSize {
				utils.RespondError(c, utils.BadInput("file %q exceeds the size limit", fh.Filename))
				return
			}
			if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
				utils.RespondError(c, utils.BadInput("file %q is not a PDF", fh.Filename))
				return
			}

			f, err := fh.Open()
			if err != nil {
				utils.RespondError(c, utils.Wrap(utils.KindInternal, err, "failed to open uploaded file"))
				return
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				utils.RespondError(c, utils.Wrap(utils.KindInternal, err, "failed to read uploaded file"))
				return
			}
			files = append(files, services.UploadedFile{Filename: fh.Filename, Content: content})
		}

		result, err := ingestion.Ingest(c.Request.Context(), files)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/services"
)

func newCompetitiveRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	quiz := services.NewCompetitiveQuizService(&config.Config{CompetitiveBankSize: 30}, nil)
	SetupCompetitiveQuizRoutes(router, quiz)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateBankValidation(t *testing.T) {
	router := newCompetitiveRouter()

	t.Run("out of range count", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/generate-bank", `{"num_questions": 2, "topic": "cells"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "num_questions")
	})

	t.Run("missing document and topic", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/generate-bank", `{"num_questions": 10}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "document_id or topic")
	})
}

func TestStartQuizValidation(t *testing.T) {
	router := newCompetitiveRouter()

	t.Run("unknown quiz is 404", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/start", `{"quiz_id": "nope"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "detail")
	})

	t.Run("count below session minimum", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/start", `{"quiz_id": "nope", "num_questions": 3}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitAnswerValidation(t *testing.T) {
	router := newCompetitiveRouter()

	t.Run("answer must be a letter", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/answer", `{"session_id": "s", "question_id": "q", "answer": "maybe B"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "single letter")
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		w := postJSON(router, "/competitive-quiz/answer", `{"session_id": "s", "question_id": "q", "answer": " b "}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestQuizRequestValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupQuizRoutes(router, nil)

	t.Run("count below minimum", func(t *testing.T) {
		w := postJSON(router, "/quiz", `{"document_id": "d", "num_questions": 4, "question_types": ["multiple_choice"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown question type", func(t *testing.T) {
		w := postJSON(router, "/quiz", `{"document_id": "d", "num_questions": 10, "question_types": ["essay"]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "essay")
	})
}

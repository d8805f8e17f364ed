package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/vector"
)

func testQAConfig() *config.Config {
	return &config.Config{
		MaxContextTokens:            4000,
		ResponseReserve:             1000,
		MinChunkChars:               50,
		UpstreamTimeoutMS:           30000,
		SimilarityFallbackThreshold: 0.3,
	}
}

func newTestQA(t *testing.T, completer *fakeCompleter, vectors []vector.Vector) *QAService {
	t.Helper()
	store := vector.NewMemoryStore()
	seedNamespace(t, store, "doc-1", vectors)
	retrieval := NewRetrievalService(testQAConfig(), newFakeEmbedder([]float32{1, 0}), store)
	return NewQAService(testQAConfig(), retrieval, completer)
}

func relevantVectors() []vector.Vector {
	return []vector.Vector{
		{ID: "c0", Values: []float32{1, 0}, Metadata: vector.Metadata{
			Text: longText("chlorophyll absorbs light"), Filename: "bio.pdf", PageNumber: 2, ChunkIndex: 0}},
		{ID: "c1", Values: []float32{0.9, 0.1}, Metadata: vector.Metadata{
			Text: longText("glucose stores energy"), Filename: "bio.pdf", PageNumber: 5, ChunkIndex: 1}},
	}
}

func TestAnswerGroundedInDocument(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"Based on the context, chlorophyll absorbs light for photosynthesis.",
	}}
	svc := newTestQA(t, completer, relevantVectors())

	result, err := svc.Answer(context.Background(), "doc-1", "What does chlorophyll do?")
	require.NoError(t, err)

	assert.Equal(t, "Chlorophyll absorbs light for photosynthesis.", result.Answer)
	assert.True(t, result.FromDocument)
	assert.Equal(t, "bio.pdf", result.Filename)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, 2, result.Sources[0].PageNumber)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "[Source: bio.pdf, p. 2]")
}

func TestAnswerFallsBackOnLowSimilarity(t *testing.T) {
	// Nearly orthogonal to the query vector, well under the threshold.
	offTopic := []vector.Vector{
		{ID: "c0", Values: []float32{0.1, 0.99}, Metadata: vector.Metadata{
			Text: longText("unrelated material"), Filename: "other.pdf", PageNumber: 1, ChunkIndex: 0}},
	}
	completer := &fakeCompleter{responses: []string{
		"This information is not available in the uploaded document. Generally speaking, chlorophyll absorbs light.",
	}}
	svc := newTestQA(t, completer, offTopic)

	result, err := svc.Answer(context.Background(), "doc-1", "What does chlorophyll do?")
	require.NoError(t, err)

	assert.False(t, result.FromDocument)
	assert.Empty(t, result.Sources)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "NOT available in the uploaded document")
}

func TestAnswerFallsBackWhenModelDeclaresNoInfo(t *testing.T) {
	completer := &fakeCompleter{responses: []string{
		"The context does not contain information about this topic.",
		"This is not covered by the document, but in general terms the answer is photosynthesis.",
	}}
	svc := newTestQA(t, completer, relevantVectors())

	result, err := svc.Answer(context.Background(), "doc-1", "What powers plant growth?")
	require.NoError(t, err)

	assert.False(t, result.FromDocument)
	assert.Empty(t, result.Sources)
	require.Len(t, completer.prompts, 2)
}

func TestBuildSourcesTruncatesAndCaps(t *testing.T) {
	vectors := []vector.Vector{
		{ID: "c0", Values: []float32{1, 0}, Metadata: vector.Metadata{
			Text: strings.Repeat("w", 400), Filename: "a.pdf", PageNumber: 1, ChunkIndex: 0}},
		{ID: "c1", Values: []float32{0.99, 0.01}, Metadata: vector.Metadata{
			Text: longText("two"), Filename: "a.pdf", PageNumber: 2, ChunkIndex: 1}},
		{ID: "c2", Values: []float32{0.98, 0.02}, Metadata: vector.Metadata{
			Text: longText("three"), Filename: "a.pdf", PageNumber: 3, ChunkIndex: 2}},
		{ID: "c3", Values: []float32{0.97, 0.03}, Metadata: vector.Metadata{
			Text: longText("four"), Filename: "a.pdf", PageNumber: 4, ChunkIndex: 3}},
	}
	completer := &fakeCompleter{responses: []string{"An answer grounded in the text."}}
	svc := newTestQA(t, completer, vectors)

	result, err := svc.Answer(context.Background(), "doc-1", "What is in the document?")
	require.NoError(t, err)

	require.Len(t, result.Sources, 3)
	assert.Len(t, result.Sources[0].Text, 303)
	assert.True(t, strings.HasSuffix(result.Sources[0].Text, "..."))
}

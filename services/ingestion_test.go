package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/vector"
	"rag-edu-backend/models"
	"rag-edu-backend/utils"
)

func newTestIngestion(store vector.Store, embedder *fakeEmbedder) *IngestionService {
	cfg := &config.Config{
		ChunkSize:         1024,
		ChunkOverlap:      200,
		MinChunkChars:     50,
		MaxPagesTotal:     300,
		EmbedBatchSize:    2,
		UpstreamTimeoutMS: 30000,
	}
	return NewIngestionService(cfg, NewPDFExtractor(), NewHybridChunker(cfg), embedder, store)
}

// fakeExtractor serves scripted pages per filename.
type fakeExtractor struct {
	pages map[string][]PageText
}

func (f *fakeExtractor) ExtractPages(_ []byte, filename string) ([]PageText, error) {
	pages, ok := f.pages[filename]
	if !ok {
		return nil, utils.BadInput("file %q is not a readable PDF", filename)
	}
	return pages, nil
}

// flakyStore wraps the in-memory store with injectable failures and
// records namespace deletions.
type flakyStore struct {
	*vector.MemoryStore
	upsertErr error
	queryErr  error
	statsErr  error
	deleted   []string
}

func (s *flakyStore) Upsert(ctx context.Context, namespace string, vectors []vector.Vector) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.MemoryStore.Upsert(ctx, namespace, vectors)
}

func (s *flakyStore) Query(ctx context.Context, namespace string, values []float32, topK int) ([]vector.Match, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.MemoryStore.Query(ctx, namespace, values, topK)
}

func (s *flakyStore) Stats(ctx context.Context) ([]vector.NamespaceStat, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	return s.MemoryStore.Stats(ctx)
}

func (s *flakyStore) DeleteNamespace(ctx context.Context, namespace string) error {
	s.deleted = append(s.deleted, namespace)
	return s.MemoryStore.DeleteNamespace(ctx, namespace)
}

func newFakeIngestion(extractor PageExtractor, store vector.Store) *IngestionService {
	cfg := &config.Config{
		ChunkSize:         1024,
		ChunkOverlap:      200,
		MinChunkChars:     50,
		MaxPagesTotal:     300,
		EmbedBatchSize:    2,
		UpstreamTimeoutMS: 30000,
	}
	return NewIngestionService(cfg, extractor, NewHybridChunker(cfg), newFakeEmbedder([]float32{1, 0}), store)
}

func pageOfText(n int) PageText {
	return PageText{PageNumber: n, Text: "Plenty of meaningful sentence content on this page to index."}
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	svc := newTestIngestion(vector.NewMemoryStore(), newFakeEmbedder([]float32{1, 0}))

	_, err := svc.Ingest(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, utils.KindBadInput, utils.KindOf(err))
}

func TestEmbedChunksPreservesOrderAcrossBatches(t *testing.T) {
	embedder := newFakeEmbedder([]float32{0, 0})
	chunks := make([]models.Chunk, 5)
	for i := range chunks {
		text := fmt.Sprintf("chunk number %d content", i)
		chunks[i] = models.Chunk{
			ChunkID:    fmt.Sprintf("id-%d", i),
			Text:       text,
			Filename:   "doc.pdf",
			PageNumber: i + 1,
			ChunkIndex: i,
		}
		embedder.vectors[text] = []float32{float32(i), 1}
	}

	svc := newTestIngestion(vector.NewMemoryStore(), embedder)
	vectors, err := svc.embedChunks(context.Background(), chunks)
	require.NoError(t, err)
	require.Len(t, vectors, 5)

	// Batch size 2 over 5 chunks means 3 upstream calls.
	assert.Equal(t, 3, embedder.batchCalls)

	for i, v := range vectors {
		assert.Equal(t, fmt.Sprintf("id-%d", i), v.ID)
		assert.Equal(t, []float32{float32(i), 1}, v.Values)
		assert.Equal(t, chunks[i].Text, v.Metadata.Text)
		assert.Equal(t, i, v.Metadata.ChunkIndex)
		assert.Equal(t, i+1, v.Metadata.PageNumber)
	}
}

func TestListDocuments(t *testing.T) {
	store := vector.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "doc-b", []vector.Vector{
		{ID: "b1", Values: []float32{1, 0}, Metadata: vector.Metadata{Filename: "second.pdf", ChunkIndex: 0}},
		{ID: "b2", Values: []float32{0, 1}, Metadata: vector.Metadata{Filename: "second.pdf", ChunkIndex: 1}},
	}))
	require.NoError(t, store.Upsert(ctx, "doc-a", []vector.Vector{
		{ID: "a1", Values: []float32{1, 0}, Metadata: vector.Metadata{Filename: "first.pdf", ChunkIndex: 0}},
	}))

	svc := newTestIngestion(store, newFakeEmbedder([]float32{1, 0}))
	docs, err := svc.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "doc-a", docs[0].DocumentID)
	assert.Equal(t, "first.pdf", docs[0].Filename)
	assert.Equal(t, 1, docs[0].VectorCount)
	assert.Equal(t, "doc-b", docs[1].DocumentID)
	assert.Equal(t, "second.pdf", docs[1].Filename)
	assert.Equal(t, 2, docs[1].VectorCount)
}

func TestIngestRejectsPageCapOverflow(t *testing.T) {
	pages := make([]PageText, 301)
	for i := range pages {
		pages[i] = pageOfText(i + 1)
	}
	extractor := &fakeExtractor{pages: map[string][]PageText{"big.pdf": pages}}
	svc := newFakeIngestion(extractor, vector.NewMemoryStore())

	_, err := svc.Ingest(context.Background(), []UploadedFile{{Filename: "big.pdf"}})
	require.Error(t, err)
	assert.Equal(t, utils.KindBadInput, utils.KindOf(err))
	assert.Contains(t, err.Error(), "page limit")
}

func TestIngestRejectsTooLittleText(t *testing.T) {
	extractor := &fakeExtractor{pages: map[string][]PageText{
		"thin.pdf": {{PageNumber: 1, Text: "tiny"}},
	}}
	svc := newFakeIngestion(extractor, vector.NewMemoryStore())

	_, err := svc.Ingest(context.Background(), []UploadedFile{{Filename: "thin.pdf"}})
	require.Error(t, err)
	assert.Equal(t, utils.KindBadInput, utils.KindOf(err))
	assert.Contains(t, err.Error(), "no extractable text")
}

func TestIngestUpsertFailureCleansNamespace(t *testing.T) {
	store := &flakyStore{
		MemoryStore: vector.NewMemoryStore(),
		upsertErr:   errors.New("connection reset"),
	}
	extractor := &fakeExtractor{pages: map[string][]PageText{
		"doc.pdf": {pageOfText(1), pageOfText(2)},
	}}
	svc := newFakeIngestion(extractor, store)

	_, err := svc.Ingest(context.Background(), []UploadedFile{{Filename: "doc.pdf"}})
	require.Error(t, err)
	assert.Equal(t, utils.KindUpstream, utils.KindOf(err))

	// The half-written namespace must be gone.
	require.Len(t, store.deleted, 1)
	stats, statsErr := store.Stats(context.Background())
	require.NoError(t, statsErr)
	assert.Empty(t, stats)
}

func TestIngestStoreTimeoutMapsToUpstreamTimeout(t *testing.T) {
	store := &flakyStore{
		MemoryStore: vector.NewMemoryStore(),
		upsertErr:   context.DeadlineExceeded,
	}
	extractor := &fakeExtractor{pages: map[string][]PageText{
		"doc.pdf": {pageOfText(1)},
	}}
	svc := newFakeIngestion(extractor, store)

	_, err := svc.Ingest(context.Background(), []UploadedFile{{Filename: "doc.pdf"}})
	require.Error(t, err)
	assert.Equal(t, utils.KindUpstreamTimeout, utils.KindOf(err))
}

func TestListDocumentsStoreFailureIsUpstream(t *testing.T) {
	store := &flakyStore{
		MemoryStore: vector.NewMemoryStore(),
		statsErr:    errors.New("connection refused"),
	}
	svc := newFakeIngestion(&fakeExtractor{}, store)

	_, err := svc.ListDocuments(context.Background())
	require.Error(t, err)
	assert.Equal(t, utils.KindUpstream, utils.KindOf(err))
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rag-edu-backend/internal/ai"
	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/internal/vector"
	"rag-edu-backend/models"
	"rag-edu-backend/utils"
)

// UploadedFile is one file of a multipart upload, already read into
// memory.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// PageExtractor turns raw file bytes into per-page text.
type PageExtractor interface {
	ExtractPages(content []byte, filename string) ([]PageText, error)
}

// IngestionService turns uploaded PDFs into an indexed document: one
// vector-store namespace per document, keyed by a fresh document ID.
type IngestionService struct {
	cfg       *config.Config
	extractor PageExtractor
	chunker   *HybridChunker
	embedder  ai.Embedder
	store     vector.Store
}

func NewIngestionService(cfg *config.Config, extractor PageExtractor, chunker *HybridChunker, embedder ai.Embedder, store vector.Store) *IngestionService {
	return &IngestionService{
		cfg:       cfg,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
	}
}

// Ingest extracts, chunks, embeds and indexes the uploaded files as a
// single document. Indexing is all-or-nothing: any failure after the
// first write removes the namespace so no half-indexed document is
// left behind.
func (s *IngestionService) Ingest(ctx context.Context, files []UploadedFile) (*models.IngestResult, error) {
	if len(files) == 0 {
		return nil, utils.BadInput("no files provided")
	}

	var (
		pages      []PageSource
		fileInfos  []models.FileInfo
		totalPages int
		totalChars int
		offset     int
	)
	for i, file := range files {
		extracted, err := s.extractor.ExtractPages(file.Content, file.Filename)
		if err != nil {
			return nil, err
		}

		totalPages += len(extracted)
		if totalPages > s.cfg.MaxPagesTotal {
			return nil, utils.BadInput("upload exceeds the %d page limit", s.cfg.MaxPagesTotal)
		}

		if i > 0 {
			offset += len(fileSeparator(file.Filename))
		}
		for _, p := range extracted {
			pages = append(pages, PageSource{
				Filename:   file.Filename,
				PageNumber: p.PageNumber,
				Text:       p.Text,
				Offset:     offset,
			})
			offset += len(p.Text)
			totalChars += NonWhitespaceLen(p.Text)
		}
		fileInfos = append(fileInfos, models.FileInfo{Filename: file.Filename, Pages: len(extracted)})
	}

	if totalChars < 10 {
		return nil, utils.BadInput("uploaded files contain no extractable text")
	}

	documentID := uuid.NewString()
	chunks := s.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return nil, utils.BadInput("uploaded files contain no extractable text")
	}

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	uctx, cancel := storeCallTimeout(ctx, s.cfg)
	err = s.store.Upsert(uctx, documentID, vectors)
	cancel()
	if err != nil {
		s.cleanupNamespace(documentID)
		return nil, translateStoreErr(err, "failed to index document")
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}

	logger.Info("Document ingested",
		"document_id", documentID, "files", len(files),
		"pages", totalPages, "chunks", len(chunks))

	return &models.IngestResult{
		DocumentID:    documentID,
		Filename:      strings.Join(names, ", "),
		Files:         fileInfos,
		PageCount:     totalPages,
		ChunksCreated: len(chunks),
	}, nil
}

// embedChunks embeds chunk texts in bounded batches. Batches run
// through an errgroup with a single worker so upstream rate limits see
// one outstanding request at a time; order is preserved by writing
// each batch into its own slice region.
func (s *IngestionService) embedChunks(ctx context.Context, chunks []models.Chunk) ([]vector.Vector, error) {
	embeddings := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(1)

	batchSize := s.cfg.EmbedBatchSize
	for start := 0; start < len(chunks); start += batchSize {
		start := start
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Text
			}
			vecs, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return err
			}
			copy(embeddings[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vectors := make([]vector.Vector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = vector.Vector{
			ID:     chunk.ChunkID,
			Values: embeddings[i],
			Metadata: vector.Metadata{
				Text:       chunk.Text,
				Filename:   chunk.Filename,
				PageNumber: chunk.PageNumber,
				ChunkIndex: chunk.ChunkIndex,
				CharStart:  chunk.CharStart,
				CharEnd:    chunk.CharEnd,
			},
		}
	}
	return vectors, nil
}

// cleanupNamespace best-effort deletes a namespace after a failed
// ingest. Runs on a fresh context so cancellation of the request does
// not leave partial data behind.
func (s *IngestionService) cleanupNamespace(namespace string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.DeleteNamespace(ctx, namespace); err != nil {
		logger.Error("Failed to clean up partial namespace", "namespace", namespace, "error", err)
	}
}

// ListDocuments returns every indexed document with its vector count.
// The display filename is recovered from stored chunk metadata.
func (s *IngestionService) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	sctx, cancel := storeCallTimeout(ctx, s.cfg)
	stats, err := s.store.Stats(sctx)
	cancel()
	if err != nil {
		return nil, translateStoreErr(err, "failed to list documents")
	}

	docs := make([]models.DocumentInfo, 0, len(stats))
	for _, st := range stats {
		info := models.DocumentInfo{DocumentID: st.Namespace, VectorCount: st.VectorCount}
		fctx, fcancel := storeCallTimeout(ctx, s.cfg)
		if v, err := s.store.FetchOne(fctx, st.Namespace); err == nil {
			info.Filename = v.Metadata.Filename
		}
		fcancel()
		docs = append(docs, info)
	}
	return docs, nil
}

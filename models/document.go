package models

// Chunk is a bounded contiguous span of document text with provenance
// metadata. Chunks are the unit persisted in the vector index; a chunk
// with no non-whitespace text must never be stored.
type Chunk struct {
	ChunkID    string    `json:"chunk_id"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Filename   string    `json:"filename"`
	PageNumber int       `json:"page_number"` // 1-based
	ChunkIndex int       `json:"chunk_index"` // 0-based across the document
	CharStart  int       `json:"char_start,omitempty"`
	CharEnd    int       `json:"char_end,omitempty"`
}

// RetrievedChunk is a chunk returned by similarity search.
type RetrievedChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}

// Source is the truncated view of a retrieved chunk returned with a
// grounded answer.
type Source struct {
	Text       string  `json:"text"`
	PageNumber int     `json:"page_number"`
	Filename   string  `json:"filename,omitempty"`
	Similarity float64 `json:"similarity"`
}

// FileInfo records per-file page counts in an upload.
type FileInfo struct {
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
}

// IngestResult describes a freshly indexed document.
type IngestResult struct {
	DocumentID    string     `json:"document_id"`
	Filename      string     `json:"filename"`
	Files         []FileInfo `json:"files"`
	PageCount     int        `json:"page_count"`
	ChunksCreated int        `json:"chunks_created"`
}

// DocumentInfo summarizes an indexed document namespace.
type DocumentInfo struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	VectorCount int    `json:"vector_count"`
}

// ChatResult is the outcome of a grounded (or fallback) answer.
type ChatResult struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	FromDocument bool     `json:"from_document"`
	Filename     string   `json:"filename,omitempty"`
}

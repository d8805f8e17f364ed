package vector

import (
	"context"
	"errors"
	"math"
)

// ErrNamespaceNotFound is returned when an operation targets a
// namespace with no stored vectors.
var ErrNamespaceNotFound = errors.New("namespace not found")

// Metadata is the provenance carried with every stored vector.
type Metadata struct {
	Text       string `json:"text"`
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
	ChunkIndex int    `json:"chunk_index"`
	CharStart  int    `json:"char_start"`
	CharEnd    int    `json:"char_end"`
}

// Vector is one embedded chunk keyed by ID within a namespace.
type Vector struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is a query hit with its cosine similarity score.
type Match struct {
	Vector
	Score float64 `json:"score"`
}

// NamespaceStat reports the vector count of one namespace.
type NamespaceStat struct {
	Namespace   string `json:"namespace"`
	VectorCount int    `json:"vector_count"`
}

// Store is a namespaced vector index. One namespace holds one
// document's chunks.
type Store interface {
	// Upsert writes vectors into a namespace, creating it if needed.
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	// Query returns the topK most similar vectors in descending score
	// order. Returns ErrNamespaceNotFound for unknown namespaces.
	Query(ctx context.Context, namespace string, values []float32, topK int) ([]Match, error)
	// FetchOne returns any single vector from the namespace, used to
	// recover document metadata. Returns ErrNamespaceNotFound when empty.
	FetchOne(ctx context.Context, namespace string) (*Vector, error)
	// Stats lists all namespaces with their vector counts.
	Stats(ctx context.Context) ([]NamespaceStat, error)
	// DeleteNamespace removes a namespace and all its vectors. Deleting
	// an unknown namespace is not an error.
	DeleteNamespace(ctx context.Context, namespace string) error
}

// CosineSimilarity computes the cosine of the angle between two
// vectors. Zero-magnitude or mismatched inputs score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

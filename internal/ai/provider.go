package ai

import "context"

// Embedder produces dense vectors for text. Implementations must return
// one vector per input, in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Completer runs a single-turn text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

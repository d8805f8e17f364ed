package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/utils"
)

// GeminiClient wraps the Google Generative AI SDK behind a circuit
// breaker and a client-side rate limiter. One client backs both the
// completion model and the embedding model.
type GeminiClient struct {
	client      *genai.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter

	completionModel string
	embeddingModel  string
	timeout         time.Duration
	batchSize       int
}

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), max(limits.RPM/10, 1))

	return &GeminiClient{
		client:          client,
		breaker:         breaker,
		rateLimiter:     rateLimiter,
		completionModel: cfg.GeminiModel,
		embeddingModel:  cfg.EmbeddingsModel,
		timeout:         time.Duration(cfg.UpstreamTimeoutMS) * time.Millisecond,
		batchSize:       cfg.EmbedBatchSize,
	}, nil
}

func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}

// Complete runs a single-turn completion. Transient upstream failures
// are retried once with a short backoff; the context deadline bounds
// the whole call.
func (gc *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()

	span.SetAttributes(
		attribute.Int("gemini.estimated_tokens", estimateTokens(prompt)),
		attribute.String("gemini.model", gc.completionModel),
	)

	ctx, cancel := context.WithTimeout(ctx, gc.timeout)
	defer cancel()

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", utils.Wrap(utils.KindUpstream, err, "completion rate limit wait failed")
	}

	text, err := gc.completeOnce(ctx, prompt)
	if err != nil && retryable(err) && ctx.Err() == nil {
		logger.Warn("Completion failed, retrying once", "error", err)
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return "", translateUpstream(ctx.Err())
		}
		text, err = gc.completeOnce(ctx, prompt)
	}
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", translateUpstream(err)
	}

	span.SetAttributes(attribute.Bool("gemini.success", true))
	return text, nil
}

func (gc *GeminiClient) completeOnce(ctx context.Context, prompt string) (string, error) {
	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.completionModel)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(4096)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	resp := result.(*genai.GenerateContentResponse)
	text := responseText(resp)
	if text == "" {
		return "", errors.New("empty completion from model")
	}
	return text, nil
}

// EmbedQuery embeds a single text with the query task type.
func (gc *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_query")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, gc.timeout)
	defer cancel()

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, utils.Wrap(utils.KindUpstream, err, "embedding rate limit wait failed")
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embeddingModel)
		model.TaskType = genai.TaskTypeRetrievalQuery
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, errors.New("no embedding returned")
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, translateUpstream(err)
	}
	return result.([]float32), nil
}

// EmbedBatch embeds texts in API batches of at most batchSize,
// preserving input order. Any sub-batch failure fails the whole call.
func (gc *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_batch")
	defer span.End()
	span.SetAttributes(attribute.Int("gemini.batch_inputs", len(texts)))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += gc.batchSize {
		end := min(start+gc.batchSize, len(texts))

		ctxBatch, cancel := context.WithTimeout(ctx, gc.timeout)
		vecs, err := gc.embedBatchOnce(ctxBatch, texts[start:end])
		cancel()
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, translateUpstream(err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (gc *GeminiClient) embedBatchOnce(ctx context.Context, texts []string) ([][]float32, error) {
	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return nil, utils.Wrap(utils.KindUpstream, err, "embedding rate limit wait failed")
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embeddingModel)
		model.TaskType = genai.TaskTypeRetrievalDocument

		batch := model.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		resp, err := model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: got %d for %d inputs", len(resp.Embeddings), len(texts))
		}
		vecs := make([][]float32, len(resp.Embeddings))
		for i, e := range resp.Embeddings {
			if e == nil || len(e.Values) == 0 {
				return nil, fmt.Errorf("empty embedding at index %d", i)
			}
			vecs[i] = e.Values
		}
		return vecs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([][]float32), nil
}

func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	return true
}

func translateUpstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return utils.Wrap(utils.KindUpstreamTimeout, err, "model call timed out")
	}
	var appErr *utils.Error
	if errors.As(err, &appErr) {
		return err
	}
	return utils.Wrap(utils.KindUpstream, err, "model call failed")
}

func responseText(resp *genai.GenerateContentResponse) string {
	total := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					total += string(text)
				}
			}
		}
	}
	return total
}

// Rough estimation: 1 token ≈ 4 characters.
func estimateTokens(text string) int {
	return len(text) / 4
}

package services

import (
	"context"
	"fmt"
	"strings"
)

// fakeEmbedder returns canned vectors keyed by exact text, with a
// default for anything unknown.
type fakeEmbedder struct {
	vectors    map[string][]float32
	defaultVec []float32
	queryCalls int
	batchCalls int
}

func newFakeEmbedder(defaultVec []float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: map[string][]float32{}, defaultVec: defaultVec}
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vecFor(t)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.queryCalls++
	return f.vecFor(text), nil
}

func (f *fakeEmbedder) vecFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return f.defaultVec
}

// fakeCompleter plays back a scripted sequence of responses and
// records the prompts it saw.
type fakeCompleter struct {
	responses []string
	prompts   []string
	err       error
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", fmt.Errorf("fakeCompleter: no scripted response for prompt %q", truncatePrompt(prompt))
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func truncatePrompt(p string) string {
	p = strings.ReplaceAll(p, "\n", " ")
	if len(p) > 60 {
		return p[:60] + "..."
	}
	return p
}

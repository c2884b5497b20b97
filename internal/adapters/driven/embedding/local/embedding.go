// Package local provides a deterministic, dependency-free embedding
// service. Tokens are hashed into a fixed-dimension bag-of-words
// vector, which gives stable lexical-overlap similarity without any
// network call. Used when no embedding API key is configured and in
// tests.
package local

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/pavilion-labs/clubby/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Dimensions is the fixed vector size of the local embedder.
const Dimensions = 256

// EmbeddingService embeds text by hashing lowercase tokens into
// vector buckets.
type EmbeddingService struct{}

// NewEmbeddingService creates a local embedding service.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{}
}

// Embed generates a deterministic embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, Dimensions)
	for _, token := range tokenise(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%Dimensions]++
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions returns the fixed vector size.
func (s *EmbeddingService) Dimensions() int {
	return Dimensions
}

// ModelName returns the local model identifier.
func (s *EmbeddingService) ModelName() string {
	return "local-hash-256"
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenise lowercases and splits text on non-alphanumeric runes.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

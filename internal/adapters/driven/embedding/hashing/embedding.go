// Package hashing provides a local, deterministic embedder based on
// character trigram feature hashing. It needs no model files or network
// access, produces the same vector for the same text on every run, and
// places texts sharing surface features ("ships", "shipping") close
// together. It is the default embedder and the one used in tests.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Ensure Embedder implements the interface.
var _ driven.Embedder = (*Embedder)(nil)

// Default configuration values.
const (
	DefaultDimensions = 384
	modelName         = "hashing-trigram"
	gramSize          = 3
)

// Config holds configuration for the hashing embedder.
type Config struct {
	// Dimensions is the embedding vector size (default: 384).
	Dimensions int
}

// Embedder hashes lowercase character trigrams into a fixed-width
// vector with FNV-1a and L2-normalises the result.
type Embedder struct {
	dimensions int
	ready      bool
}

// New creates a hashing embedder. Call EnsureReady before embedding.
func New(cfg Config) *Embedder {
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: cfg.Dimensions}
}

// EnsureReady marks the embedder usable. There is nothing to load for
// the hashing scheme, but the two-phase contract is kept so callers
// treat every embedder uniformly. Idempotent.
func (e *Embedder) EnsureReady(_ context.Context) error {
	e.ready = true
	return nil
}

// Embed returns one L2-normalised vector per input text. Never fails:
// a text with no extractable trigrams yields the zero vector.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.EnsureReady(ctx); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelName returns the identifier of the hashing scheme.
func (e *Embedder) ModelName() string {
	return modelName
}

func (e *Embedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimensions)
	for _, token := range tokenize(text) {
		for _, gram := range trigrams(token) {
			h := fnv.New32a()
			h.Write([]byte(gram))
			vec[int(h.Sum32())%e.dimensions]++
		}
	}
	normalize(vec)
	return vec
}

// tokenize lowercases and splits on anything that is not a letter or
// digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// trigrams returns the character trigrams of a token, padded with
// boundary markers so short tokens still produce features.
func trigrams(token string) []string {
	padded := "^" + token + "$"
	runes := []rune(padded)
	if len(runes) < gramSize {
		return []string{padded}
	}
	grams := make([]string, 0, len(runes)-gramSize+1)
	for i := 0; i+gramSize <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+gramSize]))
	}
	return grams
}

// normalize scales the vector to unit L2 length in place. The zero
// vector is left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}

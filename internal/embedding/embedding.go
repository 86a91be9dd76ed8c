// Package embedding turns text into fixed-size vectors for the record index.
package embedding

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

const (
	DefaultModel     = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultDimension = 384
)

var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Embedder is implemented by the local hash generator and by Remote.
type Embedder interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// Generator is a deterministic bag-of-words hasher. Each whitespace token
// lands in a bucket chosen by its blake2b-64 hash; earlier tokens weigh
// more (1/(i+1)). The result is L2 normalized.
type Generator struct {
	model string
	dim   int
}

func NewGenerator(model string, dim int) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Generator{model: model, dim: dim}
}

func (g *Generator) Dimension() int { return g.dim }
func (g *Generator) Model() string  { return g.model }

// Vector is Generate without a context. Empty text gives the zero vector.
func (g *Generator) Vector(text string) []float32 {
	v := make([]float32, g.dim)
	for i, tok := range strings.Fields(text) {
		v[bucket(tok, g.dim)] += 1 / float32(i+1)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if norm := float32(math.Sqrt(sum)); norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

func (g *Generator) Generate(_ context.Context, text string) ([]float32, error) {
	return g.Vector(text), nil
}

func (g *Generator) GenerateBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = g.Vector(t)
	}
	return out, nil
}

func bucket(token string, dim int) int {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(token))
	return int(binary.LittleEndian.Uint64(h.Sum(nil)) % uint64(dim))
}

// Preprocess normalizes text before embedding.
func Preprocess(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb))), nil
}

func EuclideanDistance(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

func DotProduct(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot), nil
}

var _ Embedder = (*Generator)(nil)

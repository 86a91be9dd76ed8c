package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func TestGeneratorDeterministic(t *testing.T) {
	g := NewGenerator("", 0)
	assert.Equal(t, DefaultModel, g.Model())
	require.Equal(t, DefaultDimension, g.Dimension())

	a := g.Vector("frete para Franca")
	b := g.Vector("frete para Franca")
	require.Len(t, a, 384)
	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, norm(a), 1e-5)

	c := g.Vector("Franca para frete")
	assert.NotEqual(t, a, c, "a ordem das palavras muda os pesos")
}

func TestGeneratorEmptyInput(t *testing.T) {
	g := NewGenerator("", 16)
	v, err := g.Generate(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 16), v)
}

func TestGenerateBatchKeepsOrder(t *testing.T) {
	g := NewGenerator("", 32)
	texts := []string{"um", "dois", "", "um"}
	vs, err := g.GenerateBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vs, 4)
	for i, txt := range texts {
		assert.Equal(t, g.Vector(txt), vs[i])
	}
}

func TestCosineSimilarity(t *testing.T) {
	g := NewGenerator("", 64)
	v := g.Vector("ordem de frete 288415")

	s, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-5)

	s, err = CosineSimilarity(v, make([]float32, 64))
	require.NoError(t, err)
	assert.Zero(t, s)

	s, err = CosineSimilarity([]float32{1, 0}, []float32{-1, 0})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, s, 1e-6)

	_, err = CosineSimilarity([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDistanceAndDot(t *testing.T) {
	d, err := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, d, 1e-6)

	p, err := DotProduct([]float32{1, 2, 3}, []float32{4, 5, 6})
	require.NoError(t, err)
	assert.InDelta(t, 32.0, p, 1e-6)

	_, err = DotProduct([]float32{1}, nil)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestPreprocess(t *testing.T) {
	assert.Equal(t, "ávila transportes", Preprocess("  Ávila Transportes \n"))
}

// fakeClient cumpre embeddings.EmbedderClient sem rede.
type fakeClient struct {
	dim   int
	calls int
}

func (f *fakeClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
		out[i][0] = float32(len(texts[i]))
	}
	return out, nil
}

func TestRemote(t *testing.T) {
	fc := &fakeClient{dim: 8}
	r, err := newRemote(fc, "nomic-embed-text", 8)
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", r.Model())

	v, err := r.Generate(context.Background(), "abc")
	require.NoError(t, err)
	require.Len(t, v, 8)
	assert.Equal(t, float32(3), v[0])

	wrong, err := newRemote(&fakeClient{dim: 4}, "m", 8)
	require.NoError(t, err)
	_, err = wrong.GenerateBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

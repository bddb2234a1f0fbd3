package indexing

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimension is the HashEmbedder vector size when none is given.
const DefaultDimension = 256

// HashEmbedder maps text to a fixed-size vector by feature hashing of
// lowercased word unigrams and bigrams. Output is L2-normalized and
// depends only on the input text, so it needs no external service.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a HashEmbedder. dimension <= 0 uses DefaultDimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &HashEmbedder{dimension: dimension}
}

func (e *HashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.vector(text), nil
}

func (e *HashEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *HashEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	return e.Embed(ctx, query)
}

func (e *HashEmbedder) EmbedDocument(ctx context.Context, doc string) ([]float64, error) {
	return e.Embed(ctx, doc)
}

func (e *HashEmbedder) Dimension() int { return e.dimension }

func (e *HashEmbedder) Initialize(context.Context) error { return nil }

func (e *HashEmbedder) ValidateCredentials(context.Context) error { return nil }

func (e *HashEmbedder) vector(text string) []float64 {
	v := make([]float64, e.dimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' && r != '/'
	})
	for i, w := range words {
		e.add(v, w, 1.0)
		if i > 0 {
			e.add(v, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
	return v
}

func (e *HashEmbedder) add(v []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(e.dimension))
	if h&(1<<63) != 0 {
		weight = -weight
	}
	v[idx] += weight
}

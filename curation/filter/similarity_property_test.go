package filter

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Similarity 的对称性、取值范围与自反性
func TestProperty_SimilarityBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("similarity is symmetric", prop.ForAll(
		func(a, b string) bool {
			return Similarity(a, b) == Similarity(b, a)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("similarity stays within [0, 1]", prop.ForAll(
		func(a, b string) bool {
			s := Similarity(a, b)
			return s >= 0 && s <= 1
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("a string is fully similar to itself in any case", prop.ForAll(
		func(a string) bool {
			return Similarity(a, strings.ToUpper(a)) == 1.0
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// 哈希只取决于规范化后的文本
func TestProperty_ContentHashNormalization(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("case and surrounding whitespace do not change the hash", prop.ForAll(
		func(words []string) bool {
			text := strings.Join(words, " ")
			noisy := "  " + strings.ToUpper(strings.Join(words, "\n\t ")) + " "
			return ContentHash(text, 0) == ContentHash(noisy, 0)
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

package embeddings

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalDim is the vector dimension of the in-process embedder.
const LocalDim = 384

// LocalProvider is an in-process fallback embedder. It hashes tokens into a
// fixed-dimension bag-of-words vector and L2-normalizes it. No network, no
// model download, deterministic across runs. Quality is far below a real
// embedding model; it exists so vector search keeps working when no backend
// is reachable.
type LocalProvider struct {
	model string
	dim   int
}

// NewLocalProvider creates the in-process embedder. The model name is kept
// for reporting only; the output does not depend on it.
func NewLocalProvider(model string) *LocalProvider {
	return &LocalProvider{model: model, dim: LocalDim}
}

// Model returns the model name this provider reports.
func (p *LocalProvider) Model() string {
	return p.model
}

// Embed produces a deterministic token-hash embedding.
func (p *LocalProvider) Embed(text string) ([]float32, error) {
	vec := make([]float32, p.dim)

	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()

		bucket := int(sum % uint32(p.dim))
		// Half the tokens subtract instead of add so the vector is not
		// all-positive; keeps cosine distances meaningful.
		if sum&(1<<31) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// tokenize lowercases and splits on non-letter/digit runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

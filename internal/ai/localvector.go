package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// LocalVectorClient is a deterministic, dependency-free EmbeddingClient: it
// hashes each lowercase whitespace-separated token of the input text into a fixed-dimension
// vector and L2-normalizes the result. It is the fallback capability until
// a real embeddings provider is wired in; callers needing semantic quality
// should supply their own EmbeddingClient.
type LocalVectorClient struct {
	dims int
}

// NewLocalVectorClient returns a LocalVectorClient producing dims-wide
// vectors.
func NewLocalVectorClient(dims int) *LocalVectorClient {
	return &LocalVectorClient{dims: dims}
}

func (c *LocalVectorClient) Dimensions() int { return c.dims }

func (c *LocalVectorClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return hashEmbed(text, c.dims), nil
}

// hashEmbed folds sha256 hashes of each token into a dims-wide vector,
// then L2-normalizes it. Shared by LocalVectorClient and
// MockEmbeddingClient so mocked and local-fallback vectors behave
// identically in tests.
func hashEmbed(text string, dims int) []float32 {
	if dims <= 0 {
		dims = 1536
	}
	vec := make([]float32, dims)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		tokens = []string{""}
	}

	for _, tok := range tokens {
		sum := sha256.Sum256([]byte(tok))
		for i := 0; i < dims; i++ {
			byteIdx := i % len(sum)
			shift := uint((i / len(sum)) % 4 * 8)
			raw := binary.BigEndian.Uint32(padWindow(sum[:], byteIdx))
			vec[i] += float32(int8(raw>>shift)) / 127
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// padWindow returns a 4-byte window of b starting at offset, wrapping
// around if needed, for use as a little source of per-index entropy.
func padWindow(b []byte, offset int) []byte {
	window := make([]byte, 4)
	for i := 0; i < 4; i++ {
		window[i] = b[(offset+i)%len(b)]
	}
	return window
}

package compress

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/ggstd/compress/flate"
)

func TestEstimate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 64<<10)
	rng.Read(random)
	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 1000)

	if got := Estimate(random[:8]); got != 0 {
		t.Errorf("short input: got %v, want 0", got)
	}
	r, tx := Estimate(random), Estimate(text)
	if r > 0.1 {
		t.Errorf("random data estimated compressible: %v", r)
	}
	if tx < 0.3 {
		t.Errorf("repeated text estimated incompressible: %v", tx)
	}
}

func TestShannonEntropyBits(t *testing.T) {
	if got := ShannonEntropyBits(nil); got != 0 {
		t.Errorf("empty: got %d", got)
	}
	if got := ShannonEntropyBits(bytes.Repeat([]byte{'a'}, 100)); got != 0 {
		t.Errorf("single symbol: got %d, want 0", got)
	}
	// Two equally likely symbols need one bit each.
	if got := ShannonEntropyBits(bytes.Repeat([]byte("ab"), 50)); got != 100 {
		t.Errorf("two symbols: got %d, want 100", got)
	}
}

func TestSuggestLevel(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	random := make([]byte, 64<<10)
	rng.Read(random)
	if got := SuggestLevel(random); got != flate.NoCompression {
		t.Errorf("random: got %s", flate.LevelName(got))
	}
	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 1000)
	if got := SuggestLevel(text); got != flate.DefaultCompression {
		t.Errorf("text: got %s", flate.LevelName(got))
	}
	// 64 evenly used symbols with no context: some gain, little repetition.
	sparse := make([]byte, 64<<10)
	x := uint32(1)
	for i := range sparse {
		x = x*1103515245 + 12345
		sparse[i] = byte(x>>16) & 63
	}
	if got := SuggestLevel(sparse); got != flate.BestSpeed {
		t.Errorf("sparse: got %s, estimate %.3f", flate.LevelName(got), Estimate(sparse))
	}
	if got := SuggestLevel([]byte("tiny")); got != flate.DefaultCompression {
		t.Errorf("tiny: got %s", flate.LevelName(got))
	}
}

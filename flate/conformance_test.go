package flate_test

import (
	"bytes"
	stdflate "compress/flate"
	"fmt"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	kpflate "github.com/klauspost/compress/flate"

	"github.com/ggstd/compress/flate"
)

// digest summarizes a buffer so mismatches print compactly.
type digest struct {
	Len   int
	XXH64 uint64
}

func digestOf(b []byte) digest {
	return digest{Len: len(b), XXH64: xxhash.Sum64(b)}
}

func conformanceInputs(t testing.TB) map[string][]byte {
	rng := rand.New(rand.NewSource(42))
	random := make([]byte, 100<<10)
	rng.Read(random)

	skewed := make([]byte, 300<<10)
	for i := range skewed {
		skewed[i] = byte(rng.Int63() & 7)
	}

	inputs := map[string][]byte{
		"empty":  {},
		"byte":   {0x11},
		"short":  []byte("hello, hello, hello world"),
		"zeros":  make([]byte, 200<<10),
		"random": random,
		"skewed": skewed,
	}
	text, err := os.ReadFile("testdata/Isaac.Newton-Opticks.txt")
	if err != nil {
		t.Fatal(err)
	}
	if testing.Short() {
		text = text[:64<<10]
	}
	inputs["text"] = text
	return inputs
}

func compress(t testing.TB, level int, in []byte, chunk int) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		t.Fatal(err)
	}
	for len(in) > 0 {
		n := min(chunk, len(in))
		if _, err := w.Write(in[:n]); err != nil {
			t.Fatal(err)
		}
		in = in[n:]
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// TestConformanceStdlib checks that output is byte for byte the same
// as compress/flate at every level.
func TestConformanceStdlib(t *testing.T) {
	for name, in := range conformanceInputs(t) {
		for level := flate.HuffmanOnly; level <= flate.BestCompression; level++ {
			t.Run(fmt.Sprintf("%s/%s", name, flate.LevelName(level)), func(t *testing.T) {
				var want bytes.Buffer
				sw, err := stdflate.NewWriter(&want, level)
				if err != nil {
					t.Fatal(err)
				}
				sw.Write(in)
				sw.Close()

				got := compress(t, level, in, len(in)+1)
				if diff := cmp.Diff(digestOf(want.Bytes()), digestOf(got)); diff != "" {
					t.Errorf("output differs from compress/flate (-want +got):\n%s", diff)
				}
			})
		}
	}
}

// TestConformanceDecoders checks that independent decoders accept
// the output, and that this decoder accepts theirs.
func TestConformanceDecoders(t *testing.T) {
	type decoder struct {
		name string
		new  func(r io.Reader, dict []byte) io.ReadCloser
	}
	decoders := []decoder{
		{"stdlib", stdflate.NewReaderDict},
		{"klauspost", kpflate.NewReaderDict},
		{"self", flate.NewReaderDict},
	}
	dict := []byte("the quick brown fox jumps over the lazy dog and keeps on running")

	for name, in := range conformanceInputs(t) {
		for _, level := range []int{flate.HuffmanOnly, flate.NoCompression, flate.BestSpeed, 4, flate.DefaultCompression, flate.BestCompression} {
			for _, d := range [][]byte{nil, dict} {
				var buf bytes.Buffer
				w, err := flate.NewWriterDict(&buf, level, d)
				if err != nil {
					t.Fatal(err)
				}
				w.Write(in)
				w.Close()
				for _, dec := range decoders {
					got, err := io.ReadAll(dec.new(bytes.NewReader(buf.Bytes()), d))
					if err != nil {
						t.Errorf("%s/level %d/dict %t: %s: %v", name, level, d != nil, dec.name, err)
						continue
					}
					if diff := cmp.Diff(digestOf(in), digestOf(got)); diff != "" {
						t.Errorf("%s/level %d/dict %t: %s decoded (-want +got):\n%s", name, level, d != nil, dec.name, diff)
					}
				}
			}

			// Streams from another encoder decode here too.
			var other bytes.Buffer
			kw, err := kpflate.NewWriter(&other, level)
			if err != nil {
				t.Fatal(err)
			}
			kw.Write(in)
			kw.Close()
			got, err := io.ReadAll(flate.NewReader(&other))
			if err != nil {
				t.Errorf("%s/level %d: decoding klauspost stream: %v", name, level, err)
				continue
			}
			if diff := cmp.Diff(digestOf(in), digestOf(got)); diff != "" {
				t.Errorf("%s/level %d: klauspost stream (-want +got):\n%s", name, level, diff)
			}
		}
	}
}

// TestConformanceFlush checks that sync flush points match compress/flate.
func TestConformanceFlush(t *testing.T) {
	in := conformanceInputs(t)["text"]
	for _, level := range []int{flate.HuffmanOnly, flate.NoCompression, flate.BestSpeed, flate.DefaultCompression} {
		var want, got bytes.Buffer
		sw, _ := stdflate.NewWriter(&want, level)
		w, _ := flate.NewWriter(&got, level)
		for i := 0; i < len(in); i += 10000 {
			part := in[i:min(i+10000, len(in))]
			sw.Write(part)
			sw.Flush()
			w.Write(part)
			w.Flush()
		}
		sw.Close()
		w.Close()
		if diff := cmp.Diff(digestOf(want.Bytes()), digestOf(got.Bytes())); diff != "" {
			t.Errorf("level %d (-want +got):\n%s", level, diff)
		}
	}
}

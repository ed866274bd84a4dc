package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/cespare/xxhash/v2"

	"github.com/ggstd/compress/flate"
)

func testInput(t *testing.T) []byte {
	b, err := os.ReadFile("../../flate/testdata/Isaac.Newton-Opticks.txt")
	if err != nil {
		t.Fatal(err)
	}
	return b[:200<<10]
}

func TestCompressStream(t *testing.T) {
	input := testInput(t)
	dict := input[len(input)-1000:]
	for _, lvl := range []string{"huffman", "store", "fastest", "6", "best", "auto"} {
		for _, d := range [][]byte{nil, dict} {
			var comp bytes.Buffer
			res, err := compressStream(&comp, bytes.NewReader(input), lvl, d, true)
			if err != nil {
				t.Fatalf("%s: %v", lvl, err)
			}
			if res.in != int64(len(input)) || res.out != int64(comp.Len()) {
				t.Errorf("%s: counted %d -> %d, want %d -> %d", lvl, res.in, res.out, len(input), comp.Len())
			}
			if res.digest != xxhash.Sum64(input) {
				t.Errorf("%s: wrong digest", lvl)
			}
			if len(res.sample) != len(input) {
				t.Errorf("%s: sample is %d bytes, want %d", lvl, len(res.sample), len(input))
			}

			var plain bytes.Buffer
			dres, err := decompressStream(&plain, &comp, d)
			if err != nil {
				t.Fatalf("%s: %v", lvl, err)
			}
			if !bytes.Equal(plain.Bytes(), input) {
				t.Fatalf("%s: round trip mismatch", lvl)
			}
			if dres.digest != res.digest || dres.out != res.in || dres.in != res.out {
				t.Errorf("%s: decompress result %+v does not mirror %+v", lvl, dres, res)
			}
		}
	}
}

func TestCompressStreamAutoLevel(t *testing.T) {
	input := testInput(t)
	res, err := compressStream(io.Discard, bytes.NewReader(input), "auto", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.level != flate.DefaultCompression {
		t.Errorf("text: got level %d, want %d", res.level, flate.DefaultCompression)
	}
	if res.sample != nil {
		t.Error("sample kept without request")
	}
}

func TestCompressStreamInvalidLevel(t *testing.T) {
	_, err := compressStream(io.Discard, bytes.NewReader(nil), "turbo", nil, false)
	if !errors.Is(err, flate.ErrInvalidLevel) {
		t.Fatalf("got %v, want %v", err, flate.ErrInvalidLevel)
	}
}

func TestDecompressStreamCorrupt(t *testing.T) {
	_, err := decompressStream(io.Discard, bytes.NewReader([]byte{0x07}), nil)
	var cerr flate.CorruptInputError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want %T", err, cerr)
	}
}

func TestVerifyTo(t *testing.T) {
	input := testInput(t)
	var comp bytes.Buffer
	w, check := verifyTo(&comp, nil)
	res, err := compressStream(w, bytes.NewReader(input), "default", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	got, err := check()
	if err != nil {
		t.Fatal(err)
	}
	if got != res.digest {
		t.Fatalf("verified digest %016x, want %016x", got, res.digest)
	}
	if int64(comp.Len()) != res.out {
		t.Fatalf("wrote %d bytes, counted %d", comp.Len(), res.out)
	}
}

func TestOutputName(t *testing.T) {
	for _, tc := range []struct {
		in         string
		decompress bool
		want       string
	}{
		{"a.txt", false, "a.txt.deflate"},
		{"a.txt.deflate", true, "a.txt"},
		{"a.bin", true, "a.bin.out"},
		{"https://example.com/a/b.txt", false, "example.com_a_b.txt.deflate"},
	} {
		if got := outputName(tc.in, tc.decompress); got != tc.want {
			t.Errorf("outputName(%q, %t) = %q, want %q", tc.in, tc.decompress, got, tc.want)
		}
	}
}

func TestToSize(t *testing.T) {
	for in, want := range map[string]int{"92": 92, "64K": 64 << 10, "1m": 1 << 20, "4MiB": 4 << 20, "10b": 10} {
		got, err := toSize(in)
		if err != nil || got != want {
			t.Errorf("toSize(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "K", "10X"} {
		if _, err := toSize(in); err == nil {
			t.Errorf("toSize(%q): expected error", in)
		}
	}
}

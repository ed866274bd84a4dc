// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flate

import (
	"math/rand"
	"testing"
)

func TestFixedLiteralEncoding(t *testing.T) {
	// RFC 1951 section 3.2.6.
	for ch, want := range map[int]struct {
		code uint16
		len  uint16
	}{
		0:   {0x30, 8},
		143: {0xbf, 8},
		144: {0x190, 9},
		255: {0x1ff, 9},
		256: {0, 7},
		279: {0x17, 7},
		280: {0xc0, 8},
		285: {0xc5, 8},
	} {
		got := fixedLiteralEncoding.codes[ch]
		if got.len != want.len {
			t.Errorf("literal %d: got length %d, want %d", ch, got.len, want.len)
		}
		if c := reverseBits(got.code, byte(got.len)); c != want.code {
			t.Errorf("literal %d: got code %#x, want %#x", ch, c, want.code)
		}
	}
	for i, c := range fixedOffsetEncoding.codes {
		if c.len != 5 || reverseBits(c.code, 5) != uint16(i) {
			t.Errorf("offset %d: got %+v", i, c)
		}
	}
}

// kraft returns the Kraft sum of the code lengths scaled by 1<<maxBits.
func kraft(codes []hcode, maxBits int) (sum int, used int) {
	for _, c := range codes {
		if c.len == 0 {
			continue
		}
		used++
		sum += 1 << (maxBits - int(c.len))
	}
	return sum, used
}

func TestHuffmanGenerate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, tc := range []struct {
		symbols int
		maxBits int32
	}{
		{maxNumLit, 15},
		{offsetCodeCount, 15},
		{codegenCodeCount, 7},
	} {
		for iter := 0; iter < 50; iter++ {
			freq := make([]int32, tc.symbols)
			nonZero := 0
			for i := range freq {
				// Skewed distribution to force long codes.
				if rng.Intn(3) == 0 {
					continue
				}
				freq[i] = int32(1 + rng.Intn(1<<uint(rng.Intn(20))))
				nonZero++
			}
			enc := newHuffmanEncoder(tc.symbols)
			enc.generate(freq, tc.maxBits)

			for i, c := range enc.codes[:tc.symbols] {
				if (freq[i] == 0) != (c.len == 0) {
					t.Fatalf("symbol %d: freq %d, code length %d", i, freq[i], c.len)
				}
				if int32(c.len) > tc.maxBits {
					t.Fatalf("symbol %d: length %d exceeds %d", i, c.len, tc.maxBits)
				}
			}
			sum, used := kraft(enc.codes[:tc.symbols], int(tc.maxBits))
			if used != nonZero {
				t.Fatalf("got %d codes, want %d", used, nonZero)
			}
			// With more than two symbols the code must be complete.
			if nonZero > 2 && sum != 1<<tc.maxBits {
				t.Fatalf("incomplete or oversubscribed code: kraft %d, want %d", sum, 1<<tc.maxBits)
			}

			// bitLength is the weighted sum of the code lengths.
			want := 0
			for i, f := range freq {
				want += int(f) * int(enc.codes[i].len)
			}
			if got := enc.bitLength(freq); got != want {
				t.Fatalf("bitLength: got %d, want %d", got, want)
			}
		}
	}
}

func TestHuffmanGenerateFewSymbols(t *testing.T) {
	enc := newHuffmanEncoder(8)
	freq := []int32{0, 5, 0, 0, 9, 0, 0, 0}
	enc.generate(freq, 15)
	if enc.codes[1].len != 1 || enc.codes[4].len != 1 {
		t.Fatalf("got lengths %d and %d, want 1", enc.codes[1].len, enc.codes[4].len)
	}
	if enc.codes[1].code == enc.codes[4].code {
		t.Fatal("two symbols share a code")
	}
}

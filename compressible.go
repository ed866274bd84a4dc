// Package compress holds helpers shared by the codecs in this module.
// The codec itself lives in the flate package.
package compress

import (
	"math"

	"github.com/ggstd/compress/flate"
)

// Estimate returns a normalized compressibility estimate of block b.
// Values close to zero are likely uncompressible.
// Values above 0.1 are likely to be compressible.
// Values above 0.5 are very compressible.
// Very small lengths will return 0.
func Estimate(b []byte) float64 {
	if len(b) < 16 {
		return 0
	}
	var hist [256]int
	hits := order1Hits(b, &hist)

	// Use x^0.6 to give better spread
	prediction := math.Pow(float64(hits)/float64(len(b)), 0.6)

	// Use x^0.4 to give better spread
	entropy := math.Pow(histogramSpread(&hist, len(b)), 0.4)

	// 50/50 weight between prediction and histogram distribution
	return math.Pow((prediction+entropy)/2, 0.9)
}

// order1Hits counts bytes correctly predicted by an order 1 context model
// and fills hist with the byte histogram of b.
// A hit is only counted after two correct predictions in a row.
func order1Hits(b []byte, hist *[256]int) int {
	hits := 0
	lastMatch := false
	var o1 [256]byte
	c1 := byte(0)
	for _, c := range b {
		if c == o1[c1] {
			if lastMatch {
				hits++
			}
			lastMatch = true
		} else {
			lastMatch = false
		}
		o1[c1] = c
		c1 = c
		hist[c]++
	}
	return hits
}

// histogramSpread returns the normalized standard deviation of hist
// with the deviation expected from n random bytes removed.
func histogramSpread(hist *[256]int, n int) float64 {
	variance := float64(0)
	avg := float64(n) / 256
	for _, v := range hist {
		d := float64(v) - avg
		variance += d * d
	}

	stddev := math.Sqrt(variance) / float64(n)
	exp := math.Sqrt(1 / float64(n))

	// Subtract expected stddev
	stddev -= exp
	if stddev < 0 {
		stddev = 0
	}
	return stddev * (1 + exp)
}

// ShannonEntropyBits returns the number of bits minimum required to represent
// an entropy encoding of the input bytes.
// https://en.wiktionary.org/wiki/Shannon_entropy
func ShannonEntropyBits(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	var hist [256]int
	for _, c := range b {
		hist[c]++
	}
	shannon := float64(0)
	invTotal := 1.0 / float64(len(b))
	for _, v := range hist[:] {
		if v > 0 {
			n := float64(v)
			shannon += math.Ceil(-math.Log2(n*invTotal) * n)
		}
	}
	return int(math.Ceil(shannon))
}

// SuggestLevel returns a flate compression level for a sample of the input.
// Incompressible samples are stored, samples with a skewed histogram but
// little repetition get Huffman only, weakly compressible samples get
// BestSpeed and everything else gets the default level.
func SuggestLevel(sample []byte) int {
	if len(sample) < 16 {
		return flate.DefaultCompression
	}
	est := Estimate(sample)
	switch {
	case est < 0.1 && ShannonEntropyBits(sample) >= len(sample)*8*99/100:
		return flate.NoCompression
	case est < 0.1:
		return flate.HuffmanOnly
	case est < 0.3:
		return flate.BestSpeed
	}
	return flate.DefaultCompression
}

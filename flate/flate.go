// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flate implements the DEFLATE compressed data format, described in
// RFC 1951.
//
// The compressor offers a stored mode, a Huffman-only mode, a fast
// single-probe matcher for BestSpeed and a lazy hash chain matcher for
// levels 2 to 9. Output produced at a given level is deterministic.
//
// The decompressor accepts any valid RFC 1951 stream and supports preset
// dictionaries.
//
// Setting GODEBUG=flatedebug=1 logs encoder decisions to the standard logger.
package flate

import (
	"log"

	"github.com/ggstd/compress/internal/godebug"
)

const (
	NoCompression      = 0
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = -1

	// HuffmanOnly disables Lempel-Ziv match searching and only performs Huffman
	// entropy encoding. This mode is useful in compressing data that has
	// already been compressed with an LZ style algorithm (e.g. Snappy or LZ4)
	// that lacks an entropy encoder. Compression gains are achieved when
	// certain bytes in the input stream occur more frequently than others.
	//
	// Note that HuffmanOnly produces a compressed output that is
	// RFC 1951 compliant. That is, any valid DEFLATE decompressor will
	// continue to be able to decompress this output.
	HuffmanOnly = -2
)

const (
	// debugDecode enables consistency checks in the decoder hot paths.
	debugDecode = false

	// debugEncode enables range checks on encoder tokens.
	debugEncode = false
)

// debugDeflate enables logging of encoder decisions.
var debugDeflate = godebug.Enabled("flatedebug")

func println(a ...interface{}) {
	if debugDeflate {
		log.Println(a...)
	}
}

func printf(format string, a ...interface{}) {
	if debugDeflate {
		log.Printf(format, a...)
	}
}

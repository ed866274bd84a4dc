// Package fuzz loads seed corpora for the fuzz tests.
package fuzz

import (
	"archive/zip"
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// corpusHeader starts every file written by 'go test -fuzz'.
var corpusHeader = []byte("go test fuzz")

// ReadZip returns the seeds stored in a zip file.
// When raw is set, files are used as-is unless they carry a corpus header.
// When short is set, only every tenth file is read.
func ReadZip(filename string, raw, short bool) ([][]byte, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var seeds [][]byte
	for i, file := range zr.File {
		if short && i%10 != 0 {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name, err)
		}
		if raw && !bytes.HasPrefix(b, corpusHeader) {
			seeds = append(seeds, b)
			continue
		}
		vals, err := unmarshalCorpusFile(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Name, err)
		}
		seeds = append(seeds, vals...)
	}
	return seeds, nil
}

// AddFromZip will read the supplied zip and add all as corpus for f.
func AddFromZip(f *testing.F, filename string, raw, short bool) {
	seeds, err := ReadZip(filename, raw, short)
	if err != nil {
		f.Fatal(err)
	}
	for _, b := range seeds {
		f.Add(b)
	}
}

// AddFiles adds every file matching pattern, truncated to max bytes.
func AddFiles(f *testing.F, pattern string, max int) {
	match, err := filepath.Glob(pattern)
	if err != nil {
		f.Fatal(err)
	}
	for _, name := range match {
		b, err := os.ReadFile(name)
		if err != nil {
			f.Fatal(err)
		}
		if len(b) > max {
			b = b[:max]
		}
		f.Add(b)
	}
}

// unmarshalCorpusFile decodes corpus bytes into their respective values.
func unmarshalCorpusFile(b []byte) ([][]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty string")
	}
	lines := bytes.Split(b, []byte("\n"))
	if len(lines) < 2 {
		return nil, fmt.Errorf("must include version and at least one value")
	}
	vals := make([][]byte, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		v, err := parseCorpusValue(line)
		if err != nil {
			return nil, fmt.Errorf("malformed line %q: %v", line, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// parseCorpusValue parses a single []byte("...") line.
func parseCorpusValue(line []byte) ([]byte, error) {
	expr, err := parser.ParseExprFrom(token.NewFileSet(), "(test)", line, 0)
	if err != nil {
		return nil, err
	}
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return nil, fmt.Errorf("expected call expression")
	}
	if len(call.Args) != 1 {
		return nil, fmt.Errorf("expected call expression with 1 argument; got %d", len(call.Args))
	}
	arrayType, ok := call.Fun.(*ast.ArrayType)
	if !ok || arrayType.Len != nil {
		return nil, fmt.Errorf("expected []byte")
	}
	if elt, ok := arrayType.Elt.(*ast.Ident); !ok || elt.Name != "byte" {
		return nil, fmt.Errorf("expected []byte")
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return nil, fmt.Errorf("string literal required for type []byte")
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

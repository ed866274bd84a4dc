// Command flatec compresses and decompresses raw DEFLATE streams.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ggstd/compress"
	"github.com/ggstd/compress/cmd/internal/readahead"
	"github.com/ggstd/compress/flate"
)

var (
	decomp   = flag.Bool("d", false, "Decompress instead of compress")
	level    = flag.String("level", "default", "Compression level. -2 to 9, huffman, store, fastest, default, best or auto")
	dictFile = flag.String("dict", "", "Use the content of this file as preset dictionary")
	safe     = flag.Bool("safe", false, "Do not overwrite output files")
	stdout   = flag.Bool("c", false, "Write all output to stdout. Multiple input files will be concatenated")
	out      = flag.String("o", "", "Write output to another file. Single input file only")
	remove   = flag.Bool("rm", false, "Delete source file(s) after success")
	quiet    = flag.Bool("q", false, "Don't write any output to terminal, except errors")
	bench    = flag.Int("bench", 0, "Run benchmark n times. No output will be written")
	verify   = flag.Bool("verify", false, "Verify written files")
	digest   = flag.Bool("digest", false, "Print xxhash64 of the uncompressed content")
	stats    = flag.Bool("stats", false, "Print compressibility estimate of the input")
	buffer   = flag.String("buffer", "1M", "Read ahead buffer size. Examples: 64K, 256K, 1M, 4M")
	help     = flag.Bool("help", false, "Display help")

	version = "(dev)"
	date    = "(unknown)"
)

const (
	ext = ".deflate"

	// sampleSize is the input prefix used for -level auto and -stats.
	sampleSize = 1 << 20
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 || *help {
		_, _ = fmt.Fprintf(os.Stderr, "flatec v%v, built at %v.\n\n", version, date)
		_, _ = fmt.Fprintln(os.Stderr, `Usage: flatec [options] file1 file2

Compresses all files supplied as input separately.
Output files are written as 'filename.ext`+ext+`'.
With -d, files are decompressed and the `+ext+` extension is removed.
By default output files will be overwritten.
Use - as the only file name to read from stdin and write to stdout.

File names beginning with 'http://' and 'https://' will be downloaded.
Only http response code 200 is accepted.

Options:`)
		flag.PrintDefaults()
		os.Exit(0)
	}

	bufSize, err := toSize(*buffer)
	exitErr(err)
	if bufSize <= 0 {
		exitErr(errors.New("-buffer must be positive"))
	}

	var dict []byte
	if *dictFile != "" {
		dict, err = os.ReadFile(*dictFile)
		exitErr(err)
	}
	if *level != "auto" {
		_, ok := flate.LevelFromString(*level)
		if !ok {
			exitErr(fmt.Errorf("%w %q", flate.ErrInvalidLevel, *level))
		}
	}

	if len(args) == 1 && args[0] == "-" {
		// Catch interrupt, so we don't exit at once.
		// os.Stdin will return EOF, so we should be able to get everything.
		signal.Notify(make(chan os.Signal, 1), os.Interrupt)
		var dst io.Writer = os.Stdout
		if *out != "" {
			dstFile, err := createFile(*out, os.ModePerm)
			exitErr(err)
			defer dstFile.Close()
			bw := bufio.NewWriterSize(dstFile, 1<<20)
			defer bw.Flush()
			dst = bw
		}
		if *decomp {
			_, err = decompressStream(dst, os.Stdin, dict)
		} else {
			_, err = compressStream(dst, os.Stdin, *level, dict, false)
		}
		printErr(err)
		return
	}

	var files []string
	for _, pattern := range args {
		if isHTTP(pattern) {
			files = append(files, pattern)
			continue
		}
		found, err := filepath.Glob(pattern)
		exitErr(err)
		if len(found) == 0 {
			exitErr(fmt.Errorf("unable to find file %v", pattern))
		}
		files = append(files, found...)
	}
	if *out != "" && len(files) > 1 {
		exitErr(errors.New("-o parameter can only be used with one input"))
	}

	*quiet = *quiet || *stdout
	if *bench > 0 {
		for _, filename := range files {
			runBench(filename, dict)
		}
		os.Exit(0)
	}
	for _, filename := range files {
		processFile(filename, dict, bufSize)
	}
}

// result describes a processed stream.
type result struct {
	level  int
	in     int64
	out    int64
	digest uint64 // xxhash64 of the uncompressed content
	sample []byte
}

// compressStream compresses src to dst.
// lvl is a level accepted by flate.LevelFromString or "auto".
// If keepSample is set, the input prefix is returned in the result.
func compressStream(dst io.Writer, src io.Reader, lvl string, dict []byte, keepSample bool) (result, error) {
	var res result
	var sample []byte
	if lvl == "auto" || keepSample {
		br := bufio.NewReaderSize(src, sampleSize)
		sample, _ = br.Peek(sampleSize)
		src = br
	}
	if lvl == "auto" {
		res.level = compress.SuggestLevel(sample)
	} else {
		var ok bool
		res.level, ok = flate.LevelFromString(lvl)
		if !ok {
			return res, fmt.Errorf("%w %q", flate.ErrInvalidLevel, lvl)
		}
	}
	if keepSample {
		// The reader buffer is reused once the copy starts.
		res.sample = bytes.Clone(sample)
	}

	wc := wCounter{out: dst}
	opts := []flate.WOption{flate.WithLevel(res.level)}
	if dict != nil {
		opts = append(opts, flate.WithDictionary(dict))
	}
	fw, err := flate.NewWriterOptions(&wc, opts...)
	if err != nil {
		return res, err
	}
	h := xxhash.New()
	res.in, err = io.Copy(io.MultiWriter(fw, h), src)
	if err != nil {
		return res, err
	}
	if err := fw.Close(); err != nil {
		return res, err
	}
	res.out = int64(wc.n)
	res.digest = h.Sum64()
	return res, nil
}

// decompressStream decompresses src to dst.
func decompressStream(dst io.Writer, src io.Reader, dict []byte) (result, error) {
	rc := rCounter{in: src}
	fr := flate.NewReaderDict(&rc, dict)
	defer fr.Close()
	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(dst, h), fr)
	return result{level: -1, in: rc.n, out: n, digest: h.Sum64()}, err
}

// verifyTo returns a writer that decodes everything written to w in the
// background. The returned function reports the digest of the decoded content.
func verifyTo(w io.Writer, dict []byte) (io.Writer, func() (uint64, error)) {
	pr, pw := io.Pipe()
	var wg sync.WaitGroup
	var res result
	var err error
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = decompressStream(io.Discard, pr, dict)
		if err != nil {
			pr.CloseWithError(fmt.Errorf("verify: %w", err))
			return
		}
		// Anything after the final block is not part of the stream.
		io.Copy(io.Discard, pr)
	}()
	return io.MultiWriter(w, pw), func() (uint64, error) {
		pw.Close()
		wg.Wait()
		if err != nil {
			return 0, fmt.Errorf("verify: %w", err)
		}
		return res.digest, nil
	}
}

func processFile(filename string, dict []byte, bufSize int) {
	var closeOnce sync.Once
	dstFilename := outputName(filename, *decomp)
	if *out != "" {
		dstFilename = *out
	}
	if !*quiet {
		fmt.Print(filename, " -> ", dstFilename)
	}
	if dstFilename == filename && !*stdout {
		exitErr(errors.New("input and output are the same file"))
	}

	file, _, mode := openFile(filename)
	defer closeOnce.Do(func() { file.Close() })
	src, err := readahead.NewReaderSize(file, readahead.DefaultBuffers, bufSize)
	exitErr(err)
	defer src.Close()

	var dst io.Writer = os.Stdout
	if !*stdout {
		dstFile, err := createFile(dstFilename, mode)
		exitErr(err)
		defer dstFile.Close()
		bw := bufio.NewWriterSize(dstFile, 1<<20)
		defer bw.Flush()
		dst = bw
	}

	start := time.Now()
	var res result
	if *decomp {
		res, err = decompressStream(dst, src, dict)
		exitErr(err)
	} else {
		var check func() (uint64, error)
		if *verify {
			dst, check = verifyTo(dst, dict)
		}
		res, err = compressStream(dst, src, *level, dict, *stats)
		exitErr(err)
		if check != nil {
			got, err := check()
			exitErr(err)
			if got != res.digest {
				exitErr(fmt.Errorf("verify: content mismatch, digest %016x, want %016x", got, res.digest))
			}
		}
	}
	if !*quiet {
		printResult(res, time.Since(start))
	}
	if *remove {
		closeOnce.Do(func() {
			file.Close()
			if !*quiet {
				fmt.Println("Removing", filename)
			}
			exitErr(os.Remove(filename))
		})
	}
}

func printResult(res result, elapsed time.Duration) {
	input, output := res.in, res.out
	if *decomp {
		input, output = res.out, res.in
	}
	mbpersec := (float64(input) / (1024 * 1024)) / (float64(elapsed) / (float64(time.Second)))
	pct := 0.0
	if input > 0 {
		pct = float64(output) * 100 / float64(input)
	}
	if *decomp {
		fmt.Printf(" %d -> %d [%.02f%%]; %.01fMB/s", res.in, res.out, pct, mbpersec)
	} else {
		fmt.Printf(" %d -> %d [%.02f%%]; level %s; %.01fMB/s", res.in, res.out, pct, flate.LevelName(res.level), mbpersec)
	}
	if *verify && !*decomp {
		fmt.Print("... Verified ok.")
	}
	fmt.Println("")
	if *digest {
		fmt.Printf("  xxhash64: %016x\n", res.digest)
	}
	if *stats && res.sample != nil {
		fmt.Printf("  estimate: %.03f, entropy: %d bits in %d bytes, suggested level: %s\n",
			compress.Estimate(res.sample), compress.ShannonEntropyBits(res.sample), len(res.sample),
			flate.LevelName(compress.SuggestLevel(res.sample)))
	}
}

func runBench(filename string, dict []byte) {
	if !*quiet {
		fmt.Print("Reading ", filename, "...")
	}
	file, _, _ := openFile(filename)
	b, err := io.ReadAll(file)
	exitErr(err)
	file.Close()

	if *decomp {
		for i := 0; i < *bench; i++ {
			if !*quiet {
				fmt.Print("\nDecompressing...")
			}
			start := time.Now()
			res, err := decompressStream(io.Discard, bytes.NewReader(b), dict)
			exitErr(err)
			if !*quiet {
				printBench(res.in, res.out, time.Since(start), res.out)
			}
		}
		if !*quiet {
			fmt.Println("")
		}
		return
	}

	var compressed bytes.Buffer
	for i := 0; i < *bench; i++ {
		if !*quiet {
			fmt.Print("\nCompressing...")
		}
		compressed.Reset()
		start := time.Now()
		res, err := compressStream(&compressed, bytes.NewReader(b), *level, dict, false)
		exitErr(err)
		if !*quiet {
			printBench(res.in, res.out, time.Since(start), res.in)
		}
		if *verify {
			if !*quiet {
				fmt.Print("\nDecompressing.")
			}
			start := time.Now()
			dres, err := decompressStream(io.Discard, bytes.NewReader(compressed.Bytes()), dict)
			exitErr(err)
			if dres.digest != res.digest {
				exitErr(errors.New("decompressed data mismatch"))
			}
			if !*quiet {
				printBench(dres.in, dres.out, time.Since(start), dres.out)
				fmt.Print("... Verified ok.")
			}
		}
	}
	if !*quiet {
		fmt.Println("")
	}
}

// printBench prints a benchmark line. Speed is measured on plain bytes.
func printBench(in, out int64, elapsed time.Duration, plain int64) {
	mbpersec := (float64(plain) / (1024 * 1024)) / (float64(elapsed) / (float64(time.Second)))
	pct := float64(out) * 100 / float64(max(in, 1))
	fmt.Printf(" %d -> %d [%.02f%%]; %v, %.01fMB/s", in, out, pct, elapsed.Round(time.Millisecond), mbpersec)
}

// outputName returns the default destination for filename.
func outputName(filename string, decompress bool) string {
	filename = cleanFileName(filename)
	if !decompress {
		return filename + ext
	}
	if strings.HasSuffix(filename, ext) {
		return strings.TrimSuffix(filename, ext)
	}
	return filename + ".out"
}

func createFile(name string, mode os.FileMode) (*os.File, error) {
	if *safe {
		_, err := os.Stat(name)
		if !os.IsNotExist(err) {
			return nil, errors.New("destination file exists")
		}
	}
	return os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
}

func isHTTP(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

func openFile(name string) (rc io.ReadCloser, size int64, mode os.FileMode) {
	if isHTTP(name) {
		resp, err := http.Get(name)
		exitErr(err)
		if resp.StatusCode != http.StatusOK {
			exitErr(fmt.Errorf("unexpected response status code %v, want OK", resp.Status))
		}
		return resp.Body, resp.ContentLength, os.ModePerm
	}
	file, err := os.Open(name)
	exitErr(err)
	st, err := file.Stat()
	exitErr(err)
	return file, st.Size(), st.Mode()
}

func cleanFileName(s string) string {
	if isHTTP(s) {
		s = strings.TrimPrefix(s, "http://")
		s = strings.TrimPrefix(s, "https://")
		s = strings.Map(func(r rune) rune {
			switch r {
			case '\\', '/', '*', '?', ':', '|', '<', '>', '~':
				return '_'
			}
			if r < 20 {
				return '_'
			}
			return r
		}, s)
	}
	return s
}

func printErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "\nERROR:", err.Error())
	}
}

func exitErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "\nERROR:", err.Error())
		os.Exit(2)
	}
}

// toSize converts a size indication to bytes.
func toSize(size string) (int, error) {
	size = strings.ToUpper(strings.TrimSpace(size))
	i := strings.IndexFunc(size, func(r rune) bool { return r < '0' || r > '9' })
	if i == -1 {
		i = len(size)
	}
	sz, err := strconv.Atoi(size[:i])
	if err != nil {
		return 0, fmt.Errorf("unable to parse size: %v", err)
	}
	switch size[i:] {
	case "M", "MB", "MIB":
		return sz << 20, nil
	case "K", "KB", "KIB":
		return sz << 10, nil
	case "B", "":
		return sz, nil
	default:
		return 0, fmt.Errorf("unknown size suffix: %v", size[i:])
	}
}

type wCounter struct {
	n   int
	out io.Writer
}

func (w *wCounter) Write(p []byte) (n int, err error) {
	n, err = w.out.Write(p)
	w.n += n
	return n, err
}

type rCounter struct {
	n  int64
	in io.Reader
}

func (r *rCounter) Read(p []byte) (n int, err error) {
	n, err = r.in.Read(p)
	r.n += int64(n)
	return n, err
}

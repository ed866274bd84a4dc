package flate

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WOption is an option for creating a Writer.
type WOption func(*writerOptions) error

// writerOptions retains accumulated state of multiple options.
type writerOptions struct {
	level int
	dict  []byte
}

func (o *writerOptions) setDefault() {
	*o = writerOptions{
		level: DefaultCompression,
	}
}

// WithLevel sets the compression level.
// Valid values are in the range [-2, 9]; see NewWriter.
func WithLevel(level int) WOption {
	return func(o *writerOptions) error {
		if level < HuffmanOnly || level > BestCompression {
			return fmt.Errorf("%w %d: want value in range [-2, 9]", ErrInvalidLevel, level)
		}
		o.level = level
		return nil
	}
}

// WithLevelName sets the compression level by name.
// See LevelFromString for accepted values.
func WithLevelName(name string) WOption {
	return func(o *writerOptions) error {
		l, ok := LevelFromString(name)
		if !ok {
			return fmt.Errorf("%w %q", ErrInvalidLevel, name)
		}
		o.level = l
		return nil
	}
}

// WithDictionary sets a preset dictionary.
// The dictionary is copied, and only the last 32KiB are used.
// Streams written with a dictionary must be read with NewReaderDict
// and the same dictionary.
func WithDictionary(dict []byte) WOption {
	return func(o *writerOptions) error {
		o.dict = append([]byte{}, dict...)
		return nil
	}
}

// NewWriterOptions returns a new Writer configured with the supplied options.
// Without options it is equivalent to NewWriter(w, DefaultCompression).
func NewWriterOptions(w io.Writer, opts ...WOption) (*Writer, error) {
	var o writerOptions
	o.setDefault()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.dict != nil {
		return NewWriterDict(w, o.level, o.dict)
	}
	return NewWriter(w, o.level)
}

var levelNames = map[int]string{
	HuffmanOnly:        "huffman",
	NoCompression:      "store",
	BestSpeed:          "fastest",
	DefaultCompression: "default",
	BestCompression:    "best",
}

// LevelFromString converts a level name or number to a compression level.
// Accepted names are "store", "huffman", "fastest", "default" and "best",
// case insensitive. Numbers in the range [-2, 9] are returned as is.
func LevelFromString(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if s == name {
			return l, true
		}
	}
	l, err := strconv.Atoi(s)
	if err != nil || l < HuffmanOnly || l > BestCompression {
		return 0, false
	}
	return l, true
}

// LevelName returns a name for the level.
// Levels without a name are returned as their number.
func LevelName(level int) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return strconv.Itoa(level)
}

// Package le provides little endian loads and stores used by the match finders
// and the bit writer.
package le

// Indexer is the set of integer types accepted as an offset into a byte slice.
type Indexer interface {
	int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64
}

// We enable 64 bit LE platforms:

//go:build (amd64 || arm64 || ppc64le || riscv64) && !nounsafe && !purego && !appengine

package le

import (
	"unsafe"
)

// Load32 will load from b at index i.
// The caller must guarantee that b[i:i+4] is in range.
func Load32[I Indexer](b []byte, i I) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(unsafe.Pointer(&b[0])) + uintptr(i)))
}

// Load64 will load from b at index i.
// The caller must guarantee that b[i:i+8] is in range.
func Load64[I Indexer](b []byte, i I) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(unsafe.Pointer(&b[0])) + uintptr(i)))
}

// Store64 will store v at the start of b, which must hold at least 8 bytes.
func Store64(b []byte, v uint64) {
	*(*uint64)(unsafe.Pointer(&b[0])) = v
}

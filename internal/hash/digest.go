// Package hash computes xxHash64 digests of serialized plane data.
package hash

import "github.com/cespare/xxhash/v2"

// Bytes returns the xxHash64 digest of data.
func Bytes(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum returns the xxHash64 digest of the concatenation of parts. Each part is
// prefixed with its length so that different splits never collide trivially.
func Sum(parts ...[]byte) uint64 {
	d := xxhash.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i))
		}
		_, _ = d.Write(lenBuf[:])
		_, _ = d.Write(p)
	}

	return d.Sum64()
}

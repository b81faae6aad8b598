// Package packing converts between raw per-dimension quantized bytes
// and their 4-bit packed on-disk form. Two logical values share one
// stored byte: the first half of the array goes into the high nibbles,
// the second half into the low nibbles, split at the midpoint. For an
// odd number of values the final low nibble is zero padding.
package packing

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when the packed and raw lengths disagree.
var ErrLengthMismatch = errors.New("packing: length mismatch")

// PackedLength returns the on-disk length of a packed array of n
// quantized values.
func PackedLength(n int) int {
	return (n + 1) >> 1
}

// Pack writes the 4-bit packed form of raw into packed.
// len(packed) must be PackedLength(len(raw)). Values in raw must fit
// in 4 bits; high bits are discarded.
func Pack(raw, packed []byte) error {
	if len(packed) != PackedLength(len(raw)) {
		return fmt.Errorf("%w: packed length %d does not match raw length %d", ErrLengthMismatch, len(packed), len(raw))
	}
	half := len(packed)
	for i := range packed {
		var lo byte
		if half+i < len(raw) {
			lo = raw[half+i] & 0x0F
		}
		packed[i] = raw[i]<<4 | lo
	}
	return nil
}

// Unpack expands the packed form in place. The first numBytes bytes of
// buf hold the packed input; on return all 2*numBytes bytes hold one
// value each. A no-op when numBytes == len(buf) (unpacked storage).
//
// The low nibble is written to the second half before the source byte
// is overwritten, so the expansion never clobbers unread input.
func Unpack(buf []byte, numBytes int) error {
	if numBytes == len(buf) {
		return nil
	}
	if numBytes<<1 != len(buf) {
		return fmt.Errorf("%w: numBytes %d does not match buffer length %d", ErrLengthMismatch, numBytes, len(buf))
	}
	for i := 0; i < numBytes; i++ {
		buf[numBytes+i] = buf[i] & 0x0F
		buf[i] = buf[i] >> 4
	}
	return nil
}

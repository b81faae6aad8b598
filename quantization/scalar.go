// Package quantization describes the scalar quantization applied to
// stored vectors. The store treats these parameters as opaque: only
// the bit width influences the on-disk layout, the quantile range is
// carried for the distance computations layered on top.
package quantization

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidBits is returned for a bit width outside [1,8].
var ErrInvalidBits = errors.New("quantization: bits must be in [1,8]")

// ScalarQuantizer holds the parameters of a trained scalar quantizer:
// the quantile range the float values were clipped to and the number
// of bits per dimension.
type ScalarQuantizer struct {
	minQuantile float32
	maxQuantile float32
	bits        byte
}

// NewScalarQuantizer creates a parameter set with the given quantile
// range and bit width.
func NewScalarQuantizer(minQuantile, maxQuantile float32, bits byte) (*ScalarQuantizer, error) {
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBits, bits)
	}
	if minQuantile > maxQuantile {
		return nil, fmt.Errorf("quantization: min quantile %v exceeds max %v", minQuantile, maxQuantile)
	}
	return &ScalarQuantizer{
		minQuantile: minQuantile,
		maxQuantile: maxQuantile,
		bits:        bits,
	}, nil
}

// Bits returns the number of bits per quantized dimension.
func (sq *ScalarQuantizer) Bits() byte {
	return sq.bits
}

// MinQuantile returns the lower clipping bound used during quantization.
func (sq *ScalarQuantizer) MinQuantile() float32 {
	return sq.minQuantile
}

// MaxQuantile returns the upper clipping bound used during quantization.
func (sq *ScalarQuantizer) MaxQuantile() float32 {
	return sq.maxQuantile
}

// String implements fmt.Stringer.
func (sq *ScalarQuantizer) String() string {
	return fmt.Sprintf("ScalarQuantizer(bits=%d, range=[%v,%v])", sq.bits, sq.minQuantile, sq.maxQuantile)
}

// MarshalBinary implements encoding.BinaryMarshaler.
// Format (little-endian): [min:float32][max:float32][bits:uint8]
func (sq *ScalarQuantizer) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 9)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(sq.minQuantile))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(sq.maxQuantile))
	buf[8] = sq.bits
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sq *ScalarQuantizer) UnmarshalBinary(data []byte) error {
	if len(data) != 9 {
		return errors.New("quantization: invalid scalar quantizer binary length")
	}
	bits := data[8]
	if bits < 1 || bits > 8 {
		return fmt.Errorf("%w: got %d", ErrInvalidBits, bits)
	}
	sq.minQuantile = math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	sq.maxQuantile = math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	sq.bits = bits
	return nil
}

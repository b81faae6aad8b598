// Package vectors reads quantized vector values and their score
// correction constants from a file-backed byte region. It supports
// both iterated and random access over three physical layouts: dense
// (every document has a vector), sparse (only some do) and empty.
//
// A store instance is cheap to share read-only, but its iteration
// cursor and single-slot decode cache are not thread-safe: each
// concurrent consumer must obtain its own Copy.
package vectors

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/internal/docidset"
	"github.com/hupe1980/quantvec/packing"
	"github.com/hupe1980/quantvec/quantization"
)

// NoMoreDocs is the document id returned once iteration is exhausted.
const NoMoreDocs = docidset.NoMoreDocs

// Bits is a read-only set of document or ordinal indexes.
type Bits interface {
	// Get returns true if the index is a member.
	Get(index int) bool
	// Len returns the number of addressable indexes.
	Len() int
}

// BitmapBits adapts a roaring bitmap to the Bits interface.
type BitmapBits struct {
	Bitmap *roaring.Bitmap
	Length int
}

// Get returns true if the index is a member.
func (b BitmapBits) Get(index int) bool {
	return b.Bitmap.Contains(uint32(index))
}

// Len returns the number of addressable indexes.
func (b BitmapBits) Len() int {
	return b.Length
}

// Values gives access to the quantized vectors of one field in one
// segment. Advance targets must be strictly greater than the current
// doc. The slice returned by VectorValue and VectorValueAt is only
// valid until the next value access.
type Values interface {
	// Dimension returns the logical vector dimension.
	Dimension() int

	// Size returns the number of vectors stored for the field.
	Size() int

	// Quantizer returns the scalar quantization parameters, nil for an
	// empty field.
	Quantizer() *quantization.ScalarQuantizer

	// DocID returns the current document id, -1 before the first
	// NextDoc and NoMoreDocs after exhaustion.
	DocID() int

	// NextDoc advances to the next document that has a vector.
	NextDoc() (int, error)

	// Advance moves to the first document >= target that has a vector.
	Advance(target int) (int, error)

	// VectorValue returns the unpacked quantized bytes at the current
	// document.
	VectorValue() ([]byte, error)

	// VectorValueAt returns the unpacked quantized bytes at the given
	// ordinal.
	VectorValueAt(ord int) ([]byte, error)

	// ScoreCorrection returns the correction constant of the most
	// recently decoded vector.
	ScoreCorrection() float32

	// OrdToDoc maps an ordinal to its document id.
	OrdToDoc(ord int) int

	// AcceptOrds translates an acceptance set from document space to
	// ordinal space. A nil set means unrestricted and passes through.
	AcceptOrds(acceptDocs Bits) Bits

	// Copy returns a store over the same bytes with independent
	// iteration and decode state. Safe to call concurrently.
	Copy() (Values, error)
}

// offHeap carries the record layout constants and the single-slot
// decode cache shared by the dense and sparse stores.
//
// Record layout, per ordinal at offset ord*byteSize:
//
//	[numBytes bytes: quantized value, 4-bit packed when bits<=4 and compress]
//	[4 bytes: little-endian float32 score correction]
type offHeap struct {
	dimension int
	size      int
	numBytes  int
	byteSize  int
	quantizer *quantization.ScalarQuantizer
	compress  bool

	slice      bytesio.Reader
	buf        []byte
	correction float32
	lastOrd    int
}

func newOffHeap(dimension, size int, quantizer *quantization.ScalarQuantizer, compress bool, slice bytesio.Reader) offHeap {
	numBytes := dimension
	bufLen := dimension
	if quantizer.Bits() <= 4 && compress {
		numBytes = (dimension + 1) >> 1
		// The in-place unpack needs room for one value per nibble,
		// including the padding nibble of an odd dimension.
		bufLen = numBytes << 1
	}
	return offHeap{
		dimension: dimension,
		size:      size,
		numBytes:  numBytes,
		byteSize:  numBytes + 4,
		quantizer: quantizer,
		compress:  compress,
		slice:     slice,
		buf:       make([]byte, bufLen),
		lastOrd:   -1,
	}
}

func (v *offHeap) Dimension() int {
	return v.dimension
}

func (v *offHeap) Size() int {
	return v.size
}

func (v *offHeap) Quantizer() *quantization.ScalarQuantizer {
	return v.quantizer
}

func (v *offHeap) ScoreCorrection() float32 {
	return v.correction
}

// vectorValueAt decodes the record at ord into the reusable buffer.
// A repeated ordinal is served from the cache without touching the
// underlying region.
func (v *offHeap) vectorValueAt(ord int) ([]byte, error) {
	if ord == v.lastOrd {
		return v.buf[:v.dimension], nil
	}
	if err := v.slice.Seek(int64(ord) * int64(v.byteSize)); err != nil {
		return nil, err
	}
	if err := v.slice.ReadBytes(v.buf[:v.numBytes]); err != nil {
		return nil, err
	}
	correction, err := v.slice.ReadFloat32()
	if err != nil {
		return nil, err
	}
	if err := packing.Unpack(v.buf, v.numBytes); err != nil {
		return nil, err
	}
	v.correction = correction
	v.lastOrd = ord
	return v.buf[:v.dimension], nil
}

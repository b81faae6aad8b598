// Package bytesio provides random access to immutable, file-backed
// byte regions. A Reader is a positionable view into a larger shared
// region: slices and clones share the underlying bytes but carry their
// own cursor, so concurrent consumers never race on position.
package bytesio

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrOutOfBounds is returned when a read or slice extends past the
	// end of the region.
	ErrOutOfBounds = errors.New("bytesio: out of bounds")
	// ErrInvalidOffset is returned for a negative offset or length.
	ErrInvalidOffset = errors.New("bytesio: invalid offset")
)

// Reader is a positionable random-access view over an immutable byte
// region. The region itself is borrowed and safely shared; the cursor
// is private to one consumer. Callers that need independent position
// must Clone.
type Reader interface {
	// Length returns the size of the region in bytes.
	Length() int64

	// Seek positions the cursor at pos.
	Seek(pos int64) error

	// ReadBytes fills p from the cursor and advances it.
	ReadBytes(p []byte) error

	// ReadUint32 reads a little-endian uint32 at the cursor.
	ReadUint32() (uint32, error)

	// ReadFloat32 reads a little-endian IEEE-754 float32 at the cursor.
	ReadFloat32() (float32, error)

	// ReadAt fills p starting at off without touching the cursor.
	ReadAt(p []byte, off int64) error

	// Slice returns a view of [off, off+length) with its own cursor.
	Slice(off, length int64) (Reader, error)

	// Clone returns an independently positioned view of the same
	// region. Safe to call concurrently; the clone starts at 0.
	Clone() Reader
}

// SliceReader is a Reader over a borrowed byte slice, typically a view
// into a memory mapping. It never copies or mutates the bytes.
type SliceReader struct {
	data []byte
	pos  int64
}

// NewSliceReader creates a Reader over data. The caller guarantees the
// slice stays valid for the lifetime of the reader and all derived
// slices and clones.
func NewSliceReader(data []byte) *SliceReader {
	return &SliceReader{data: data}
}

// Length returns the size of the region in bytes.
func (r *SliceReader) Length() int64 {
	return int64(len(r.data))
}

// Seek positions the cursor at pos.
func (r *SliceReader) Seek(pos int64) error {
	if pos < 0 {
		return ErrInvalidOffset
	}
	if pos > int64(len(r.data)) {
		return ErrOutOfBounds
	}
	r.pos = pos
	return nil
}

// ReadBytes fills p from the cursor and advances it.
func (r *SliceReader) ReadBytes(p []byte) error {
	if r.pos+int64(len(p)) > int64(len(r.data)) {
		return ErrOutOfBounds
	}
	copy(p, r.data[r.pos:])
	r.pos += int64(len(p))
	return nil
}

// ReadUint32 reads a little-endian uint32 at the cursor.
func (r *SliceReader) ReadUint32() (uint32, error) {
	if r.pos+4 > int64(len(r.data)) {
		return 0, ErrOutOfBounds
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadFloat32 reads a little-endian IEEE-754 float32 at the cursor.
func (r *SliceReader) ReadFloat32() (float32, error) {
	bits, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadAt fills p starting at off without touching the cursor.
func (r *SliceReader) ReadAt(p []byte, off int64) error {
	if off < 0 {
		return ErrInvalidOffset
	}
	if off+int64(len(p)) > int64(len(r.data)) {
		return ErrOutOfBounds
	}
	copy(p, r.data[off:])
	return nil
}

// Slice returns a view of [off, off+length) with its own cursor.
func (r *SliceReader) Slice(off, length int64) (Reader, error) {
	if off < 0 || length < 0 {
		return nil, ErrInvalidOffset
	}
	if off+length > int64(len(r.data)) {
		return nil, ErrOutOfBounds
	}
	return &SliceReader{data: r.data[off : off+length]}, nil
}

// Clone returns an independently positioned view of the same region.
func (r *SliceReader) Clone() Reader {
	return &SliceReader{data: r.data}
}

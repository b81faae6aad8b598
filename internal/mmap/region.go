package mmap

import "github.com/hupe1980/quantvec/bytesio"

// Region is a borrowed view into a Mapping, typically one section of a
// segment file. It does not own the memory.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region creates a view of [offset, offset+size) of the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > m.size {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Size returns the region length in bytes.
func (r *Region) Size() int {
	return r.size
}

// Bytes returns the region's bytes, nil once the parent mapping is
// closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Reader returns a positioned reader over the region. The reader and
// everything derived from it borrow the mapped bytes and must not
// outlive the mapping.
func (r *Region) Reader() bytesio.Reader {
	return bytesio.NewSliceReader(r.Bytes())
}

// Advise hints the kernel about the access pattern of this region
// only.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}

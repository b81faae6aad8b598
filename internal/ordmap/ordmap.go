// Package ordmap persists a strictly increasing sequence of document
// ids addressed by ordinal. Values are grouped into blocks of 64; each
// block stores its first value and fixed-width deltas, so a lookup
// costs one block-metadata access plus one fixed-width read.
//
// Layout (little-endian):
//
//	[count:uint32][numBlocks:uint32]
//	numBlocks * [base:uint32][dataOff:uint32][width:uint8]
//	packed deltas, width bytes per entry, per block at dataOff
package ordmap

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/quantvec/bytesio"
)

const (
	blockShift = 6
	blockSize  = 1 << blockShift
	blockMask  = blockSize - 1

	headerSize    = 8
	metaEntrySize = 9
)

var (
	// ErrNotMonotonic is returned when encoding values that are not
	// strictly increasing.
	ErrNotMonotonic = errors.New("ordmap: values not strictly increasing")
	// ErrCorrupt is returned when the persisted form fails validation.
	ErrCorrupt = errors.New("ordmap: corrupt encoding")
)

// widthFor returns the number of bytes needed to store delta.
func widthFor(delta uint32) byte {
	switch {
	case delta == 0:
		return 0
	case delta <= 0xFF:
		return 1
	case delta <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

// Encode serializes a strictly increasing sequence of document ids.
func Encode(values []uint32) ([]byte, error) {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return nil, fmt.Errorf("%w: value %d at ordinal %d after %d", ErrNotMonotonic, values[i], i, values[i-1])
		}
	}

	numBlocks := (len(values) + blockMask) >> blockShift
	meta := make([]byte, 0, numBlocks*metaEntrySize)
	var data []byte

	for b := 0; b < numBlocks; b++ {
		start := b << blockShift
		end := min(start+blockSize, len(values))
		base := values[start]
		width := widthFor(values[end-1] - base)

		var entry [metaEntrySize]byte
		binary.LittleEndian.PutUint32(entry[0:4], base)
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(data)))
		entry[8] = width
		meta = append(meta, entry[:]...)

		if width == 0 {
			continue
		}
		for _, v := range values[start:end] {
			var d [4]byte
			binary.LittleEndian.PutUint32(d[:], v-base)
			data = append(data, d[:width]...)
		}
	}

	out := make([]byte, 0, headerSize+len(meta)+len(data))
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(values)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(numBlocks))
	out = append(out, hdr[:]...)
	out = append(out, meta...)
	out = append(out, data...)
	return out, nil
}

// Reader resolves ordinals to document ids without materializing the
// sequence on heap. The block metadata is read eagerly and validated
// so Get never fails afterwards.
type Reader struct {
	data    bytesio.Reader // delta section, borrowed
	count   int
	bases   []uint32
	offsets []uint32
	widths  []byte
}

// NewReader opens the encoding at [off, off+length) of r. Any read
// failure or inconsistency aborts construction.
func NewReader(r bytesio.Reader, off, length int64) (*Reader, error) {
	section, err := r.Slice(off, length)
	if err != nil {
		return nil, fmt.Errorf("ordmap: slice section: %w", err)
	}

	count, err := section.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("ordmap: read header: %w", err)
	}
	numBlocks, err := section.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("ordmap: read header: %w", err)
	}
	if wantBlocks := (count + blockMask) >> blockShift; numBlocks != wantBlocks {
		return nil, fmt.Errorf("%w: %d blocks for %d values", ErrCorrupt, numBlocks, count)
	}

	m := &Reader{
		count:   int(count),
		bases:   make([]uint32, numBlocks),
		offsets: make([]uint32, numBlocks),
		widths:  make([]byte, numBlocks),
	}

	var entry [metaEntrySize]byte
	for b := range m.bases {
		if err := section.ReadBytes(entry[:]); err != nil {
			return nil, fmt.Errorf("ordmap: read block meta: %w", err)
		}
		m.bases[b] = binary.LittleEndian.Uint32(entry[0:4])
		m.offsets[b] = binary.LittleEndian.Uint32(entry[4:8])
		switch entry[8] {
		case 0, 1, 2, 4:
			m.widths[b] = entry[8]
		default:
			return nil, fmt.Errorf("%w: block %d width %d", ErrCorrupt, b, entry[8])
		}
	}

	dataStart := int64(headerSize) + int64(numBlocks)*metaEntrySize
	data, err := section.Slice(dataStart, length-dataStart)
	if err != nil {
		return nil, fmt.Errorf("ordmap: slice deltas: %w", err)
	}
	m.data = data

	// Validate block extents up front so Get stays infallible.
	for b := range m.bases {
		if m.widths[b] == 0 {
			continue
		}
		entries := blockSize
		if b == len(m.bases)-1 {
			entries = m.count - b<<blockShift
		}
		end := int64(m.offsets[b]) + int64(entries)*int64(m.widths[b])
		if end > data.Length() {
			return nil, fmt.Errorf("%w: block %d deltas exceed section", ErrCorrupt, b)
		}
	}

	return m, nil
}

// Count returns the number of mapped ordinals.
func (m *Reader) Count() int {
	return m.count
}

// Get returns the document id at ordinal ord. The ordinal must be in
// [0, Count()).
func (m *Reader) Get(ord int) uint32 {
	b := ord >> blockShift
	base := m.bases[b]
	width := m.widths[b]
	if width == 0 {
		return base
	}

	var buf [4]byte
	pos := int64(m.offsets[b]) + int64(ord&blockMask)*int64(width)
	if err := m.data.ReadAt(buf[:width], pos); err != nil {
		// Extents were validated at open; only an out-of-range ordinal
		// can land here.
		panic(fmt.Sprintf("ordmap: ordinal %d out of range: %v", ord, err))
	}
	return base + binary.LittleEndian.Uint32(buf[:])
}

package vectors

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/packing"
	"github.com/hupe1980/quantvec/quantization"
)

func mustQuantizer(t *testing.T, bits byte) *quantization.ScalarQuantizer {
	t.Helper()
	sq, err := quantization.NewScalarQuantizer(-1, 1, bits)
	require.NoError(t, err)
	return sq
}

// buildRecords lays out quantized vectors and their corrections in the
// on-disk record format.
func buildRecords(t *testing.T, dim int, bits byte, compress bool, vecs [][]byte, corrections []float32) []byte {
	t.Helper()
	require.Equal(t, len(vecs), len(corrections))

	numBytes := dim
	if bits <= 4 && compress {
		numBytes = packing.PackedLength(dim)
	}

	var out []byte
	for i, vec := range vecs {
		require.Len(t, vec, dim)
		if numBytes != dim {
			packed := make([]byte, numBytes)
			require.NoError(t, packing.Pack(vec, packed))
			out = append(out, packed...)
		} else {
			out = append(out, vec...)
		}
		var f [4]byte
		binary.LittleEndian.PutUint32(f[:], math.Float32bits(corrections[i]))
		out = append(out, f[:]...)
	}
	return out
}

// countingReader wraps a Reader and counts ReadBytes calls across all
// derived slices and clones.
type countingReader struct {
	bytesio.Reader
	reads *int
}

func (c *countingReader) ReadBytes(p []byte) error {
	*c.reads++
	return c.Reader.ReadBytes(p)
}

func (c *countingReader) Slice(off, length int64) (bytesio.Reader, error) {
	s, err := c.Reader.Slice(off, length)
	if err != nil {
		return nil, err
	}
	return &countingReader{Reader: s, reads: c.reads}, nil
}

func (c *countingReader) Clone() bytesio.Reader {
	return &countingReader{Reader: c.Reader.Clone(), reads: c.reads}
}

func newDenseFixture(t *testing.T, dim int, bits byte, compress bool, vecs [][]byte, corrections []float32) Values {
	t.Helper()
	records := buildRecords(t, dim, bits, compress, vecs, corrections)
	v, err := Load(DenseConfig(), dim, len(vecs), mustQuantizer(t, bits), compress,
		0, int64(len(records)), bytesio.NewSliceReader(records))
	require.NoError(t, err)
	return v
}

func TestDenseIdentity(t *testing.T) {
	vecs := [][]byte{{10, 20}, {30, 40}, {50, 60}, {70, 80}}
	v := newDenseFixture(t, 2, 7, false, vecs, []float32{1, 2, 3, 4})

	require.Equal(t, 4, v.Size())
	require.Equal(t, 2, v.Dimension())
	assert.Equal(t, -1, v.DocID())

	for ord := range vecs {
		assert.Equal(t, ord, v.OrdToDoc(ord))

		doc, err := v.NextDoc()
		require.NoError(t, err)
		assert.Equal(t, ord, doc)
		assert.Equal(t, ord, v.DocID())
	}

	doc, err := v.NextDoc()
	require.NoError(t, err)
	assert.Equal(t, NoMoreDocs, doc)
}

func TestDenseAdvance(t *testing.T) {
	vecs := [][]byte{{1}, {2}, {3}, {4}, {5}}
	v := newDenseFixture(t, 1, 7, false, vecs, make([]float32, 5))

	doc, err := v.Advance(3)
	require.NoError(t, err)
	assert.Equal(t, 3, doc)

	got, err := v.VectorValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)

	doc, err = v.Advance(5)
	require.NoError(t, err)
	assert.Equal(t, NoMoreDocs, doc)
}

func TestDenseVectorValues(t *testing.T) {
	vecs := [][]byte{{9, 8, 7}, {6, 5, 4}, {3, 2, 1}}
	corrections := []float32{0.25, -1.5, 3.75}
	v := newDenseFixture(t, 3, 7, false, vecs, corrections)

	// Random order access.
	for _, ord := range []int{2, 0, 1, 0, 2} {
		got, err := v.VectorValueAt(ord)
		require.NoError(t, err)
		assert.Equal(t, vecs[ord], got, "ordinal %d", ord)
		assert.Equal(t, corrections[ord], v.ScoreCorrection())
	}
}

func TestDecodeCaching(t *testing.T) {
	vecs := [][]byte{{1, 2}, {3, 4}}
	records := buildRecords(t, 2, 7, false, vecs, []float32{0.5, 0.75})

	reads := 0
	data := &countingReader{Reader: bytesio.NewSliceReader(records), reads: &reads}

	v, err := Load(DenseConfig(), 2, 2, mustQuantizer(t, 7), false, 0, int64(len(records)), data)
	require.NoError(t, err)

	_, err = v.VectorValueAt(1)
	require.NoError(t, err)
	require.Equal(t, 1, reads)

	// Repeated ordinal is served from the single-slot cache.
	got, err := v.VectorValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, vecs[1], got)
	assert.Equal(t, 1, reads)

	// A different ordinal evicts the slot.
	_, err = v.VectorValueAt(0)
	require.NoError(t, err)
	assert.Equal(t, 2, reads)

	_, err = v.VectorValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, 3, reads)
}

func TestEndToEndCompressed4Bit(t *testing.T) {
	vecs := [][]byte{{1, 2, 3}, {4, 5, 6}}
	corrections := []float32{0.5, 0.75}
	records := buildRecords(t, 3, 4, true, vecs, corrections)

	// Bit-exact layout: ceil(3/2)=2 packed bytes + 4-byte correction
	// per record. First half in high nibbles, padding nibble zero.
	require.Len(t, records, 12)
	assert.Equal(t, []byte{0x13, 0x20}, records[0:2])
	assert.Equal(t, math.Float32bits(0.5), binary.LittleEndian.Uint32(records[2:6]))
	assert.Equal(t, []byte{0x46, 0x50}, records[6:8])
	assert.Equal(t, math.Float32bits(0.75), binary.LittleEndian.Uint32(records[8:12]))

	v, err := Load(DenseConfig(), 3, 2, mustQuantizer(t, 4), true,
		0, int64(len(records)), bytesio.NewSliceReader(records))
	require.NoError(t, err)

	got, err := v.VectorValueAt(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
	assert.Equal(t, float32(0.5), v.ScoreCorrection())

	got, err = v.VectorValueAt(1)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6}, got)
	assert.Equal(t, float32(0.75), v.ScoreCorrection())
}

func TestCompressedEvenDimension(t *testing.T) {
	vecs := [][]byte{{1, 2, 3, 4}, {15, 0, 7, 8}}
	v := newDenseFixture(t, 4, 4, true, vecs, []float32{0, 0})

	for ord, want := range vecs {
		got, err := v.VectorValueAt(ord)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDenseCopyIndependent(t *testing.T) {
	vecs := [][]byte{{1}, {2}, {3}}
	v := newDenseFixture(t, 1, 7, false, vecs, make([]float32, 3))

	_, err := v.Advance(1)
	require.NoError(t, err)

	c, err := v.Copy()
	require.NoError(t, err)
	assert.Equal(t, -1, c.DocID(), "copy starts before the first doc")

	doc, err := c.NextDoc()
	require.NoError(t, err)
	assert.Equal(t, 0, doc)
	assert.Equal(t, 1, v.DocID(), "source cursor untouched")

	// Decode caches are independent too.
	got, err := c.VectorValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)
	got, err = v.VectorValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got)
}

func TestDenseAcceptOrdsIdentity(t *testing.T) {
	v := newDenseFixture(t, 1, 7, false, [][]byte{{1}}, []float32{0})

	assert.Nil(t, v.AcceptOrds(nil))

	accept := fixedBits{0: true}
	assert.Equal(t, Bits(accept), v.AcceptOrds(accept))
}

// fixedBits is a map-backed Bits for tests.
type fixedBits map[int]bool

func (b fixedBits) Get(i int) bool { return b[i] }
func (b fixedBits) Len() int       { return len(b) }

func TestEmptyStore(t *testing.T) {
	v, err := Load(EmptyConfig(), 8, 0, nil, false, 0, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, v.Size())
	assert.Equal(t, 8, v.Dimension())
	assert.Equal(t, -1, v.DocID())
	assert.Nil(t, v.Quantizer())
	assert.Nil(t, v.AcceptOrds(fixedBits{1: true}))

	doc, err := v.NextDoc()
	require.NoError(t, err)
	assert.Equal(t, NoMoreDocs, doc)

	doc, err = v.Advance(12345)
	require.NoError(t, err)
	assert.Equal(t, NoMoreDocs, doc)

	assert.Panics(t, func() { _, _ = v.VectorValue() })
	assert.Panics(t, func() { _, _ = v.VectorValueAt(0) })
	assert.Panics(t, func() { v.OrdToDoc(0) })
	assert.Panics(t, func() { _, _ = v.Copy() })
}

func TestLoadSelectsLayout(t *testing.T) {
	records := buildRecords(t, 1, 7, false, [][]byte{{1}}, []float32{0})
	data := bytesio.NewSliceReader(records)

	v, err := Load(DenseConfig(), 1, 1, mustQuantizer(t, 7), false, 0, int64(len(records)), data)
	require.NoError(t, err)
	_, ok := v.(*denseValues)
	assert.True(t, ok)

	v, err = Load(EmptyConfig(), 1, 0, nil, false, 0, 0, nil)
	require.NoError(t, err)
	_, ok = v.(*emptyValues)
	assert.True(t, ok)
}

func TestLoadRejectsBadSlice(t *testing.T) {
	data := bytesio.NewSliceReader(make([]byte, 10))
	_, err := Load(DenseConfig(), 1, 1, mustQuantizer(t, 7), false, 0, 100, data)
	assert.Error(t, err)
}

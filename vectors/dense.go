package vectors

import (
	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/quantization"
)

// denseValues is the store for fields where every document has a
// vector: ordinal space and document space coincide, so iteration is
// a plain counter and random access is offset arithmetic.
type denseValues struct {
	offHeap
	doc int
}

func newDense(dimension, size int, quantizer *quantization.ScalarQuantizer, compress bool, slice bytesio.Reader) *denseValues {
	return &denseValues{
		offHeap: newOffHeap(dimension, size, quantizer, compress, slice),
		doc:     -1,
	}
}

func (v *denseValues) DocID() int {
	return v.doc
}

func (v *denseValues) NextDoc() (int, error) {
	return v.Advance(v.doc + 1)
}

// Advance requires target > DocID(); decoding is deferred to
// VectorValue, so advancing performs no I/O.
func (v *denseValues) Advance(target int) (int, error) {
	if target >= v.size {
		v.doc = NoMoreDocs
		return v.doc, nil
	}
	v.doc = target
	return v.doc, nil
}

func (v *denseValues) VectorValue() ([]byte, error) {
	return v.vectorValueAt(v.doc)
}

func (v *denseValues) VectorValueAt(ord int) ([]byte, error) {
	return v.vectorValueAt(ord)
}

func (v *denseValues) OrdToDoc(ord int) int {
	return ord
}

// AcceptOrds is the identity in the dense layout: ordinals are
// document ids.
func (v *denseValues) AcceptOrds(acceptDocs Bits) Bits {
	return acceptDocs
}

func (v *denseValues) Copy() (Values, error) {
	return newDense(v.dimension, v.size, v.quantizer, v.compress, v.slice.Clone()), nil
}

package vectors

import (
	"github.com/hupe1980/quantvec/quantization"
)

// emptyValues represents a field with zero vectors. Iteration is
// immediately exhausted; value access is a caller bug, since correct
// callers check Size() first, and panics rather than returning an
// error.
type emptyValues struct {
	dimension int
	doc       int
}

func newEmpty(dimension int) *emptyValues {
	return &emptyValues{dimension: dimension, doc: -1}
}

func (v *emptyValues) Dimension() int {
	return v.dimension
}

func (v *emptyValues) Size() int {
	return 0
}

// Quantizer returns nil: an empty field carries no observable
// quantization parameters.
func (v *emptyValues) Quantizer() *quantization.ScalarQuantizer {
	return nil
}

func (v *emptyValues) DocID() int {
	return v.doc
}

func (v *emptyValues) NextDoc() (int, error) {
	return v.Advance(v.doc + 1)
}

func (v *emptyValues) Advance(int) (int, error) {
	v.doc = NoMoreDocs
	return v.doc, nil
}

func (v *emptyValues) VectorValue() ([]byte, error) {
	panic("vectors: vector access on empty store")
}

func (v *emptyValues) VectorValueAt(int) ([]byte, error) {
	panic("vectors: vector access on empty store")
}

func (v *emptyValues) ScoreCorrection() float32 {
	return 0
}

func (v *emptyValues) OrdToDoc(int) int {
	panic("vectors: ordinal lookup on empty store")
}

func (v *emptyValues) AcceptOrds(Bits) Bits {
	return nil
}

func (v *emptyValues) Copy() (Values, error) {
	panic("vectors: copy of empty store")
}

package vectors

import (
	"fmt"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/internal/docidset"
	"github.com/hupe1980/quantvec/internal/ordmap"
	"github.com/hupe1980/quantvec/quantization"
)

// sparseValues is the store for fields where only some documents have
// a vector. Document-space position is delegated entirely to the
// document-id-set iterator; the ordinal at any position is the
// iterator's index.
type sparseValues struct {
	offHeap
	config   Config
	dataIn   bytesio.Reader // unsliced source, used to rebuild readers on Copy
	ordToDoc *ordmap.Reader
	set      *docidset.Set
	it       docidset.Iterator
}

func newSparse(config Config, dimension, size int, quantizer *quantization.ScalarQuantizer, compress bool, dataIn, slice bytesio.Reader) (*sparseValues, error) {
	m, err := ordmap.NewReader(dataIn, config.OrdMapOffset, config.OrdMapLength)
	if err != nil {
		return nil, fmt.Errorf("vectors: open ordinal map: %w", err)
	}
	set, err := docidset.Load(dataIn, config.DocSetOffset, config.DocSetLength)
	if err != nil {
		return nil, fmt.Errorf("vectors: open doc id set: %w", err)
	}
	return &sparseValues{
		offHeap:  newOffHeap(dimension, size, quantizer, compress, slice),
		config:   config,
		dataIn:   dataIn,
		ordToDoc: m,
		set:      set,
		it:       set.Iterator(),
	}, nil
}

func (v *sparseValues) DocID() int {
	return v.it.DocID()
}

func (v *sparseValues) NextDoc() (int, error) {
	return v.it.NextDoc()
}

func (v *sparseValues) Advance(target int) (int, error) {
	return v.it.Advance(target)
}

func (v *sparseValues) VectorValue() ([]byte, error) {
	return v.vectorValueAt(v.it.Index())
}

func (v *sparseValues) VectorValueAt(ord int) ([]byte, error) {
	return v.vectorValueAt(ord)
}

func (v *sparseValues) OrdToDoc(ord int) int {
	return int(v.ordToDoc.Get(ord))
}

// AcceptOrds translates lazily: membership of ordinal i is looked up
// at accept time through the ordinal map, nothing is materialized.
func (v *sparseValues) AcceptOrds(acceptDocs Bits) Bits {
	if acceptDocs == nil {
		return nil
	}
	return &acceptOrds{values: v, acceptDocs: acceptDocs}
}

func (v *sparseValues) Copy() (Values, error) {
	return newSparse(v.config, v.dimension, v.size, v.quantizer, v.compress, v.dataIn.Clone(), v.slice.Clone())
}

type acceptOrds struct {
	values     *sparseValues
	acceptDocs Bits
}

func (a *acceptOrds) Get(ord int) bool {
	return a.acceptDocs.Get(a.values.OrdToDoc(ord))
}

func (a *acceptOrds) Len() int {
	return a.values.size
}

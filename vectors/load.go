package vectors

import (
	"fmt"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/quantization"
)

const (
	// denseMarker in Config.DocSetOffset means every document has a
	// vector and no set is persisted.
	denseMarker = -1
	// emptyMarker in Config.DocSetOffset means the field has no
	// vectors at all.
	emptyMarker = -2
)

// Config describes where a field's ordinal-mapping sections live
// inside the unsliced data source. It is produced at write time and
// persisted in the field metadata.
type Config struct {
	// DocSetOffset locates the serialized document-id set, or carries
	// the dense (-1) / empty (-2) marker.
	DocSetOffset int64
	DocSetLength int64

	// OrdMapOffset locates the ordinal to document id map. Only
	// meaningful for sparse fields.
	OrdMapOffset int64
	OrdMapLength int64
}

// DenseConfig returns the descriptor for a field where ordinal ==
// document id.
func DenseConfig() Config {
	return Config{DocSetOffset: denseMarker}
}

// EmptyConfig returns the descriptor for a field with no vectors.
func EmptyConfig() Config {
	return Config{DocSetOffset: emptyMarker}
}

// SparseConfig returns the descriptor for a field with an explicit
// ordinal/document mapping.
func SparseConfig(docSetOffset, docSetLength, ordMapOffset, ordMapLength int64) Config {
	return Config{
		DocSetOffset: docSetOffset,
		DocSetLength: docSetLength,
		OrdMapOffset: ordMapOffset,
		OrdMapLength: ordMapLength,
	}
}

// IsEmpty reports whether the field has no vectors.
func (c Config) IsEmpty() bool {
	return c.DocSetOffset == emptyMarker
}

// IsDense reports whether every document has a vector.
func (c Config) IsDense() bool {
	return c.DocSetOffset == denseMarker
}

// Load opens the vector store for one field. The vector records are
// sliced from [dataOffset, dataOffset+dataLength) of data; the sparse
// mapping sections are read from the unsliced source, which stays
// borrowed for Copy. Any read failure during construction aborts the
// load; no partial store is returned.
func Load(config Config, dimension, size int, quantizer *quantization.ScalarQuantizer, compress bool, dataOffset, dataLength int64, data bytesio.Reader) (Values, error) {
	if config.IsEmpty() {
		return newEmpty(dimension), nil
	}
	slice, err := data.Slice(dataOffset, dataLength)
	if err != nil {
		return nil, fmt.Errorf("vectors: slice vector data: %w", err)
	}
	if config.IsDense() {
		return newDense(dimension, size, quantizer, compress, slice), nil
	}
	return newSparse(config, dimension, size, quantizer, compress, data, slice)
}

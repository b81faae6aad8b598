// Package quantvec reads scalar-quantized vector embeddings from
// memory-mapped segment files. Each stored vector is a fixed-stride
// record of quantized bytes followed by a float32 score correction;
// fields may be dense (every document has a vector), sparse or empty.
//
// A SegmentReader maps the file once and hands out per-field vector
// stores over the shared mapping. Stores are single-consumer; use
// Values.Copy for concurrent searches.
package quantvec

import (
	"context"
	"sync/atomic"

	"github.com/hupe1980/quantvec/internal/segcore"
	"github.com/hupe1980/quantvec/quantization"
	"github.com/hupe1980/quantvec/vectors"
)

// ErrClosed is returned when using a reader after Close.
var ErrClosed = segcore.ErrClosed

// ErrUnknownField is returned for a field the segment does not carry.
var ErrUnknownField = segcore.ErrUnknownField

// FieldInfo describes one vector field of a segment: its quantization
// parameters and where its sections live in the file.
type FieldInfo struct {
	// Name identifies the field within the segment.
	Name string

	// Dimension is the logical vector dimension.
	Dimension int

	// Size is the number of vectors stored for the field.
	Size int

	// Quantizer holds the scalar quantization parameters the vectors
	// were written with.
	Quantizer *quantization.ScalarQuantizer

	// Compress indicates 4-bit nibble packing of the stored bytes.
	// Only effective when the quantizer uses at most 4 bits.
	Compress bool

	// DataOffset and DataLength locate the field's vector records.
	DataOffset int64
	DataLength int64

	// Config locates the ordinal-mapping sections for sparse fields,
	// or carries the dense/empty marker.
	Config vectors.Config
}

// SegmentReader gives access to the vector fields of one mapped
// segment file.
type SegmentReader struct {
	core   *segcore.Core
	logger *Logger
	closed atomic.Bool
}

// Open maps the segment file at path. The fields slice is the
// segment's persisted field layout. The mapping stays open until the
// last reference is released through Close.
func Open(path string, fields []FieldInfo, optFns ...Option) (*SegmentReader, error) {
	o := applyOptions(optFns)

	infos := make([]segcore.FieldInfo, len(fields))
	for i, f := range fields {
		infos[i] = segcore.FieldInfo{
			Name:       f.Name,
			Dimension:  f.Dimension,
			Size:       f.Size,
			Quantizer:  f.Quantizer,
			Compress:   f.Compress,
			DataOffset: f.DataOffset,
			DataLength: f.DataLength,
			Config:     f.Config,
		}
	}

	core, err := segcore.Open(path, infos, o.limiter.controller())
	o.logger.LogOpen(context.Background(), path, coreBytes(core), len(fields), err)
	if err != nil {
		return nil, err
	}
	core.OnClose(o.logger.LogClose)

	return &SegmentReader{core: core, logger: o.logger}, nil
}

func coreBytes(c *segcore.Core) int64 {
	if c == nil {
		return 0
	}
	return c.MappedBytes()
}

// Path returns the segment file path.
func (r *SegmentReader) Path() string {
	return r.core.Path()
}

// Fields returns the names of the segment's vector fields.
func (r *SegmentReader) Fields() []string {
	return r.core.Fields()
}

// MappedBytes returns the size of the underlying mapping.
func (r *SegmentReader) MappedBytes() int64 {
	return r.core.MappedBytes()
}

// Vectors opens a vector store over the named field. The store borrows
// the mapping; Retain the reader if the store must outlive it.
func (r *SegmentReader) Vectors(field string) (vectors.Values, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.core.Vectors(field)
}

// Retain pins the underlying mapping and returns a release function.
// Useful when a search hands a store to a goroutine that may finish
// after the reader is closed.
func (r *SegmentReader) Retain() (release func() error, err error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	if err := r.core.IncRef(); err != nil {
		return nil, err
	}
	return r.core.DecRef, nil
}

// Warm faults the segment's vector data into the page cache, paced by
// the limiter's warmup budget.
func (r *SegmentReader) Warm(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	err := r.core.Warm(ctx)
	r.logger.LogWarm(ctx, r.core.Path(), err)
	return err
}

// Close releases the reader's reference on the mapping. Idempotent.
// The mapping is unmapped once every Retain release has run too.
func (r *SegmentReader) Close() error {
	if r == nil || r.closed.Swap(true) {
		return nil
	}
	return r.core.DecRef()
}

// Package docidset enumerates increasing document ids persisted for a
// field. The traversal position doubles as the ordinal: the i-th
// document returned by an iterator has ordinal i.
package docidset

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/quantvec/bytesio"
)

// NoMoreDocs is the document id returned once iteration is exhausted.
const NoMoreDocs = math.MaxInt32

// Iterator enumerates a strictly increasing sequence of document ids.
// Advance targets must be strictly greater than the current doc;
// violating that is a caller bug, not a detected error.
type Iterator interface {
	// DocID returns the current document id, -1 before the first
	// NextDoc and NoMoreDocs after exhaustion.
	DocID() int

	// NextDoc advances to the next document id.
	NextDoc() (int, error)

	// Advance moves to the first document id >= target.
	Advance(target int) (int, error)

	// Index returns the ordinal of the current document: the number of
	// documents preceding it in the set.
	Index() int
}

// Set is the immutable, persisted set of documents that carry a value.
// It is safely shared across consumers; each consumer derives its own
// Iterator.
type Set struct {
	rb *roaring.Bitmap
}

// Load reads a serialized set from [off, off+length) of r.
func Load(r bytesio.Reader, off, length int64) (*Set, error) {
	buf := make([]byte, length)
	if err := r.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("docidset: read set: %w", err)
	}
	rb := roaring.New()
	if _, err := rb.FromBuffer(buf); err != nil {
		return nil, fmt.Errorf("docidset: parse set: %w", err)
	}
	return &Set{rb: rb}, nil
}

// FromDocs builds a set from strictly increasing document ids.
func FromDocs(docs []uint32) *Set {
	rb := roaring.New()
	rb.AddMany(docs)
	return &Set{rb: rb}
}

// Encode returns the serialized form of the set.
func (s *Set) Encode() ([]byte, error) {
	return s.rb.ToBytes()
}

// Cardinality returns the number of documents in the set.
func (s *Set) Cardinality() int {
	return int(s.rb.GetCardinality())
}

// Iterator returns a fresh iterator positioned before the first
// document. Iterators share the set's storage read-only but never
// each other's cursor.
func (s *Set) Iterator() Iterator {
	return &setIterator{
		rb:    s.rb,
		it:    s.rb.Iterator(),
		doc:   -1,
		index: -1,
	}
}

type setIterator struct {
	rb    *roaring.Bitmap
	it    roaring.IntPeekable
	doc   int
	index int
}

func (i *setIterator) DocID() int {
	return i.doc
}

func (i *setIterator) Index() int {
	return i.index
}

func (i *setIterator) NextDoc() (int, error) {
	if !i.it.HasNext() {
		i.doc = NoMoreDocs
		return i.doc, nil
	}
	i.doc = int(i.it.Next())
	i.index++
	return i.doc, nil
}

func (i *setIterator) Advance(target int) (int, error) {
	if target >= NoMoreDocs {
		i.doc = NoMoreDocs
		return i.doc, nil
	}
	i.it.AdvanceIfNeeded(uint32(target))
	if !i.it.HasNext() {
		i.doc = NoMoreDocs
		return i.doc, nil
	}
	i.doc = int(i.it.Next())
	i.index = int(i.rb.Rank(uint32(i.doc))) - 1
	return i.doc, nil
}

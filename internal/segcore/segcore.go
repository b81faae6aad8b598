// Package segcore owns the shared, reference-counted readers of one
// segment. The segment file is mapped once; every consumer of its
// vector fields borrows the mapping through a Core and pins it with a
// reference. The last reference to go closes the mapping and returns
// its memory to the resource controller.
package segcore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/internal/mmap"
	"github.com/hupe1980/quantvec/internal/resource"
	"github.com/hupe1980/quantvec/quantization"
	"github.com/hupe1980/quantvec/vectors"
)

var (
	// ErrClosed is returned when pinning a core whose last reference is
	// already gone.
	ErrClosed = errors.New("segcore: core is closed")
	// ErrUnknownField is returned for a field the segment does not
	// carry.
	ErrUnknownField = errors.New("segcore: unknown field")
)

// FieldInfo describes where one vector field lives inside the segment
// file. It is produced at write time and persisted in the segment
// metadata.
type FieldInfo struct {
	Name      string
	Dimension int
	Size      int
	Quantizer *quantization.ScalarQuantizer
	Compress  bool

	// DataOffset locates the field's vector records in the file.
	DataOffset int64
	DataLength int64

	// Config locates the field's ordinal-mapping sections.
	Config vectors.Config
}

// Core holds the mapped segment file and its per-field layout. A Core
// starts with one reference owned by the opener; consumers that want
// to outlive the opener must IncRef and DecRef when done.
type Core struct {
	path   string
	ctrl   *resource.Controller
	fields map[string]FieldInfo

	mapping *mmap.Mapping

	ref atomic.Int32

	mu        sync.Mutex
	listeners []func(path string)
}

// Open maps the segment file at path and validates the field layout
// against it. The mapping's size is reserved with the controller; a
// nil controller disables accounting.
func Open(path string, fields []FieldInfo, ctrl *resource.Controller) (*Core, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segcore: map %s: %w", path, err)
	}

	if err := ctrl.Reserve(int64(m.Size())); err != nil {
		m.Close()
		return nil, fmt.Errorf("segcore: reserve %s: %w", path, err)
	}

	c := &Core{
		path:    path,
		ctrl:    ctrl,
		fields:  make(map[string]FieldInfo, len(fields)),
		mapping: m,
	}
	c.ref.Store(1)

	size := int64(m.Size())
	for _, fi := range fields {
		if fi.DataOffset < 0 || fi.DataLength < 0 || fi.DataOffset+fi.DataLength > size {
			c.DecRef()
			return nil, fmt.Errorf("segcore: field %s: data section [%d, %d) outside segment of %d bytes",
				fi.Name, fi.DataOffset, fi.DataOffset+fi.DataLength, size)
		}
		c.fields[fi.Name] = fi
	}
	return c, nil
}

// Path returns the segment file path.
func (c *Core) Path() string {
	return c.path
}

// MappedBytes returns the size of the underlying mapping.
func (c *Core) MappedBytes() int64 {
	return int64(c.mapping.Size())
}

// RefCount returns the current reference count. Racy by nature, meant
// for introspection and tests.
func (c *Core) RefCount() int32 {
	return c.ref.Load()
}

// IncRef pins the core. Fails with ErrClosed once the count has hit
// zero: a dead core never comes back.
func (c *Core) IncRef() error {
	for {
		n := c.ref.Load()
		if n <= 0 {
			return ErrClosed
		}
		if c.ref.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// DecRef drops one reference. The reference that brings the count to
// zero closes the mapping, releases the reserved memory and notifies
// the closed listeners.
func (c *Core) DecRef() error {
	n := c.ref.Add(-1)
	if n > 0 {
		return nil
	}
	if n < 0 {
		return fmt.Errorf("segcore: %s: reference count went negative", c.path)
	}

	err := c.mapping.Close()
	c.ctrl.Release(int64(c.mapping.Size()))

	c.mu.Lock()
	listeners := c.listeners
	c.listeners = nil
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(c.path)
	}
	return err
}

// OnClose registers fn to run when the last reference goes. If the
// core is already closed, fn runs immediately.
func (c *Core) OnClose(fn func(path string)) {
	c.mu.Lock()
	if c.ref.Load() <= 0 {
		c.mu.Unlock()
		fn(c.path)
		return
	}
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Fields returns the names of the vector fields in the segment.
func (c *Core) Fields() []string {
	names := make([]string, 0, len(c.fields))
	for name := range c.fields {
		names = append(names, name)
	}
	return names
}

// Vectors opens a vector store over the named field. Each call returns
// a store with independent cursor and decode state; the store borrows
// the mapping and must not be used past the core's last DecRef.
func (c *Core) Vectors(field string) (vectors.Values, error) {
	if c.ref.Load() <= 0 {
		return nil, ErrClosed
	}
	fi, ok := c.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	data := bytesio.NewSliceReader(c.mapping.Bytes())
	return vectors.Load(fi.Config, fi.Dimension, fi.Size, fi.Quantizer, fi.Compress,
		fi.DataOffset, fi.DataLength, data)
}

// warmChunk is the granularity of warmup reads and of the IO budget.
const warmChunk = 1 << 20

// Warm faults the segment's vector data into the page cache. It takes
// a warmup slot from the controller and paces its reads against the
// warmup IO budget so foreground searches keep their throughput.
func (c *Core) Warm(ctx context.Context) error {
	if c.ref.Load() <= 0 {
		return ErrClosed
	}
	if err := c.ctrl.AcquireWarmer(ctx); err != nil {
		return err
	}
	defer c.ctrl.ReleaseWarmer()

	if err := c.mapping.Advise(mmap.AccessWillNeed); err != nil {
		return fmt.Errorf("segcore: advise %s: %w", c.path, err)
	}

	for _, fi := range c.fields {
		region, err := c.mapping.Region(int(fi.DataOffset), int(fi.DataLength))
		if err != nil {
			return fmt.Errorf("segcore: warm field %s: %w", fi.Name, err)
		}
		data := region.Bytes()
		for off := 0; off < len(data); off += warmChunk {
			end := min(off+warmChunk, len(data))
			if err := c.ctrl.WaitIO(ctx, end-off); err != nil {
				return err
			}
			// Touch one byte per page; the read faults the page in.
			for p := off; p < end; p += 4096 {
				_ = data[p]
			}
		}
	}
	return nil
}

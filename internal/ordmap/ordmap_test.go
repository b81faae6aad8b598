package ordmap

import (
	"errors"
	"testing"

	"github.com/hupe1980/quantvec/bytesio"
	"github.com/hupe1980/quantvec/testutil"
)

func roundTrip(t *testing.T, values []uint32) *Reader {
	t.Helper()
	encoded, err := Encode(values)
	if err != nil {
		t.Fatal(err)
	}

	// Place the section at a non-zero offset inside a larger region.
	region := make([]byte, len(encoded)+10)
	copy(region[10:], encoded)

	m, err := NewReader(bytesio.NewSliceReader(region), 10, int64(len(encoded)))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRoundTripSmall(t *testing.T) {
	values := []uint32{2, 5, 9, 11}
	m := roundTrip(t, values)

	if m.Count() != len(values) {
		t.Fatalf("expected count %d, got %d", len(values), m.Count())
	}
	for ord, want := range values {
		if got := m.Get(ord); got != want {
			t.Errorf("ordinal %d: expected %d, got %d", ord, want, got)
		}
	}
}

func TestRoundTripMultiBlock(t *testing.T) {
	rng := testutil.NewRNG(11)
	values := rng.SortedDocIDs(1000, 1<<20)
	m := roundTrip(t, values)

	for ord, want := range values {
		if got := m.Get(ord); got != want {
			t.Fatalf("ordinal %d: expected %d, got %d", ord, want, got)
		}
	}
}

func TestRoundTripWideDeltas(t *testing.T) {
	// Deltas exceeding 16 bits force 4-byte entries.
	values := []uint32{0, 1 << 20, 1 << 21, 1 << 30}
	m := roundTrip(t, values)

	for ord, want := range values {
		if got := m.Get(ord); got != want {
			t.Errorf("ordinal %d: expected %d, got %d", ord, want, got)
		}
	}
}

func TestRoundTripEmpty(t *testing.T) {
	m := roundTrip(t, nil)
	if m.Count() != 0 {
		t.Fatalf("expected count 0, got %d", m.Count())
	}
}

func TestEncodeRejectsNonMonotonic(t *testing.T) {
	if _, err := Encode([]uint32{1, 1}); !errors.Is(err, ErrNotMonotonic) {
		t.Errorf("expected ErrNotMonotonic, got %v", err)
	}
	if _, err := Encode([]uint32{5, 3}); !errors.Is(err, ErrNotMonotonic) {
		t.Errorf("expected ErrNotMonotonic, got %v", err)
	}
}

func TestNewReaderRejectsCorrupt(t *testing.T) {
	encoded, err := Encode([]uint32{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	// Inflate the value count so the block count no longer matches.
	bad := append([]byte(nil), encoded...)
	bad[0] = 0xFF
	bad[1] = 0xFF
	if _, err := NewReader(bytesio.NewSliceReader(bad), 0, int64(len(bad))); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}

	// Truncated section.
	if _, err := NewReader(bytesio.NewSliceReader(encoded[:4]), 0, 4); err == nil {
		t.Error("expected error for truncated section")
	}
}

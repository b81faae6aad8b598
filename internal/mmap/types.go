package mmap

import "errors"

// AccessPattern hints to the kernel how a mapping will be read.
type AccessPattern int

const (
	// AccessDefault leaves the kernel readahead policy unchanged.
	AccessDefault AccessPattern = iota
	// AccessSequential expects a front-to-back scan, e.g. warming a
	// vector data section.
	AccessSequential
	// AccessRandom expects scattered reads, the usual pattern for
	// ordinal lookups during search.
	AccessRandom
	// AccessWillNeed asks the kernel to fault the pages in soon.
	AccessWillNeed
	// AccessDontNeed tells the kernel the pages can be reclaimed.
	AccessDontNeed
)

var (
	// ErrClosed is returned when accessing a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the file size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned for a region outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned for a negative read offset.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package region

import "unsafe"

// Offset is a byte count from the start of a Region. Zero is reserved
// to mean "no reference" — the superblock itself is never addressed by
// offset, so the collision between "offset 0" and "a real reference to
// byte 0" is harmless, matching the original C implementation.
type Offset uint64

// Null is the reserved "no reference" offset.
const Null Offset = 0

// Region is a contiguous byte span that backs an entire filesystem.
// Its bytes may be heap-allocated (New) or memory-mapped from a
// backing file (Attach, used together with a platform mmap helper).
// Nothing that touches a Region's contents may retain a Go pointer,
// slice, or interface value derived from it across a call boundary —
// every reference back into the region must be re-derived from an
// Offset on each use, per the position-independence requirement this
// package exists to enforce.
type Region struct {
	Bytes []byte
}

// New allocates a fresh, zeroed, heap-backed region of the given size.
// This is what a first mount looks like: the whole span reads as
// zero bytes.
func New(size int) *Region {
	return &Region{Bytes: make([]byte, size)}
}

// Attach wraps an existing byte slice as a region without copying it.
// Used to reattach a region backed by a memory-mapped file: the bytes
// may already contain a previously written filesystem.
func Attach(data []byte) *Region {
	return &Region{Bytes: data}
}

// Size returns the total number of bytes in the region.
func (r *Region) Size() int { return len(r.Bytes) }

// base returns the address of the region's first byte. Every Offset is
// interpreted relative to this address, and this address alone; it is
// never stored anywhere inside the region.
func (r *Region) base() unsafe.Pointer {
	if len(r.Bytes) == 0 {
		return nil
	}
	return unsafe.Pointer(&r.Bytes[0])
}

// Valid reports whether off addresses a live byte range of n bytes
// entirely inside the region. It implements invariant I1: for every
// offset stored anywhere, 0 < offset < region_size and offset+n does
// not run past the end of the region.
func (r *Region) Valid(off Offset, n int) bool {
	if off == Null || n < 0 {
		return false
	}
	end := uint64(off) + uint64(n)
	return end <= uint64(len(r.Bytes)) && end >= uint64(off)
}

// At returns the n-byte slice of the region's backing array starting
// at off, or nil if the range is not entirely inside the region. This
// is the only sanctioned way for calling code to read or write region
// bytes directly (e.g. file content, directory names).
func (r *Region) At(off Offset, n int) []byte {
	if !r.Valid(off, n) {
		return nil
	}
	return r.Bytes[off : uint64(off)+uint64(n)]
}

// PointerAt reinterprets the n bytes at off as a *T, where n is
// sizeof(T). It is the region-relative equivalent of the source
// specification's offset_to_pointer, specialized so that callers get
// a typed, directly-mutable view instead of a raw byte slice. Returns
// nil if off does not address a live sizeof(T)-byte range.
//
// T must be a plain fixed-layout record: no pointers, slices, maps,
// interfaces, or strings, since those would smuggle a process-local
// address into the region. Every type this package's callers pass to
// PointerAt is composed entirely of fixed-size numeric fields, which
// keeps it safe and keeps every field 8-byte aligned as long as the
// region's backing array itself is 8-byte aligned (true for both
// make([]byte, n) and mmap, which return page- or word-aligned
// memory on every platform this code targets).
func PointerAt[T any](r *Region, off Offset) *T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if !r.Valid(off, size) {
		return nil
	}
	return (*T)(unsafe.Pointer(&r.Bytes[off]))
}

// SliceAt reinterprets the n*sizeof(T) bytes at off as a []T backed
// directly by the region's array: writes through the returned slice
// mutate the region in place, and the slice is only valid until the
// caller returns (the same lifetime discipline PointerAt imposes).
// Returns nil if the range is not entirely inside the region. Used for
// homogeneous fixed-width runs such as a directory's children array,
// where PointerAt's single-record view isn't the right shape.
func SliceAt[T any](r *Region, off Offset, n int) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if n < 0 || !r.Valid(off, size*n) {
		return nil
	}
	if n == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&r.Bytes[off])), n)
}

// ToOffset returns the offset of ptr within the region, or Null if ptr
// does not point inside the region. This is the inverse of PointerAt
// and exists for the same reason offset_to_pointer's counterpart,
// pointer_to_offset, exists in the original C implementation: to convert a
// pointer obtained from region bytes back into a storable offset
// before the pointer is written into some other part of the region
// (for example, storing a newly allocated inode's address into a
// directory's children array).
func ToOffset[T any](r *Region, ptr *T) Offset {
	if ptr == nil || len(r.Bytes) == 0 {
		return Null
	}
	base := uintptr(r.base())
	p := uintptr(unsafe.Pointer(ptr))
	if p < base {
		return Null
	}
	off := p - base
	if off >= uintptr(len(r.Bytes)) {
		return Null
	}
	return Offset(off)
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package allocator

import (
	"testing"

	"github.com/regionfs/regionfs/lib/region"
)

func newTestAllocator(t *testing.T, size int, firstFree region.Offset) (*Allocator, *region.Region) {
	t.Helper()
	r := region.New(size)
	head := new(region.Offset)
	a := New(r, head)
	a.InitialFreeBlock(firstFree)
	return a, r
}

func TestAllocSplitsBlock(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)

	p := a.Alloc(32)
	if p == region.Null {
		t.Fatal("Alloc failed on a freshly bootstrapped region")
	}
	if got := int(a.header(headerOf(p)).Remaining); got != 32 {
		t.Fatalf("allocated block capacity = %d, want 32", got)
	}
	if got := a.TotalFree(); got != 256-8-8-32-8 {
		t.Fatalf("total free = %d, want %d", got, 256-8-8-32-8)
	}
}

func TestAllocAbsorbsUnsplittableRemainder(t *testing.T) {
	// A region exactly large enough for one 16-byte allocation plus a
	// header leaves nothing worth splitting off, so the whole block is
	// handed to the caller.
	a, _ := newTestAllocator(t, 32, 8)
	p := a.Alloc(8)
	if p == region.Null {
		t.Fatal("Alloc failed")
	}
	if got := int(a.header(headerOf(p)).Remaining); got != 16 {
		t.Fatalf("capacity = %d, want 16 (absorbed, not split)", got)
	}
	if a.TotalFree() != 0 {
		t.Fatalf("expected no free blocks left, got %d bytes free", a.TotalFree())
	}
}

func TestAllocReturnsNullWhenExhausted(t *testing.T) {
	a, _ := newTestAllocator(t, 24, 8) // 8 bytes of payload after the header
	if p := a.Alloc(16); p != region.Null {
		t.Fatalf("expected Null, got offset %d", p)
	}
}

func TestFreeCoalescesBothNeighbours(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)

	p1 := a.Alloc(32)
	p2 := a.Alloc(32)
	p3 := a.Alloc(32)
	if p1 == region.Null || p2 == region.Null || p3 == region.Null {
		t.Fatal("setup allocations failed")
	}

	a.Free(p1)
	a.Free(p3)
	beforeMerge := a.MaxFreeChunk()

	a.Free(p2)

	if got := a.MaxFreeChunk(); got <= beforeMerge {
		t.Fatalf("freeing the middle block did not grow the largest chunk: before=%d after=%d", beforeMerge, got)
	}
	if n := freeListLength(a); n != 1 {
		t.Fatalf("expected all three freed blocks to coalesce into one, got %d free blocks", n)
	}
}

func freeListLength(a *Allocator) int {
	n := 0
	cur := *a.head
	for cur != region.Null {
		n++
		cur = *a.nextPtr(payloadOf(cur))
	}
	return n
}

func TestBestFitTiePicksLowestOffset(t *testing.T) {
	r := region.New(300)
	head := new(region.Offset)
	a := New(r, head)

	// Two equal-capacity free blocks, deliberately not adjacent to
	// each other so Alloc can't coalesce its way around the tie.
	a.header(8).Remaining = 64
	*a.nextPtr(payloadOf(8)) = 200
	a.header(200).Remaining = 64
	*a.nextPtr(payloadOf(200)) = region.Null
	*head = 8

	p := a.Alloc(64)
	if want := payloadOf(8); p != want {
		t.Fatalf("Alloc chose offset %d, want the lower-offset block at %d", p, want)
	}
}

func TestExtendIntoNeighbourGrowsInPlace(t *testing.T) {
	a, r := newTestAllocator(t, 256, 8)

	p := a.Alloc(32)
	copy(r.At(p, 5), []byte("hello"))

	if !a.ExtendIntoNeighbour(p, 64) {
		t.Fatal("expected the trailing free block to satisfy the extend")
	}
	if got := int(a.header(headerOf(p)).Remaining); got != 64 {
		t.Fatalf("capacity after extend = %d, want 64", got)
	}
	if string(r.At(p, 5)) != "hello" {
		t.Fatal("extending in place must not disturb existing payload bytes")
	}
}

func TestExtendIntoNeighbourFailsWhenNeighbourIsAllocated(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)

	p1 := a.Alloc(32)
	_ = a.Alloc(32) // occupies the block immediately after p1

	if a.ExtendIntoNeighbour(p1, 64) {
		t.Fatal("expected extend to fail: the neighbour is allocated, not free")
	}
}

func TestReallocShrinkSplitsTail(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)

	p := a.Alloc(64)
	shrunk := a.Realloc(p, 16)
	if shrunk != p {
		t.Fatalf("shrinking in place should keep the same offset, got %d want %d", shrunk, p)
	}
	if got := int(a.header(headerOf(p)).Remaining); got != 16 {
		t.Fatalf("capacity after shrink = %d, want 16", got)
	}
}

func TestReallocShrinkNotProfitableIsNoop(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)

	p := a.Alloc(24)
	// Shrinking to 20 would leave a 4-byte, unusable remainder once the
	// new tail's own header is accounted for.
	same := a.Realloc(p, 20)
	if same != p {
		t.Fatalf("expected the allocation to be left alone, got a different offset")
	}
	if got := int(a.header(headerOf(p)).Remaining); got != 24 {
		t.Fatalf("capacity changed to %d despite an unprofitable shrink", got)
	}
}

func TestReallocGrowFallsBackToCopyWhenNeighbourIsBusy(t *testing.T) {
	a, r := newTestAllocator(t, 256, 8)

	p1 := a.Alloc(32)
	copy(r.At(p1, 5), []byte("hello"))
	_ = a.Alloc(32) // blocks p1's in-place extension

	grown := a.Realloc(p1, 64)
	if grown == region.Null {
		t.Fatal("Realloc should have found space elsewhere in the region")
	}
	if grown == p1 {
		t.Fatal("expected Realloc to relocate, since the neighbour was busy")
	}
	if string(r.At(grown, 5)) != "hello" {
		t.Fatal("Realloc must copy the live payload to the new location")
	}
	if got := int(a.header(headerOf(grown)).Remaining); got != 64 {
		t.Fatalf("capacity at new location = %d, want 64", got)
	}
}

func TestReallocWithNullOffsetAllocates(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)
	p := a.Realloc(region.Null, 32)
	if p == region.Null {
		t.Fatal("Realloc(Null, n) should behave like Alloc(n)")
	}
}

func TestReallocWithZeroSizeFrees(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)
	p := a.Alloc(32)
	before := a.TotalFree()

	if got := a.Realloc(p, 0); got != region.Null {
		t.Fatalf("Realloc(p, 0) should return Null, got %d", got)
	}
	if a.TotalFree() <= before {
		t.Fatal("Realloc(p, 0) should have returned the block to the free list")
	}
}

func TestMaxFreeChunkTracksLargestBlock(t *testing.T) {
	a, _ := newTestAllocator(t, 256, 8)
	initial := a.MaxFreeChunk()
	if want := 256 - 8 - 8; initial != want {
		t.Fatalf("MaxFreeChunk on a fresh region = %d, want %d", initial, want)
	}

	a.Alloc(200)
	if got := a.MaxFreeChunk(); got >= initial {
		t.Fatalf("MaxFreeChunk should have shrunk after a large allocation: before=%d after=%d", initial, got)
	}
}

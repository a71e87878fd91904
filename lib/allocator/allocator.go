// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package allocator

import "github.com/regionfs/regionfs/lib/region"

// header precedes every block's payload, free or allocated, and
// records the payload's capacity in bytes.
type header struct {
	Remaining uint64
}

const (
	// headerSize is the number of bytes reserved immediately before
	// every block's payload.
	headerSize = region.Offset(8)

	// minPayload is the smallest payload an allocation may have: room
	// enough for a free block to later store its own "next" offset in
	// its own payload once freed. This is the original C implementation's
	// sizeof(free_block_header).
	minPayload = 16
)

// Allocator manages the region-local free list described by
// spec §4.B. It never allocates Go memory for bookkeeping — every
// free-list node lives inside the region, addressed by header offset.
type Allocator struct {
	r    *region.Region
	head *region.Offset
}

// New wraps head — normally the FreeHead field of the region's
// superblock — as the root of the free list. The Allocator mutates
// *head directly, so the superblock always reflects the current list.
func New(r *region.Region, head *region.Offset) *Allocator {
	return &Allocator{r: r, head: head}
}

func (a *Allocator) header(blockOff region.Offset) *header {
	return region.PointerAt[header](a.r, blockOff)
}

func payloadOf(blockOff region.Offset) region.Offset { return blockOff + headerSize }
func headerOf(payloadOff region.Offset) region.Offset { return payloadOff - headerSize }

// blockEnd returns the offset one past a block's payload — which,
// since blocks are packed contiguously with no gaps (invariant I2),
// is exactly the header offset of the block physically following it.
func blockEnd(blockOff region.Offset, hdr *header) region.Offset {
	return payloadOf(blockOff) + region.Offset(hdr.Remaining)
}

func (a *Allocator) nextPtr(payloadOff region.Offset) *region.Offset {
	return region.PointerAt[region.Offset](a.r, payloadOff)
}

func normalizeSize(size int) int {
	if size <= 0 {
		return 0
	}
	if size < minPayload {
		return minPayload
	}
	return size
}

// relink points prev's free-list successor (or the list head, if prev
// is Null) at next.
func (a *Allocator) relink(prev, next region.Offset) {
	if prev == region.Null {
		*a.head = next
	} else {
		*a.nextPtr(payloadOf(prev)) = next
	}
}

// settle finishes carving `need` payload bytes out of a block that now
// has `combined` bytes available at survivorOff (its own original
// capacity plus whatever neighbour, if any, was just merged into it).
// The block's old free-list slot — reached via prev/listNext — is
// either reused for the leftover free block or dropped entirely if the
// leftover isn't worth keeping.
func (a *Allocator) settle(survivorOff region.Offset, combined, need int, prev, listNext region.Offset) {
	survivor := a.header(survivorOff)
	residual := combined - need - int(headerSize)
	if residual < minPayload {
		// Internal fragmentation is absorbed into the allocation.
		survivor.Remaining = uint64(combined)
		a.relink(prev, listNext)
		return
	}

	survivor.Remaining = uint64(need)
	tailOff := payloadOf(survivorOff) + region.Offset(need)
	tail := a.header(tailOff)
	tail.Remaining = uint64(residual)
	*a.nextPtr(payloadOf(tailOff)) = listNext
	a.relink(prev, tailOff)
}

// Alloc returns the offset of a freshly usable payload region of at
// least size bytes, or region.Null if no free block is large enough.
func (a *Allocator) Alloc(size int) region.Offset {
	need := normalizeSize(size)
	if need == 0 {
		return region.Null
	}
	return a.bestFit(need)
}

// bestFit scans the free list for the smallest block that satisfies
// need, tie-breaking on lowest offset by only replacing the incumbent
// on a strictly smaller match (the list is walked in ascending offset
// order, so the first block seen at the minimum size is the lowest
// one).
func (a *Allocator) bestFit(need int) region.Offset {
	var prevOfBest, best region.Offset = region.Null, region.Null
	bestSize := -1

	prev := region.Null
	cur := *a.head
	for cur != region.Null {
		hdr := a.header(cur)
		rem := int(hdr.Remaining)
		if rem >= need && (bestSize == -1 || rem < bestSize) {
			best = cur
			prevOfBest = prev
			bestSize = rem
		}
		prev = cur
		cur = *a.nextPtr(payloadOf(cur))
	}

	if best == region.Null {
		return region.Null
	}

	listNext := *a.nextPtr(payloadOf(best))
	a.settle(best, bestSize, need, prevOfBest, listNext)
	return payloadOf(best)
}

// Free returns the block whose payload begins at payloadOff to the
// free list, eagerly merging with the immediately previous and/or
// next free block if they are contiguous with it.
func (a *Allocator) Free(payloadOff region.Offset) {
	if payloadOff == region.Null {
		return
	}
	a.insertFree(headerOf(payloadOff))
}

// insertFree performs a sorted insertion of the free block at blockOff
// and merges it with contiguous neighbours already on the list. It
// assumes the block's header.Remaining is already set to its true
// payload capacity. The freed payload is zeroed, as are the header and
// next pointer of any block absorbed by a merge, so a free leaves no
// stale bytes behind.
func (a *Allocator) insertFree(blockOff region.Offset) {
	hdr := a.header(blockOff)
	clear(a.r.At(payloadOf(blockOff), int(hdr.Remaining)))

	var prev region.Offset = region.Null
	cur := *a.head
	for cur != region.Null && cur < blockOff {
		prev = cur
		cur = *a.nextPtr(payloadOf(cur))
	}
	next := cur

	if next != region.Null && blockEnd(blockOff, hdr) == next {
		nextHdr := a.header(next)
		hdr.Remaining += uint64(headerSize) + nextHdr.Remaining
		merged := next
		next = *a.nextPtr(payloadOf(next))
		clear(a.r.At(merged, int(headerSize)+8))
	}
	*a.nextPtr(payloadOf(blockOff)) = next

	if prev != region.Null {
		prevHdr := a.header(prev)
		if blockEnd(prev, prevHdr) == blockOff {
			prevHdr.Remaining += uint64(headerSize) + hdr.Remaining
			*a.nextPtr(payloadOf(prev)) = next
			clear(a.r.At(blockOff, int(headerSize)+8))
			return
		}
	}

	a.relink(prev, blockOff)
}

// findFree reports whether target is currently the header offset of a
// free block, and if so, the offset of its predecessor in the sorted
// list (Null if target is the head).
func (a *Allocator) findFree(target region.Offset) (prev region.Offset, found bool) {
	prev = region.Null
	cur := *a.head
	for cur != region.Null {
		if cur == target {
			return prev, true
		}
		if cur > target {
			return region.Null, false
		}
		prev = cur
		cur = *a.nextPtr(payloadOf(cur))
	}
	return region.Null, false
}

// ExtendIntoNeighbour grows the allocation at payloadOff to newSize by
// absorbing the block immediately following it in the region, if that
// block is on the free list and, on its own, has enough capacity to
// satisfy the growth. It does not fall back to a wider search — that
// is Realloc's job — and it does not partially consume the neighbour
// when the neighbour alone isn't enough, per spec §4.B: the preferred
// neighbour wins only when it can fully satisfy the request.
func (a *Allocator) ExtendIntoNeighbour(payloadOff region.Offset, newSize int) bool {
	need := normalizeSize(newSize)
	blockOff := headerOf(payloadOff)
	hdr := a.header(blockOff)
	current := int(hdr.Remaining)
	if need <= current {
		return true
	}

	neighbourOff := blockEnd(blockOff, hdr)
	if !a.r.Valid(neighbourOff, int(headerSize)) {
		return false
	}
	prev, ok := a.findFree(neighbourOff)
	if !ok {
		return false
	}

	neighbourHdr := a.header(neighbourOff)
	combined := current + int(headerSize) + int(neighbourHdr.Remaining)
	if combined < need {
		return false
	}

	neighbourNext := *a.nextPtr(payloadOf(neighbourOff))
	a.settle(blockOff, combined, need, prev, neighbourNext)
	return true
}

// Realloc resizes the allocation at payloadOff to newSize, returning
// the (possibly unchanged) payload offset, or region.Null on failure.
// A payloadOff of region.Null behaves like Alloc; a newSize of zero
// behaves like Free.
func (a *Allocator) Realloc(payloadOff region.Offset, newSize int) region.Offset {
	if payloadOff == region.Null {
		return a.Alloc(newSize)
	}
	if newSize <= 0 {
		a.Free(payloadOff)
		return region.Null
	}

	need := normalizeSize(newSize)
	blockOff := headerOf(payloadOff)
	hdr := a.header(blockOff)
	current := int(hdr.Remaining)

	if current >= need {
		residual := current - need - int(headerSize)
		if residual < minPayload {
			return payloadOff
		}
		hdr.Remaining = uint64(need)
		tailOff := payloadOf(blockOff) + region.Offset(need)
		tail := a.header(tailOff)
		tail.Remaining = uint64(residual)
		a.insertFree(tailOff)
		return payloadOff
	}

	if a.ExtendIntoNeighbour(payloadOff, newSize) {
		return payloadOff
	}

	newOff := a.Alloc(newSize)
	if newOff == region.Null {
		return region.Null
	}
	copy(a.r.At(newOff, current), a.r.At(payloadOff, current))
	a.Free(payloadOff)
	return newOff
}

// Capacity reports the payload capacity recorded in the header of the
// allocated (or free) block at payloadOff. Used by callers such as
// lib/fsnode that derive an element count from a block's byte capacity
// instead of tracking it separately.
func (a *Allocator) Capacity(payloadOff region.Offset) int {
	return int(a.header(headerOf(payloadOff)).Remaining)
}

// MaxFreeChunk reports the size of the largest single free block.
func (a *Allocator) MaxFreeChunk() int {
	max := 0
	cur := *a.head
	for cur != region.Null {
		hdr := a.header(cur)
		if int(hdr.Remaining) > max {
			max = int(hdr.Remaining)
		}
		cur = *a.nextPtr(payloadOf(cur))
	}
	return max
}

// TotalFree reports the sum of every free block's payload capacity,
// used by statfs and by fsck's invariant checks.
func (a *Allocator) TotalFree() int {
	total := 0
	cur := *a.head
	for cur != region.Null {
		hdr := a.header(cur)
		total += int(hdr.Remaining)
		cur = *a.nextPtr(payloadOf(cur))
	}
	return total
}

// FreeBlock describes one block currently on the free list, as
// reported to external inspection tools.
type FreeBlock struct {
	// Offset is the block's header offset, not its payload offset.
	Offset  region.Offset
	Payload int
}

// WalkFree returns every block on the free list in ascending offset
// order (I3). fsck uses this to reconstruct the region's full extent
// map without reaching past the allocator's public surface.
func (a *Allocator) WalkFree() []FreeBlock {
	var blocks []FreeBlock
	cur := *a.head
	for cur != region.Null {
		hdr := a.header(cur)
		blocks = append(blocks, FreeBlock{Offset: cur, Payload: int(hdr.Remaining)})
		cur = *a.nextPtr(payloadOf(cur))
	}
	return blocks
}

// HeaderSize is the number of bytes reserved immediately before every
// block's payload, exposed so tooling can recover a block's full
// extent (header included) from a payload offset and Capacity.
const HeaderSize = headerSize

// PlaceBlock writes a block header at off recording capacity bytes of
// payload, without touching any free list, and returns the resulting
// payload offset. It exists for bootstrap code that must lay down a
// fixed, permanently-allocated block — the root directory's initial
// children array — before the free list exists to carve one from.
func PlaceBlock(r *region.Region, off region.Offset, capacity int) region.Offset {
	hdr := region.PointerAt[header](r, off)
	hdr.Remaining = uint64(capacity)
	return payloadOf(off)
}

// InitialFreeBlock installs the region's first, all-encompassing free
// block, spanning from firstFree to the end of the region. Called once
// by the bootstrap sequence when a region is mounted for the first
// time (spec §4.B "Initial state").
func (a *Allocator) InitialFreeBlock(firstFree region.Offset) {
	blockOff := firstFree
	hdr := a.header(blockOff)
	hdr.Remaining = uint64(a.r.Size()) - uint64(blockOff) - uint64(headerSize)
	*a.nextPtr(payloadOf(blockOff)) = region.Null
	*a.head = blockOff
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package allocator implements the region-local free-space allocator:
// a sorted, eagerly-coalesced singly linked free list living inside
// the region itself, per spec §4.B.
//
// Every block, free or allocated, is preceded by an 8-byte header
// storing its payload capacity. A free block additionally stores the
// offset of the next free block in the first 8 bytes of its own
// payload — there is no separate persistent "next" field, because an
// allocated block has no need for one and a free block's payload is,
// by definition, not holding live data. This halves the per-block
// bookkeeping cost relative to a design that reserves space for both
// fields unconditionally, and it is exactly the layout the reference
// implementation this package is grounded on uses (data_block_t's
// "remaining" word precedes the payload; its "next" field is read
// from, and only from, the payload of blocks currently on the free
// list).
//
// Alloc, Free, and Realloc all address payloads by their post-header
// offset — the same offset callers store in inodes, directory
// children slots, and file block chains. Only this package ever
// looks one header-width behind a payload offset.
package allocator

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsnode

import (
	"syscall"
	"unsafe"

	"github.com/regionfs/regionfs/lib/region"
)

var fileBlockSize = int(unsafe.Sizeof(FileBlock{}))

// FileBlockAt reinterprets the region bytes at off as a *FileBlock.
// Exported alongside InodeAt for tooling that walks a file's chain
// without going through ReadRange/WriteRange.
func (t *Tree) FileBlockAt(off region.Offset) *FileBlock {
	return region.PointerAt[FileBlock](t.R, off)
}

// tail walks file's block chain and returns the offset and pointer of
// its last block, or (Null, nil) for an empty file.
func (t *Tree) tail(file *FileBody) (region.Offset, *FileBlock) {
	if file.FirstBlock == region.Null {
		return region.Null, nil
	}
	off := file.FirstBlock
	fb := t.FileBlockAt(off)
	for fb.Next != region.Null {
		off = fb.Next
		fb = t.FileBlockAt(off)
	}
	return off, fb
}

// newFileBlock allocates a block header and its data area together.
func (t *Tree) newFileBlock(capacity int) (region.Offset, *FileBlock, syscall.Errno) {
	dataOff := t.A.Alloc(capacity)
	if dataOff == region.Null {
		return region.Null, nil, syscall.ENOSPC
	}
	hdrOff := t.A.Alloc(fileBlockSize)
	if hdrOff == region.Null {
		t.A.Free(dataOff)
		return region.Null, nil, syscall.ENOSPC
	}
	fb := t.FileBlockAt(hdrOff)
	*fb = FileBlock{Capacity: uint64(capacity), Data: dataOff}
	return hdrOff, fb, 0
}

// Grow extends file's block chain so its logical size reaches newSize,
// zero-filling every newly allocated byte — this is exactly what
// truncate's grow path needs, and it is also how write carves out the
// zero hole between the old EOF and an offset that lands past it. It
// first tops off any unused capacity left in the chain's tail block
// (the legacy of an earlier shrink that didn't release block
// capacity) before allocating new blocks of up to BlockSize bytes
// each. If space runs out partway through, every block this call
// allocated is freed and the chain is left exactly as it was found.
func (t *Tree) Grow(file *FileBody, newSize uint64) syscall.Errno {
	if newSize <= file.Size {
		return 0
	}

	total := file.Size
	tailOff, tail := t.tail(file)
	origTail := tail
	var origAllocated uint64
	if tail != nil {
		origAllocated = tail.Allocated
	}

	var allocated []region.Offset
	rollback := func() {
		for _, off := range allocated {
			fb := t.FileBlockAt(off)
			t.A.Free(fb.Data)
			t.A.Free(off)
		}
		if origTail == nil {
			file.FirstBlock = region.Null
		} else {
			origTail.Next = region.Null
			origTail.Allocated = origAllocated
		}
	}

	if tail != nil && tail.Allocated < tail.Capacity {
		room := tail.Capacity - tail.Allocated
		need := newSize - total
		fill := min(room, need)
		clear(t.R.At(tail.Data+region.Offset(tail.Allocated), int(fill)))
		tail.Allocated += fill
		total += fill
	}

	for total < newSize {
		capBytes := int(min(uint64(BlockSize), newSize-total))
		blkOff, fb, errno := t.newFileBlock(capBytes)
		if errno != 0 {
			rollback()
			return syscall.ENOSPC
		}
		allocated = append(allocated, blkOff)

		fb.Allocated = uint64(capBytes)
		clear(t.R.At(fb.Data, capBytes))

		if tailOff == region.Null {
			file.FirstBlock = blkOff
		} else {
			t.FileBlockAt(tailOff).Next = blkOff
		}
		tailOff = blkOff
		tail = fb
		total += uint64(capBytes)
	}

	return 0
}

// Shrink truncates file's block chain to newSize, freeing every block
// wholly beyond the new logical end in chain order. It leaves the
// surviving boundary block's Capacity untouched — only its Allocated
// count drops — so a later Grow can top that slack back off instead
// of allocating a fresh block for it.
func (t *Tree) Shrink(file *FileBody, newSize uint64) {
	if newSize >= file.Size {
		return
	}
	if newSize == 0 {
		t.freeChain(file.FirstBlock)
		file.FirstBlock = region.Null
		return
	}

	var pos uint64
	off := file.FirstBlock
	for off != region.Null {
		fb := t.FileBlockAt(off)
		blockEnd := pos + fb.Allocated
		if blockEnd >= newSize {
			fb.Allocated = newSize - pos
			t.freeChain(fb.Next)
			fb.Next = region.Null
			return
		}
		pos = blockEnd
		off = fb.Next
	}
}

func (t *Tree) freeChain(off region.Offset) {
	for off != region.Null {
		fb := t.FileBlockAt(off)
		next := fb.Next
		t.A.Free(fb.Data)
		t.A.Free(off)
		off = next
	}
}

// WriteRange copies data into file's block chain starting at offset.
// The chain must already have enough logical capacity — callers grow
// first via Grow, then write.
func (t *Tree) WriteRange(file *FileBody, offset uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	end := offset + uint64(len(data))

	var pos uint64
	off := file.FirstBlock
	for off != region.Null && pos < end {
		fb := t.FileBlockAt(off)
		blockStart, blockEnd := pos, pos+fb.Allocated

		if blockEnd > offset && blockStart < end {
			lo, hi := max(blockStart, offset), min(blockEnd, end)
			copy(t.R.At(fb.Data+region.Offset(lo-blockStart), int(hi-lo)), data[lo-offset:hi-offset])
		}

		pos = blockEnd
		off = fb.Next
	}
}

// ReadRange copies up to len(buf) bytes from file starting at offset
// into buf and returns the number of bytes copied, capped at
// file.Size-offset (0 if offset is already at or past EOF).
func (t *Tree) ReadRange(file *FileBody, offset uint64, buf []byte) int {
	if offset >= file.Size || len(buf) == 0 {
		return 0
	}
	n := uint64(len(buf))
	if remaining := file.Size - offset; n > remaining {
		n = remaining
	}
	end := offset + n

	var pos uint64
	off := file.FirstBlock
	for off != region.Null && pos < end {
		fb := t.FileBlockAt(off)
		blockStart, blockEnd := pos, pos+fb.Allocated

		if blockEnd > offset && blockStart < end {
			lo, hi := max(blockStart, offset), min(blockEnd, end)
			copy(buf[lo-offset:hi-offset], t.R.At(fb.Data+region.Offset(lo-blockStart), int(hi-lo)))
		}

		pos = blockEnd
		off = fb.Next
	}
	return int(n)
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsnode

import (
	"syscall"
	"unsafe"

	"github.com/regionfs/regionfs/lib/allocator"
	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/region"
)

// Tree is a mounted filesystem: a region, the allocator carving free
// space out of it, the superblock anchoring both, and the clock used
// to stamp inode timestamps.
type Tree struct {
	R     *region.Region
	A     *allocator.Allocator
	SB    *Superblock
	Clock clock.Clock
}

var (
	superblockSize = region.Offset(unsafe.Sizeof(Superblock{}))
	inodeSize      = region.Offset(unsafe.Sizeof(Inode{}))
	offsetSize     = int(unsafe.Sizeof(region.Offset(0)))
)

// reservedSize is the fixed area laid down once, at bootstrap, before
// the free list exists to carve anything from: the superblock, the
// root inode, and the root's initial children array (header
// included). Everything from here to the end of the region starts out
// as a single free block.
func reservedSize() region.Offset {
	childHeaderOff := superblockSize + inodeSize
	childPayload := region.Offset(InitialChildCap * offsetSize)
	return childHeaderOff + 8 + childPayload
}

// Mount attaches to a region, bootstrapping it if its superblock's
// magic is absent (spec: "if the superblock's magic is absent,
// initialise; otherwise do nothing"). Bootstrapping is idempotent to
// call repeatedly against an already-initialised region — it is a
// no-op whenever the magic is already present.
func Mount(r *region.Region, clk clock.Clock) (*Tree, syscall.Errno) {
	// The bootstrap free block needs its header plus a minimum 8-byte
	// payload for its own next pointer (InitialFreeBlock writes both),
	// even when the region has zero bytes of free space to hand out
	// afterward — a region that satisfies only reservedSize() would
	// have InitialFreeBlock write past the end of the region.
	if region.Offset(r.Size()) < reservedSize()+allocator.HeaderSize+8 {
		return nil, syscall.EINVAL
	}

	// The superblock sits at byte 0, which region.PointerAt rejects as
	// the reserved null offset, so it is overlaid on the region's first
	// bytes directly; the size check above guarantees they exist.
	sb := (*Superblock)(unsafe.Pointer(&r.Bytes[0]))
	if sb.Magic != Magic {
		bootstrap(r, sb, clk)
	}

	a := allocator.New(r, &sb.FreeHead)
	return &Tree{R: r, A: a, SB: sb, Clock: clk}, 0
}

func bootstrap(r *region.Region, sb *Superblock, clk clock.Clock) {
	root := region.PointerAt[Inode](r, superblockSize)
	*root = Inode{}
	root.Type = TypeDir
	now := ToTimespec(clk.Now())
	root.Atime = now
	root.Mtime = now

	childHeaderOff := superblockSize + inodeSize
	childPayload := InitialChildCap * offsetSize
	childrenOff := allocator.PlaceBlock(r, childHeaderOff, childPayload)
	clear(r.At(childrenOff, childPayload))

	dir := root.AsDir()
	dir.NumChildren = 1 // slot 0 is the reserved parent back-reference
	dir.Children = childrenOff

	sb.Magic = Magic
	sb.Size = uint64(r.Size())
	sb.Root = superblockSize
	sb.FreeHead = region.Null

	a := allocator.New(r, &sb.FreeHead)
	a.InitialFreeBlock(childrenOff + region.Offset(childPayload))
}

// InodeAt reinterprets the region bytes at off as an *Inode.
func (t *Tree) InodeAt(off region.Offset) *Inode {
	return region.PointerAt[Inode](t.R, off)
}

// Root returns the filesystem's root directory inode.
func (t *Tree) Root() *Inode {
	return t.InodeAt(t.SB.Root)
}

// RootOffset returns the offset of the root inode, which is also the
// slot-0 value every top-level directory's ".." resolves through.
func (t *Tree) RootOffset() region.Offset {
	return t.SB.Root
}

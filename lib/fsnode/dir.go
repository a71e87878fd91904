// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsnode

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/region"
)

// InitDirChildren allocates a directory's initial children array
// (capacity C₀) and sets slot 0 to parentOff, the reserved
// parent back-reference (0 for the root, per I5).
func (t *Tree) InitDirChildren(dir *DirBody, parentOff region.Offset) syscall.Errno {
	off := t.A.Alloc(InitialChildCap * offsetSize)
	if off == region.Null {
		return syscall.ENOSPC
	}
	clear(t.R.At(off, InitialChildCap*offsetSize))

	dir.Children = off
	dir.NumChildren = 1
	region.SliceAt[region.Offset](t.R, off, 1)[0] = parentOff
	return 0
}

// ChildOffsets returns a live view of a directory's children array,
// slot 0 (the parent back-reference) included.
func (t *Tree) ChildOffsets(dir *DirBody) []region.Offset {
	return region.SliceAt[region.Offset](t.R, dir.Children, int(dir.NumChildren))
}

// FindChild linearly scans dir's children, skipping slot 0, for one
// named name. Returns idx == -1 if not found.
func (t *Tree) FindChild(dir *DirBody, name string) (idx int, childOff region.Offset) {
	children := t.ChildOffsets(dir)
	for i := 1; i < len(children); i++ {
		if t.InodeAt(children[i]).NameString() == name {
			return i, children[i]
		}
	}
	return -1, region.Null
}

// IndexOfChild returns the slot index of a specific child offset
// within dir's children array, or -1 if it isn't present. Rename uses
// this to re-locate an entry's slot after an intervening array
// mutation may have moved it.
func (t *Tree) IndexOfChild(dir *DirBody, off region.Offset) int {
	children := t.ChildOffsets(dir)
	for i := 1; i < len(children); i++ {
		if children[i] == off {
			return i
		}
	}
	return -1
}

// SetParentSlot overwrites slot 0 of dir's children array, the
// reserved parent back-reference (I5). Rename uses this when moving a
// directory under a new parent.
func (t *Tree) SetParentSlot(dir *DirBody, parentOff region.Offset) {
	region.SliceAt[region.Offset](t.R, dir.Children, 1)[0] = parentOff
}

// CountSubdirs counts dir's direct subdirectory children, used to
// compute a directory's nlink (spec: 2 + subdirectory count).
func (t *Tree) CountSubdirs(dir *DirBody) int {
	children := t.ChildOffsets(dir)
	n := 0
	for _, off := range children[1:] {
		if t.InodeAt(off).Type == TypeDir {
			n++
		}
	}
	return n
}

// AppendChild inserts childOff into dir's children array, growing the
// array (doubling capacity) if it is full. On allocator failure the
// directory is left exactly as it was — no mutation is visible.
func (t *Tree) AppendChild(dir *DirBody, childOff region.Offset) syscall.Errno {
	capElems := t.A.Capacity(dir.Children) / offsetSize
	n := int(dir.NumChildren)

	if n >= capElems {
		newCap := capElems * 2
		newOff := t.A.Realloc(dir.Children, newCap*offsetSize)
		if newOff == region.Null {
			return syscall.ENOSPC
		}
		clear(t.R.At(newOff, newCap*offsetSize)[capElems*offsetSize:])
		dir.Children = newOff
	}

	region.SliceAt[region.Offset](t.R, dir.Children, n+1)[n] = childOff
	dir.NumChildren = uint64(n + 1)
	return 0
}

// RemoveChildAt removes the child at idx by overwriting it with the
// last slot and decrementing the count, then shrinks the array if it
// has become mostly empty.
func (t *Tree) RemoveChildAt(dir *DirBody, idx int) {
	n := int(dir.NumChildren)
	children := region.SliceAt[region.Offset](t.R, dir.Children, n)
	children[idx] = children[n-1]
	children[n-1] = region.Null
	dir.NumChildren = uint64(n - 1)
	t.maybeShrinkChildren(dir)
}

// maybeShrinkChildren halves a children array's capacity when it has
// grown to at least four times its current occupancy, per §4.E's
// "optionally shrink" allowance on unlink/rmdir.
func (t *Tree) maybeShrinkChildren(dir *DirBody) {
	capElems := t.A.Capacity(dir.Children) / offsetSize
	used := int(dir.NumChildren)
	if capElems <= InitialChildCap || used == 0 || capElems < 4*used {
		return
	}

	newCap := capElems / 2
	if newCap < InitialChildCap {
		newCap = InitialChildCap
	}
	if newOff := t.A.Realloc(dir.Children, newCap*offsetSize); newOff != region.Null {
		dir.Children = newOff
	}
}

// FreeChildrenArray returns a directory's children array to the
// allocator. Callers must only do this once the directory holds no
// live children (rmdir requires NumChildren == 1 first).
func (t *Tree) FreeChildrenArray(dir *DirBody) {
	t.A.Free(dir.Children)
	dir.Children = region.Null
	dir.NumChildren = 0
}

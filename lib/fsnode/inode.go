// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsnode

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/region"
)

// NewInode allocates and initialises a fresh inode: zeroed name
// buffer, current timestamps, and the given type. It does not wire the
// inode into any directory — callers append the returned offset to a
// children array separately.
func (t *Tree) NewInode(name string, typ NodeType) (region.Offset, *Inode, syscall.Errno) {
	if len(name) > MaxNameLen {
		return region.Null, nil, syscall.ENAMETOOLONG
	}

	off := t.A.Alloc(int(inodeSize))
	if off == region.Null {
		return region.Null, nil, syscall.ENOSPC
	}

	in := t.InodeAt(off)
	*in = Inode{}
	in.setName(name)
	now := ToTimespec(t.Clock.Now())
	in.Atime = now
	in.Mtime = now
	in.Type = typ
	return off, in, 0
}

// Touch updates an inode's access time, and its modification time too
// when modify is set. Pure reads touch access time only; mutations
// touch both.
func (t *Tree) Touch(in *Inode, modify bool) {
	now := ToTimespec(t.Clock.Now())
	in.Atime = now
	if modify {
		in.Mtime = now
	}
}

// SetTimes overwrites both of an inode's timestamps directly, as
// utimens requires.
func (t *Tree) SetTimes(in *Inode, atime, mtime Timespec) {
	in.Atime = atime
	in.Mtime = mtime
}

// Rename overwrites the inode's name buffer with the last component of
// a new path, per §4.C's naming rules.
func (in *Inode) Rename(name string) syscall.Errno {
	if len(name) > MaxNameLen {
		return syscall.ENAMETOOLONG
	}
	in.setName(name)
	return 0
}

// FreeInode returns an inode's own storage to the allocator. The
// caller must have already freed its body (file-block chain or
// children array) and detached it from its parent's children array.
func (t *Tree) FreeInode(off region.Offset) {
	t.A.Free(off)
}

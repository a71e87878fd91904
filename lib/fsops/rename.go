// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
	"github.com/regionfs/regionfs/lib/region"
)

// Rename moves the entry at from to to, replacing any existing entry
// of the same type at to. When from and to share a parent directory,
// the entry's slot in that directory's children array never changes,
// so only its name is rewritten. Otherwise it inserts the moved entry
// into the destination before detaching it from the source and before
// destroying anything displaced, so the only failure point — growing
// the destination's children array — leaves both the source and any
// existing destination entry untouched (§9's "commit insertion, then
// destroy displaced").
func (fs *Filesystem) Rename(from, to string) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if from == to {
		return 0
	}

	fromParentOff, errno := pathresolve.Resolve(fs.tree, from, 1)
	if errno != 0 {
		return errno
	}
	fromParent := fs.tree.InodeAt(fromParentOff)
	if fromParent.Type != fsnode.TypeDir {
		return syscall.ENOTDIR
	}
	fromName, errno := pathresolve.LastComponent(from)
	if errno != 0 {
		return errno
	}
	fromDir := fromParent.AsDir()
	fromIdx, fromOff := fs.tree.FindChild(fromDir, fromName)
	if fromOff == region.Null {
		return syscall.ENOENT
	}
	fromNode := fs.tree.InodeAt(fromOff)

	toParentOff, errno := pathresolve.Resolve(fs.tree, to, 1)
	if errno != 0 {
		return errno
	}
	toParent := fs.tree.InodeAt(toParentOff)
	if toParent.Type != fsnode.TypeDir {
		return syscall.ENOTDIR
	}
	toName, errno := pathresolve.LastComponent(to)
	if errno != 0 {
		return errno
	}
	if len(toName) > fsnode.MaxNameLen {
		return syscall.ENAMETOOLONG
	}

	if fromNode.Type == fsnode.TypeDir && pathresolve.IsAncestor(fs.tree, fromOff, toParentOff) {
		return syscall.EINVAL
	}

	toDir := toParent.AsDir()
	_, existingOff := fs.tree.FindChild(toDir, toName)
	if existingOff != region.Null {
		existingNode := fs.tree.InodeAt(existingOff)
		if existingNode.Type != fromNode.Type {
			if existingNode.Type == fsnode.TypeDir {
				return syscall.EISDIR
			}
			return syscall.ENOTDIR
		}
		if existingNode.Type == fsnode.TypeDir && existingNode.AsDir().NumChildren != 1 {
			return syscall.ENOTEMPTY
		}
	}

	// A rename within the same directory needs no array surgery at
	// all: fromOff already occupies a slot in toDir (they're the same
	// array), so appending it again would duplicate the entry and
	// could spuriously grow the array.
	sameParent := fromParentOff == toParentOff

	if !sameParent {
		if errno := fs.tree.AppendChild(toDir, fromOff); errno != 0 {
			return errno
		}
	}

	fromNode.Rename(toName) // toName's length was already checked above; this cannot fail

	if !sameParent {
		fs.tree.RemoveChildAt(fromDir, fromIdx)
		if fromNode.Type == fsnode.TypeDir {
			fs.tree.SetParentSlot(fromNode.AsDir(), toParentOff)
		}
	}

	if existingOff != region.Null {
		existingNode := fs.tree.InodeAt(existingOff)
		if existingNode.Type == fsnode.TypeFile {
			fs.tree.Shrink(existingNode.AsFile(), 0)
		} else {
			fs.tree.FreeChildrenArray(existingNode.AsDir())
		}
		fs.tree.FreeInode(existingOff)
		if idx := fs.tree.IndexOfChild(toDir, existingOff); idx != -1 {
			fs.tree.RemoveChildAt(toDir, idx)
		}
	}

	fs.tree.Touch(fromParent, true)
	if toParentOff != fromParentOff {
		fs.tree.Touch(toParent, true)
	}
	return 0
}

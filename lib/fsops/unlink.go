// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
	"github.com/regionfs/regionfs/lib/region"
)

// Unlink removes a file: frees its block chain and inode, then
// compacts it out of its parent's children array.
func (fs *Filesystem) Unlink(path string) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	parentOff, errno := pathresolve.Resolve(fs.tree, path, 1)
	if errno != 0 {
		return errno
	}
	parent := fs.tree.InodeAt(parentOff)
	if parent.Type != fsnode.TypeDir {
		return syscall.ENOTDIR
	}

	name, errno := pathresolve.LastComponent(path)
	if errno != 0 {
		return errno
	}

	dir := parent.AsDir()
	idx, childOff := fs.tree.FindChild(dir, name)
	if childOff == region.Null {
		return syscall.ENOENT
	}

	child := fs.tree.InodeAt(childOff)
	if child.Type != fsnode.TypeFile {
		return syscall.EISDIR
	}

	fs.tree.Shrink(child.AsFile(), 0)
	fs.tree.FreeInode(childOff)
	fs.tree.RemoveChildAt(dir, idx)
	fs.tree.Touch(parent, true)
	return 0
}

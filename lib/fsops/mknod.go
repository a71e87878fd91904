// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
	"github.com/regionfs/regionfs/lib/region"
)

// createNode resolves path's parent, validates the final component,
// and allocates a fresh inode of typ under it. Every step after
// resolution rolls back its own allocation on the next step's
// failure, so a partial create is never visible on return.
func (fs *Filesystem) createNode(path string, typ fsnode.NodeType) (region.Offset, *fsnode.Inode, syscall.Errno) {
	parentOff, errno := pathresolve.Resolve(fs.tree, path, 1)
	if errno != 0 {
		return region.Null, nil, errno
	}
	parent := fs.tree.InodeAt(parentOff)
	if parent.Type != fsnode.TypeDir {
		return region.Null, nil, syscall.ENOTDIR
	}

	name, errno := pathresolve.LastComponent(path)
	if errno != 0 {
		return region.Null, nil, errno
	}
	if len(name) > fsnode.MaxNameLen {
		return region.Null, nil, syscall.ENAMETOOLONG
	}

	dir := parent.AsDir()
	if _, existing := fs.tree.FindChild(dir, name); existing != region.Null {
		return region.Null, nil, syscall.EEXIST
	}

	off, in, errno := fs.tree.NewInode(name, typ)
	if errno != 0 {
		return region.Null, nil, errno
	}

	if typ == fsnode.TypeDir {
		if errno := fs.tree.InitDirChildren(in.AsDir(), parentOff); errno != 0 {
			fs.tree.FreeInode(off)
			return region.Null, nil, errno
		}
	}

	if errno := fs.tree.AppendChild(dir, off); errno != 0 {
		if typ == fsnode.TypeDir {
			fs.tree.FreeChildrenArray(in.AsDir())
		}
		fs.tree.FreeInode(off)
		return region.Null, nil, errno
	}

	fs.tree.Touch(parent, true)
	return off, in, 0
}

// Mknod creates an empty regular file at path.
func (fs *Filesystem) Mknod(path string) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, _, errno := fs.createNode(path, fsnode.TypeFile)
	return errno
}

// Mkdir creates an empty directory at path.
func (fs *Filesystem) Mkdir(path string) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, _, errno := fs.createNode(path, fsnode.TypeDir)
	return errno
}

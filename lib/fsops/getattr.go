// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
)

// Getattr resolves path and reports its mode, link count, size, and
// timestamps. Uid and gid are not stored in the region; they are
// echoed back from the caller, which owns the mapping between the
// mount and whatever identity scheme the host enforces.
func (fs *Filesystem) Getattr(path string, uid, gid uint32) (Stat, syscall.Errno) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	off, errno := pathresolve.Resolve(fs.tree, path, 0)
	if errno != 0 {
		return Stat{}, errno
	}
	in := fs.tree.InodeAt(off)
	fs.tree.Touch(in, false)

	st := Stat{
		Uid:   uid,
		Gid:   gid,
		Atime: in.Atime.Time(),
		Mtime: in.Mtime.Time(),
	}
	switch in.Type {
	case fsnode.TypeFile:
		st.Mode = fileMode
		st.Nlink = 1
		st.Size = in.AsFile().Size
	case fsnode.TypeDir:
		st.Mode = dirMode
		st.Nlink = uint32(2 + fs.tree.CountSubdirs(in.AsDir()))
	}
	return st, 0
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"
	"time"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
)

// Utimens overwrites both of path's timestamps directly, bypassing
// the usual Touch-derives-from-the-clock path — the caller supplies
// both values explicitly, as POSIX utimensat(2) does.
func (fs *Filesystem) Utimens(path string, atime, mtime time.Time) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	off, errno := pathresolve.Resolve(fs.tree, path, 0)
	if errno != 0 {
		return errno
	}
	in := fs.tree.InodeAt(off)
	fs.tree.SetTimes(in, fsnode.ToTimespec(atime), fsnode.ToTimespec(mtime))
	return 0
}

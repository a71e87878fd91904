// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"sync"
	"syscall"
	"time"

	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/pathresolve"
	"github.com/regionfs/regionfs/lib/region"
)

const (
	dirMode  = syscall.S_IFDIR | 0o755
	fileMode = syscall.S_IFREG | 0o755
)

// Filesystem serialises every operation against a single mounted
// tree. The host is expected to make one call at a time (§5's
// "scheduling model"), but the mutex is kept as a defensive backstop
// in case a caller ever fans out across goroutines, following the
// teacher's own WriteMu pattern for state that isn't otherwise safe
// to touch concurrently.
type Filesystem struct {
	mu   sync.Mutex
	tree *fsnode.Tree
}

// Mount attaches a Filesystem to r, bootstrapping it if r has never
// held a filesystem before. Every entry point below re-derives its
// working state from fs.tree on each call — no state persists across
// calls except what lives in the region itself.
func Mount(r *region.Region, clk clock.Clock) (*Filesystem, syscall.Errno) {
	tree, errno := fsnode.Mount(r, clk)
	if errno != 0 {
		return nil, errno
	}
	return &Filesystem{tree: tree}, 0
}

// Stat is the subset of POSIX stat(2) fields regionfs can populate.
// Uid and Gid are echoed back from the caller rather than stored in
// the region — the on-disk inode carries no ownership fields.
type Stat struct {
	Mode  uint32
	Nlink uint32
	Size  uint64
	Atime time.Time
	Mtime time.Time
	Uid   uint32
	Gid   uint32
}

// StatFS reports region-wide capacity, in the shape statfs(2) expects.
type StatFS struct {
	Bsize   uint64
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Namemax uint64
}

// resolveFile resolves path and requires the result to be a file,
// returning EISDIR if it names a directory instead.
func (fs *Filesystem) resolveFile(path string) (region.Offset, *fsnode.Inode, syscall.Errno) {
	off, errno := pathresolve.Resolve(fs.tree, path, 0)
	if errno != 0 {
		return region.Null, nil, errno
	}
	in := fs.tree.InodeAt(off)
	if in.Type != fsnode.TypeFile {
		return region.Null, nil, syscall.EISDIR
	}
	return off, in, 0
}

// resolveDir resolves path and requires the result to be a directory,
// returning ENOTDIR if it names a file instead.
func (fs *Filesystem) resolveDir(path string) (region.Offset, *fsnode.Inode, syscall.Errno) {
	off, errno := pathresolve.Resolve(fs.tree, path, 0)
	if errno != 0 {
		return region.Null, nil, errno
	}
	in := fs.tree.InodeAt(off)
	if in.Type != fsnode.TypeDir {
		return region.Null, nil, syscall.ENOTDIR
	}
	return off, in, 0
}

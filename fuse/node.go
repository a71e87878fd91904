// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"path"
	"syscall"
	"time"

	"github.com/regionfs/regionfs/lib/fsops"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// node is the single InodeEmbedder type backing every entry in the
// mount, file or directory alike — there is no separate write-handle
// or directory-node type, since lib/fsops already resolves by full
// path on every call and needs no per-node state beyond that path.
type node struct {
	gofuse.Inode
	fs      *fsops.Filesystem
	options *Options
	path    string
}

var (
	_ gofuse.InodeEmbedder = (*node)(nil)
	_ gofuse.NodeGetattrer = (*node)(nil)
	_ gofuse.NodeSetattrer = (*node)(nil)
	_ gofuse.NodeLookuper  = (*node)(nil)
	_ gofuse.NodeReaddirer = (*node)(nil)
	_ gofuse.NodeMkdirer   = (*node)(nil)
	_ gofuse.NodeCreater   = (*node)(nil)
	_ gofuse.NodeUnlinker  = (*node)(nil)
	_ gofuse.NodeRmdirer   = (*node)(nil)
	_ gofuse.NodeRenamer   = (*node)(nil)
	_ gofuse.NodeOpener    = (*node)(nil)
	_ gofuse.NodeReader    = (*node)(nil)
	_ gofuse.NodeWriter    = (*node)(nil)
	_ gofuse.NodeStatfser  = (*node)(nil)
)

func (n *node) child(name string) string {
	return path.Join(n.path, name)
}

func setAttrTimes(attr *fuse.Attr, atime, mtime time.Time) {
	attr.Atime = uint64(atime.Unix())
	attr.Atimensec = uint32(atime.Nanosecond())
	attr.Mtime = uint64(mtime.Unix())
	attr.Mtimensec = uint32(mtime.Nanosecond())
	attr.Ctime = attr.Mtime
	attr.Ctimensec = attr.Mtimensec
}

func fillAttr(attr *fuse.Attr, st fsops.Stat) {
	attr.Mode = st.Mode
	attr.Nlink = st.Nlink
	attr.Size = st.Size
	attr.Owner = fuse.Owner{Uid: st.Uid, Gid: st.Gid}
	attr.Blksize = 1024
	attr.Blocks = (st.Size + 511) / 512
	setAttrTimes(attr, st.Atime, st.Mtime)
}

func (n *node) Getattr(_ context.Context, _ gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	st, errno := n.fs.Getattr(n.path, n.options.Uid, n.options.Gid)
	if errno != 0 {
		return errno
	}
	fillAttr(&out.Attr, st)
	return 0
}

// Setattr handles truncate (size) and utimens (atime/mtime) requests;
// both arrive through the same SETATTR call in FUSE.
func (n *node) Setattr(_ context.Context, _ gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		if errno := n.fs.Truncate(n.path, int64(size)); errno != 0 {
			return errno
		}
	}
	atime, hasAtime := in.GetATime()
	mtime, hasMtime := in.GetMTime()
	if hasAtime || hasMtime {
		st, errno := n.fs.Getattr(n.path, n.options.Uid, n.options.Gid)
		if errno != 0 {
			return errno
		}
		if !hasAtime {
			atime = st.Atime
		}
		if !hasMtime {
			mtime = st.Mtime
		}
		if errno := n.fs.Utimens(n.path, atime, mtime); errno != 0 {
			return errno
		}
	}

	st, errno := n.fs.Getattr(n.path, n.options.Uid, n.options.Gid)
	if errno != 0 {
		return errno
	}
	fillAttr(&out.Attr, st)
	return 0
}

func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childPath := n.child(name)
	st, errno := n.fs.Getattr(childPath, n.options.Uid, n.options.Gid)
	if errno != 0 {
		return nil, errno
	}
	fillAttr(&out.Attr, st)
	child := n.NewInode(ctx, &node{fs: n.fs, options: n.options, path: childPath}, gofuse.StableAttr{Mode: st.Mode})
	return child, 0
}

func (n *node) Readdir(_ context.Context) (gofuse.DirStream, syscall.Errno) {
	names, errno := n.fs.Readdir(n.path)
	if errno != 0 {
		return nil, errno
	}

	entries := make([]fuse.DirEntry, 0, len(names))
	for _, name := range names {
		st, errno := n.fs.Getattr(n.child(name), n.options.Uid, n.options.Gid)
		if errno != 0 {
			continue
		}
		entries = append(entries, fuse.DirEntry{Name: name, Mode: st.Mode})
	}
	return &sliceDirStream{entries: entries}, 0
}

// sliceDirStream implements gofuse.DirStream over a fixed slice.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}

func (n *node) Mkdir(ctx context.Context, name string, _ uint32, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	childPath := n.child(name)
	if errno := n.fs.Mkdir(childPath); errno != 0 {
		return nil, errno
	}
	st, errno := n.fs.Getattr(childPath, n.options.Uid, n.options.Gid)
	if errno != 0 {
		return nil, errno
	}
	fillAttr(&out.Attr, st)
	child := n.NewInode(ctx, &node{fs: n.fs, options: n.options, path: childPath}, gofuse.StableAttr{Mode: st.Mode})
	return child, 0
}

// Create handles both O_CREAT file creation and the plain open of an
// already-existing file — regionfs's Mknod is idempotent-refusing
// (EEXIST), so an existing target is opened rather than recreated.
func (n *node) Create(ctx context.Context, name string, _ uint32, _ uint32, out *fuse.EntryOut) (*gofuse.Inode, gofuse.FileHandle, uint32, syscall.Errno) {
	childPath := n.child(name)
	if errno := n.fs.Mknod(childPath); errno != 0 && errno != syscall.EEXIST {
		return nil, nil, 0, errno
	}
	st, errno := n.fs.Getattr(childPath, n.options.Uid, n.options.Gid)
	if errno != 0 {
		return nil, nil, 0, errno
	}
	fillAttr(&out.Attr, st)
	child := n.NewInode(ctx, &node{fs: n.fs, options: n.options, path: childPath}, gofuse.StableAttr{Mode: st.Mode})
	return child, nil, 0, 0
}

func (n *node) Unlink(_ context.Context, name string) syscall.Errno {
	return n.fs.Unlink(n.child(name))
}

func (n *node) Rmdir(_ context.Context, name string) syscall.Errno {
	return n.fs.Rmdir(n.child(name))
}

func (n *node) Rename(_ context.Context, name string, newParent gofuse.InodeEmbedder, newName string, _ uint32) syscall.Errno {
	destParent, ok := newParent.(*node)
	if !ok {
		return syscall.EINVAL
	}
	return n.fs.Rename(n.child(name), destParent.child(newName))
}

func (n *node) Open(_ context.Context, _ uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if errno := n.fs.Open(n.path); errno != 0 {
		return nil, 0, errno
	}
	return nil, 0, 0
}

func (n *node) Read(_ context.Context, _ gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	count, errno := n.fs.Read(n.path, dest, off)
	if errno != 0 {
		return nil, errno
	}
	return fuse.ReadResultData(dest[:count]), 0
}

func (n *node) Write(_ context.Context, _ gofuse.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	count, errno := n.fs.Write(n.path, data, off)
	if errno != 0 {
		return 0, errno
	}
	return uint32(count), 0
}

func (n *node) Statfs(_ context.Context, out *fuse.StatfsOut) syscall.Errno {
	sf, errno := n.fs.Statfs()
	if errno != 0 {
		return errno
	}
	out.Bsize = uint32(sf.Bsize)
	out.Blocks = sf.Blocks
	out.Bfree = sf.Bfree
	out.Bavail = sf.Bavail
	out.NameLen = uint32(sf.Namemax)
	return 0
}

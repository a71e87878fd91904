// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsnode

import (
	"time"
	"unsafe"

	"github.com/regionfs/regionfs/lib/region"
)

// Magic gates whether a region already holds a filesystem. Its
// presence means "already initialised; do not touch."
const Magic uint32 = 0xADDBEEF

// NameCap is the fixed size of an inode's name buffer, including its
// null terminator.
const NameCap = 256

// MaxNameLen is the longest name that fits in NameCap with room for
// the terminator.
const MaxNameLen = NameCap - 1

// InitialChildCap is the children-array capacity a directory starts
// with on its first child (C₀ in the design notes).
const InitialChildCap = 4

// BlockSize is the preferred capacity of a single file data block.
const BlockSize = 1024

// NodeType discriminates an Inode's body.
type NodeType uint32

const (
	TypeFile NodeType = 1
	TypeDir  NodeType = 2
)

func (t NodeType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Timespec is a region-storable second/nanosecond timestamp, the
// on-disk counterpart of time.Time.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// ToTimespec converts a process-local time.Time to its region-storable
// form.
func ToTimespec(t time.Time) Timespec {
	return Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// Time converts a Timespec back to a time.Time in UTC.
func (ts Timespec) Time() time.Time {
	return time.Unix(ts.Sec, ts.Nsec).UTC()
}

// FileBody is an Inode's body when Type == TypeFile.
type FileBody struct {
	Size       uint64
	FirstBlock region.Offset
}

// DirBody is an Inode's body when Type == TypeDir.
type DirBody struct {
	NumChildren uint64
	Children    region.Offset
}

// bodySize must be at least as large as the bigger of FileBody and
// DirBody; both happen to be 16 bytes today. The constant is fixed,
// but an init assertion below checks it against unsafe.Sizeof of both
// bodies, so a future field addition to either body fails loudly
// instead of silently corrupting the other.
const bodySize = 16

// Inode is the fixed-size record identifying a file or a directory.
// Its body is a tagged union: interpret it with AsFile or AsDir
// according to Type, never both.
type Inode struct {
	Name  [NameCap]byte
	Atime Timespec
	Mtime Timespec
	Type  NodeType
	_     uint32 // pad Body to an 8-byte boundary
	Body  [bodySize]byte
}

func init() {
	var fb FileBody
	var db DirBody
	if unsafe.Sizeof(fb) > bodySize || unsafe.Sizeof(db) > bodySize {
		panic("fsnode: bodySize too small for FileBody/DirBody")
	}
}

// AsFile reinterprets the inode's body as a FileBody. The caller is
// responsible for having checked Type == TypeFile first; this mirrors
// how every operation-layer entry point checks the inode's kind before
// touching its body, per the resolve-then-require-kind pattern used
// throughout the thirteen operations.
func (in *Inode) AsFile() *FileBody {
	return (*FileBody)(unsafe.Pointer(&in.Body[0]))
}

// AsDir reinterprets the inode's body as a DirBody. See AsFile.
func (in *Inode) AsDir() *DirBody {
	return (*DirBody)(unsafe.Pointer(&in.Body[0]))
}

// NameString returns the inode's name as a Go string, trimmed at the
// first null byte.
func (in *Inode) NameString() string {
	n := 0
	for n < NameCap && in.Name[n] != 0 {
		n++
	}
	return string(in.Name[:n])
}

// setName copies name into the inode's name buffer and zeroes the
// remainder, including the terminator. The caller must have already
// validated name's length against MaxNameLen.
func (in *Inode) setName(name string) {
	for i := range in.Name {
		in.Name[i] = 0
	}
	copy(in.Name[:MaxNameLen], name)
}

// Superblock is the fixed record at region offset 0.
type Superblock struct {
	Magic    uint32
	_        uint32 // pad Size to an 8-byte boundary
	Size     uint64
	Root     region.Offset
	FreeHead region.Offset
}

// FileBlock is one node in a file's linked chain of data containers.
// Capacity and Data are set once, at allocation, and never change;
// Allocated and Next are mutated as the chain grows and shrinks.
type FileBlock struct {
	Capacity  uint64
	Allocated uint64
	Next      region.Offset
	Data      region.Offset
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package pathresolve

import (
	"syscall"
	"testing"
	"time"

	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/region"
)

func newTestTree(t *testing.T) *fsnode.Tree {
	t.Helper()
	r := region.New(1 << 16)
	tr, errno := fsnode.Mount(r, clock.Fake(time.Unix(1000, 0)))
	if errno != 0 {
		t.Fatalf("Mount failed: %v", errno)
	}
	return tr
}

// mkdirHelper creates a directory named name under parent and returns
// its offset, wiring it into parent's children array and giving it its
// own bootstrap children array.
func mkdirHelper(t *testing.T, tr *fsnode.Tree, parentOff region.Offset, name string) region.Offset {
	t.Helper()
	off, in, errno := tr.NewInode(name, fsnode.TypeDir)
	if errno != 0 {
		t.Fatalf("NewInode(%q) failed: %v", name, errno)
	}
	if errno := tr.InitDirChildren(in.AsDir(), parentOff); errno != 0 {
		t.Fatalf("InitDirChildren(%q) failed: %v", name, errno)
	}
	parent := tr.InodeAt(parentOff)
	if errno := tr.AppendChild(parent.AsDir(), off); errno != 0 {
		t.Fatalf("AppendChild(%q) failed: %v", name, errno)
	}
	return off
}

func mknodHelper(t *testing.T, tr *fsnode.Tree, parentOff region.Offset, name string) region.Offset {
	t.Helper()
	off, _, errno := tr.NewInode(name, fsnode.TypeFile)
	if errno != 0 {
		t.Fatalf("NewInode(%q) failed: %v", name, errno)
	}
	parent := tr.InodeAt(parentOff)
	if errno := tr.AppendChild(parent.AsDir(), off); errno != 0 {
		t.Fatalf("AppendChild(%q) failed: %v", name, errno)
	}
	return off
}

func TestSplitTokenizesAndDropsTrailingSlash(t *testing.T) {
	tokens, errno := Split("/a/b/c/")
	if errno != 0 {
		t.Fatalf("Split failed: %v", errno)
	}
	want := []string{"a", "b", "c"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", tokens, want)
		}
	}
}

func TestSplitRejectsRelativePaths(t *testing.T) {
	if _, errno := Split("a/b"); errno != syscall.EINVAL {
		t.Fatalf("errno = %v, want EINVAL", errno)
	}
}

func TestResolveRoot(t *testing.T) {
	tr := newTestTree(t)
	off, errno := Resolve(tr, "/", 0)
	if errno != 0 {
		t.Fatalf("Resolve(\"/\") failed: %v", errno)
	}
	if off != tr.RootOffset() {
		t.Fatal("Resolve(\"/\") should return the root offset")
	}
}

func TestResolveDescendsThroughDirectories(t *testing.T) {
	tr := newTestTree(t)
	d := mkdirHelper(t, tr, tr.RootOffset(), "d")
	f := mknodHelper(t, tr, d, "x")

	off, errno := Resolve(tr, "/d/x", 0)
	if errno != 0 {
		t.Fatalf("Resolve failed: %v", errno)
	}
	if off != f {
		t.Fatal("Resolve(\"/d/x\") did not find the expected inode")
	}
}

func TestResolveSkipTailReturnsParent(t *testing.T) {
	tr := newTestTree(t)
	d := mkdirHelper(t, tr, tr.RootOffset(), "d")

	off, errno := Resolve(tr, "/d/new-file", 1)
	if errno != 0 {
		t.Fatalf("Resolve with skipTail=1 failed: %v", errno)
	}
	if off != d {
		t.Fatal("Resolve(path, 1) should return the parent directory, leaving the final component unresolved")
	}
}

func TestResolveRejectsTraversalThroughFile(t *testing.T) {
	tr := newTestTree(t)
	mknodHelper(t, tr, tr.RootOffset(), "f")

	if _, errno := Resolve(tr, "/f/x", 0); errno != syscall.ENOTDIR {
		t.Fatalf("errno = %v, want ENOTDIR", errno)
	}
}

func TestResolveMissingComponentIsENOENT(t *testing.T) {
	tr := newTestTree(t)
	if _, errno := Resolve(tr, "/missing", 0); errno != syscall.ENOENT {
		t.Fatalf("errno = %v, want ENOENT", errno)
	}
}

func TestResolveDotAndDotDot(t *testing.T) {
	tr := newTestTree(t)
	d := mkdirHelper(t, tr, tr.RootOffset(), "d")

	off, errno := Resolve(tr, "/d/.", 0)
	if errno != 0 || off != d {
		t.Fatalf("Resolve(\"/d/.\") = (%d, %v), want (%d, nil)", off, errno, d)
	}

	off, errno = Resolve(tr, "/d/..", 0)
	if errno != 0 || off != tr.RootOffset() {
		t.Fatalf("Resolve(\"/d/..\") = (%d, %v), want the root", off, errno)
	}
}

func TestResolveDotDotAtRootStaysAtRoot(t *testing.T) {
	tr := newTestTree(t)
	off, errno := Resolve(tr, "/..", 0)
	if errno != 0 || off != tr.RootOffset() {
		t.Fatalf("Resolve(\"/..\") = (%d, %v), want the root", off, errno)
	}
}

func TestLastComponent(t *testing.T) {
	name, errno := LastComponent("/a/b/c")
	if errno != 0 || name != "c" {
		t.Fatalf("LastComponent = (%q, %v), want (\"c\", nil)", name, errno)
	}
	if _, errno := LastComponent("/"); errno != syscall.EINVAL {
		t.Fatalf("LastComponent(\"/\") errno = %v, want EINVAL", errno)
	}
}

func TestIsAncestor(t *testing.T) {
	tr := newTestTree(t)
	a := mkdirHelper(t, tr, tr.RootOffset(), "a")
	b := mkdirHelper(t, tr, a, "b")

	if !IsAncestor(tr, a, b) {
		t.Fatal("a should be recognised as an ancestor of b")
	}
	if IsAncestor(tr, b, a) {
		t.Fatal("b is not an ancestor of a")
	}
}

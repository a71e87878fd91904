// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"bytes"
	"sort"
	"syscall"
	"testing"
	"time"

	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/region"
)

func newTestFS(t *testing.T) (*Filesystem, *clock.FakeClock) {
	t.Helper()
	r := region.New(1 << 20) // 1 MiB, matching the scenario region size
	clk := clock.Fake(time.Unix(1000, 0))
	fs, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("Mount failed: %v", errno)
	}
	return fs, clk
}

func TestFreshMountRootAttrs(t *testing.T) {
	fs, _ := newTestFS(t)

	st, errno := fs.Getattr("/", 0, 0)
	if errno != 0 {
		t.Fatalf("Getattr failed: %v", errno)
	}
	if st.Mode != dirMode {
		t.Fatalf("Mode = %o, want %o", st.Mode, dirMode)
	}
	if st.Nlink != 2 {
		t.Fatalf("Nlink = %d, want 2", st.Nlink)
	}
}

func TestMknodWriteReadRoundTrip(t *testing.T) {
	fs, _ := newTestFS(t)

	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	n, errno := fs.Write("/a", []byte("Hello"), 0)
	if errno != 0 || n != 5 {
		t.Fatalf("Write = (%d, %v), want (5, nil)", n, errno)
	}

	buf := make([]byte, 5)
	n, errno = fs.Read("/a", buf, 0)
	if errno != 0 || n != 5 || string(buf) != "Hello" {
		t.Fatalf("Read = (%d, %q, %v), want (5, \"Hello\", nil)", n, buf, errno)
	}

	st, errno := fs.Getattr("/a", 0, 0)
	if errno != 0 || st.Size != 5 {
		t.Fatalf("Getattr size = %d, want 5", st.Size)
	}
}

func TestMkdirMknodReaddir(t *testing.T) {
	fs, _ := newTestFS(t)

	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mknod("/d/x"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}

	names, errno := fs.Readdir("/d")
	if errno != 0 {
		t.Fatalf("Readdir failed: %v", errno)
	}
	if len(names) != 1 || names[0] != "x" {
		t.Fatalf("Readdir = %v, want [x]", names)
	}
}

func TestTruncateGrowZeroFills(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Truncate("/a", 2048); errno != 0 {
		t.Fatalf("Truncate failed: %v", errno)
	}

	buf := make([]byte, 2048)
	n, errno := fs.Read("/a", buf, 0)
	if errno != 0 || n != 2048 {
		t.Fatalf("Read = (%d, %v), want (2048, nil)", n, errno)
	}
	if !bytes.Equal(buf, make([]byte, 2048)) {
		t.Fatal("grown region should read back as zero")
	}
}

func TestWritePastEOFCreatesZeroHole(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if _, errno := fs.Write("/a", []byte("X"), 100000); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}

	st, errno := fs.Getattr("/a", 0, 0)
	if errno != 0 || st.Size != 100001 {
		t.Fatalf("Size = %d, want 100001", st.Size)
	}

	buf := make([]byte, 1)
	n, errno := fs.Read("/a", buf, 0)
	if errno != 0 || n != 1 || buf[0] != 0 {
		t.Fatalf("Read at 0 = (%d, %v, %q), want a single zero byte", n, errno, buf)
	}

	n, errno = fs.Read("/a", buf, 100000)
	if errno != 0 || n != 1 || buf[0] != 'X' {
		t.Fatalf("Read at 100000 = (%d, %v, %q), want \"X\"", n, errno, buf)
	}
}

func TestRemountPreservesTree(t *testing.T) {
	r := region.New(1 << 20)
	clk := clock.Fake(time.Unix(1000, 0))

	fs1, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("first Mount failed: %v", errno)
	}
	if errno := fs1.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}

	fs2, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("second Mount failed: %v", errno)
	}
	buf := make([]byte, 1)
	if _, errno := fs2.Read("/a", buf, 0); errno != 0 {
		t.Fatalf("Read after remount failed: %v", errno)
	}
}

func TestUnlinkRestoresBytewise(t *testing.T) {
	r := region.New(1 << 16)
	clk := clock.Fake(time.Unix(1000, 0))
	fs, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("Mount failed: %v", errno)
	}
	before := append([]byte(nil), r.Bytes...)

	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Unlink("/a"); errno != 0 {
		t.Fatalf("Unlink failed: %v", errno)
	}

	if !bytes.Equal(r.Bytes, before) {
		t.Fatal("mknod;unlink should restore the region bytewise")
	}
}

func TestMkdirRmdirRestoresBytewise(t *testing.T) {
	r := region.New(1 << 16)
	clk := clock.Fake(time.Unix(1000, 0))
	fs, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("Mount failed: %v", errno)
	}
	before := append([]byte(nil), r.Bytes...)

	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Rmdir("/d"); errno != 0 {
		t.Fatalf("Rmdir failed: %v", errno)
	}

	if !bytes.Equal(r.Bytes, before) {
		t.Fatal("mkdir;rmdir should restore the region bytewise")
	}
}

func TestRmdirNonEmptyIsENOTEMPTY(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mknod("/d/x"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Rmdir("/d"); errno != syscall.ENOTEMPTY {
		t.Fatalf("Rmdir errno = %v, want ENOTEMPTY", errno)
	}
}

func TestMknodDuplicateIsEEXIST(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Mknod("/a"); errno != syscall.EEXIST {
		t.Fatalf("errno = %v, want EEXIST", errno)
	}
}

func TestNameLengthBoundary(t *testing.T) {
	fs, _ := newTestFS(t)
	name255 := "/" + repeatChar('a', 255)
	if errno := fs.Mknod(name255); errno != 0 {
		t.Fatalf("255-char name failed: %v", errno)
	}
	name256 := "/" + repeatChar('b', 256)
	if errno := fs.Mknod(name256); errno != syscall.ENAMETOOLONG {
		t.Fatalf("256-char name errno = %v, want ENAMETOOLONG", errno)
	}
}

func repeatChar(c byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}

func TestRegionSizedToSuperblockRejectsCreates(t *testing.T) {
	// A region too small even to hold the reserved bootstrap area
	// cannot be mounted at all — Mount itself reports EINVAL, which is
	// the boundary case's "every create fails" taken to its edge.
	r := region.New(4)
	if _, errno := Mount(r, clock.Fake(time.Unix(1000, 0))); errno != syscall.EINVAL {
		t.Fatalf("Mount errno = %v, want EINVAL", errno)
	}
}

func TestRenameNoopOnIdenticalPath(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Rename("/a", "/a"); errno != 0 {
		t.Fatalf("Rename(a,a) failed: %v", errno)
	}
	if _, errno := fs.Getattr("/a", 0, 0); errno != 0 {
		t.Fatalf("Getattr after no-op rename failed: %v", errno)
	}
}

// TestRenameWithinSameDirectoryDoesNotGrowChildrenArray covers a
// rename that changes only the name, not the parent, with the
// directory's children array already full and the rest of the region
// exhausted. A rename that (incorrectly) inserted the moved entry
// into the destination before removing it from the source would try
// to grow the array here and fail with ENOSPC even though no growth
// is actually needed.
func TestRenameWithinSameDirectoryDoesNotGrowChildrenArray(t *testing.T) {
	r := region.New(4096)
	clk := clock.Fake(time.Unix(1000, 0))
	fs, errno := Mount(r, clk)
	if errno != 0 {
		t.Fatalf("Mount failed: %v", errno)
	}

	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	// Slot 0 holds the parent back-reference; three more files fill
	// the initial children capacity of 4 exactly.
	for _, name := range []string{"/d/a", "/d/b", "/d/c"} {
		if errno := fs.Mknod(name); errno != 0 {
			t.Fatalf("Mknod(%s) failed: %v", name, errno)
		}
	}

	// Exhaust the rest of the region so any further allocator growth
	// fails with ENOSPC.
	if errno := fs.Mknod("/filler"); errno != 0 {
		t.Fatalf("Mknod(/filler) failed: %v", errno)
	}
	filler := make([]byte, 64)
	var off int64
	for {
		n, errno := fs.Write("/filler", filler, off)
		if errno == syscall.ENOSPC {
			break
		}
		if errno != 0 {
			t.Fatalf("Write(/filler) failed: %v", errno)
		}
		if n == 0 {
			t.Fatal("Write made no progress before ENOSPC")
		}
		off += int64(n)
	}

	if errno := fs.Rename("/d/b", "/d/z"); errno != 0 {
		t.Fatalf("same-directory rename failed: %v", errno)
	}

	names, errno := fs.Readdir("/d")
	if errno != 0 {
		t.Fatalf("Readdir failed: %v", errno)
	}
	sort.Strings(names)
	want := []string{"a", "c", "z"}
	if len(names) != len(want) {
		t.Fatalf("children after rename = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("children after rename = %v, want %v", names, want)
		}
	}
}

func TestRenameMovesFileAcrossDirectories(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/d1"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mkdir("/d2"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mknod("/d1/x"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if _, errno := fs.Write("/d1/x", []byte("hi"), 0); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}

	if errno := fs.Rename("/d1/x", "/d2/y"); errno != 0 {
		t.Fatalf("Rename failed: %v", errno)
	}

	if _, errno := fs.Getattr("/d1/x", 0, 0); errno != syscall.ENOENT {
		t.Fatalf("old path errno = %v, want ENOENT", errno)
	}
	buf := make([]byte, 2)
	n, errno := fs.Read("/d2/y", buf, 0)
	if errno != 0 || n != 2 || string(buf) != "hi" {
		t.Fatalf("Read at new path = (%d, %q, %v), want (2, \"hi\", nil)", n, buf, errno)
	}
}

func TestRenameOverExistingFileReplacesIt(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Mknod("/b"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if _, errno := fs.Write("/a", []byte("new"), 0); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}
	if _, errno := fs.Write("/b", []byte("old-content"), 0); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}

	if errno := fs.Rename("/a", "/b"); errno != 0 {
		t.Fatalf("Rename failed: %v", errno)
	}

	st, errno := fs.Getattr("/b", 0, 0)
	if errno != 0 || st.Size != 3 {
		t.Fatalf("Getattr size = %d, err %v, want 3", st.Size, errno)
	}
	if _, errno := fs.Getattr("/a", 0, 0); errno != syscall.ENOENT {
		t.Fatalf("source errno after rename = %v, want ENOENT", errno)
	}

	names, errno := fs.Readdir("/")
	if errno != 0 {
		t.Fatalf("Readdir failed: %v", errno)
	}
	if len(names) != 1 || names[0] != "b" {
		t.Fatalf("root children = %v, want [b]", names)
	}
}

func TestRenameOverNonEmptyDirIsENOTEMPTY(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/a"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mkdir("/b"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mknod("/b/x"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Rename("/a", "/b"); errno != syscall.ENOTEMPTY {
		t.Fatalf("errno = %v, want ENOTEMPTY", errno)
	}
}

func TestRenameDirIntoOwnDescendantIsEINVAL(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/a"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Mkdir("/a/b"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Rename("/a", "/a/b/c"); errno != syscall.EINVAL {
		t.Fatalf("errno = %v, want EINVAL", errno)
	}
}

func TestRenameTypeMismatch(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Mkdir("/b"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Rename("/a", "/b"); errno != syscall.EISDIR {
		t.Fatalf("file-over-dir errno = %v, want EISDIR", errno)
	}
	if errno := fs.Rename("/b", "/a"); errno != syscall.ENOTDIR {
		t.Fatalf("dir-over-file errno = %v, want ENOTDIR", errno)
	}
}

func TestWriteTruncateWriteEquivalentToSingleWrite(t *testing.T) {
	fsA, _ := newTestFS(t)
	fsB, _ := newTestFS(t)

	data := []byte("abcdef")
	if errno := fsA.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if _, errno := fsA.Write("/a", data, 3); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}
	if errno := fsA.Truncate("/a", 0); errno != 0 {
		t.Fatalf("Truncate failed: %v", errno)
	}
	if _, errno := fsA.Write("/a", data, 3); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}

	if errno := fsB.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if _, errno := fsB.Write("/a", data, 3); errno != 0 {
		t.Fatalf("Write failed: %v", errno)
	}

	bufA := make([]byte, 9)
	bufB := make([]byte, 9)
	if _, errno := fsA.Read("/a", bufA, 0); errno != 0 {
		t.Fatalf("Read failed: %v", errno)
	}
	if _, errno := fsB.Read("/a", bufB, 0); errno != 0 {
		t.Fatalf("Read failed: %v", errno)
	}
	if !bytes.Equal(bufA, bufB) {
		t.Fatalf("write;truncate(0);write = %v, want %v (equivalent to a single write)", bufA, bufB)
	}
}

func TestOpenExistenceOnly(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Open("/missing"); errno != syscall.ENOENT {
		t.Fatalf("errno = %v, want ENOENT", errno)
	}
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Open("/a"); errno != 0 {
		t.Fatalf("Open failed: %v", errno)
	}
}

func TestUtimensOverwritesBothTimestamps(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	want := time.Unix(500000, 0).UTC()
	if errno := fs.Utimens("/a", want, want); errno != 0 {
		t.Fatalf("Utimens failed: %v", errno)
	}
	st, errno := fs.Getattr("/a", 0, 0)
	if errno != 0 {
		t.Fatalf("Getattr failed: %v", errno)
	}
	if !st.Mtime.Equal(want) {
		t.Fatalf("Mtime = %v, want %v", st.Mtime, want)
	}
}

func TestStatfsReportsCapacity(t *testing.T) {
	fs, _ := newTestFS(t)
	sf, errno := fs.Statfs()
	if errno != 0 {
		t.Fatalf("Statfs failed: %v", errno)
	}
	if sf.Bsize != 1024 {
		t.Fatalf("Bsize = %d, want 1024", sf.Bsize)
	}
	if sf.Blocks != (1<<20)/1024 {
		t.Fatalf("Blocks = %d, want %d", sf.Blocks, (1<<20)/1024)
	}
	if sf.Bfree != sf.Bavail {
		t.Fatalf("Bfree (%d) should equal Bavail (%d)", sf.Bfree, sf.Bavail)
	}

	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	sf2, errno := fs.Statfs()
	if errno != 0 {
		t.Fatalf("Statfs failed: %v", errno)
	}
	if sf2.Bfree > sf.Bfree {
		t.Fatal("free block count should not increase after allocating an inode")
	}
}

func TestUnlinkOnDirectoryIsEISDIR(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	if errno := fs.Unlink("/d"); errno != syscall.EISDIR {
		t.Fatalf("errno = %v, want EISDIR", errno)
	}
}

func TestRmdirOnFileIsENOTDIR(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Rmdir("/a"); errno != syscall.ENOTDIR {
		t.Fatalf("errno = %v, want ENOTDIR", errno)
	}
}

func TestReadWriteOnDirectoryIsEISDIR(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mkdir("/d"); errno != 0 {
		t.Fatalf("Mkdir failed: %v", errno)
	}
	buf := make([]byte, 1)
	if _, errno := fs.Read("/d", buf, 0); errno != syscall.EISDIR {
		t.Fatalf("Read errno = %v, want EISDIR", errno)
	}
	if _, errno := fs.Write("/d", buf, 0); errno != syscall.EISDIR {
		t.Fatalf("Write errno = %v, want EISDIR", errno)
	}
}

func TestTruncateNegativeSizeIsRejected(t *testing.T) {
	fs, _ := newTestFS(t)
	if errno := fs.Mknod("/a"); errno != 0 {
		t.Fatalf("Mknod failed: %v", errno)
	}
	if errno := fs.Truncate("/a", -1); errno != syscall.EINVAL {
		t.Fatalf("errno = %v, want EINVAL", errno)
	}
}

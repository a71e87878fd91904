// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsck

import (
	"fmt"
	"sort"
	"unsafe"

	"github.com/regionfs/regionfs/lib/allocator"
	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/region"
)

// Report summarises one invariant-checking pass over a mounted tree.
type Report struct {
	Files, Dirs int
	DataBytes   uint64
	FreeBytes   uint64
	RegionBytes uint64
	Violations  []string
}

// OK reports whether the pass found no violations.
func (r *Report) OK() bool { return len(r.Violations) == 0 }

func (r *Report) fail(format string, args ...any) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// extent is a half-open byte range within the region, tagged with a
// label for diagnostics.
type extent struct {
	start, end region.Offset
	label      string
}

// blockExtent recovers the full extent (header included) of the
// allocator-owned block whose payload begins at payloadOff.
func blockExtent(tree *fsnode.Tree, payloadOff region.Offset, label string) extent {
	size := tree.A.Capacity(payloadOff)
	return extent{
		start: payloadOff - allocator.HeaderSize,
		end:   payloadOff + region.Offset(size),
		label: label,
	}
}

// Check walks tree from its root and verifies:
//
//   - every directory's slot 0 names its true parent (I5, P4)
//   - every inode is reached at most once while walking the tree (I4)
//   - the free list, together with every block reachable from the
//     root, partitions the region exactly (I1, I2, P2)
//   - the free list is offset-sorted with no two adjacent blocks left
//     uncoalesced (I3, P3)
func Check(tree *fsnode.Tree) *Report {
	report := &Report{RegionBytes: uint64(tree.R.Size())}

	var extents []extent
	extents = append(extents, extent{0, region.Offset(unsafe.Sizeof(fsnode.Superblock{})), "superblock"})
	extents = append(extents, extent{tree.SB.Root, tree.SB.Root + region.Offset(unsafe.Sizeof(fsnode.Inode{})), "root inode"})

	visited := map[region.Offset]bool{tree.SB.Root: true}

	var walkDir func(off region.Offset, expectedParent region.Offset)
	walkDir = func(off region.Offset, expectedParent region.Offset) {
		in := tree.InodeAt(off)
		body := in.AsDir()
		extents = append(extents, blockExtent(tree, body.Children, "children array of "+labelFor(in, off, tree)))

		children := tree.ChildOffsets(body)
		if len(children) == 0 {
			report.fail("directory at %d has an empty children array (missing slot 0)", off)
			return
		}
		if children[0] != expectedParent {
			report.fail("directory %q at %d: slot 0 = %d, want parent %d",
				in.NameString(), off, children[0], expectedParent)
		}

		for _, childOff := range children[1:] {
			if visited[childOff] {
				report.fail("inode at %d is reachable from more than one directory", childOff)
				continue
			}
			visited[childOff] = true

			child := tree.InodeAt(childOff)
			extents = append(extents, blockExtent(tree, childOff, "inode "+labelFor(child, childOff, tree)))

			switch child.Type {
			case fsnode.TypeDir:
				report.Dirs++
				walkDir(childOff, off)
			case fsnode.TypeFile:
				report.Files++
				fileBody := child.AsFile()
				report.DataBytes += fileBody.Size
				walkFileChain(tree, fileBody, &extents)
			default:
				report.fail("inode %q at %d has unrecognised type %d", child.NameString(), childOff, child.Type)
			}
		}
	}

	report.Dirs++ // the root itself
	walkDir(tree.SB.Root, region.Null)

	freeBlocks := tree.A.WalkFree()
	checkFreeListOrder(freeBlocks, report)
	for _, fb := range freeBlocks {
		extents = append(extents, extent{fb.Offset, fb.Offset + allocator.HeaderSize + region.Offset(fb.Payload), "free block"})
		report.FreeBytes += uint64(fb.Payload)
	}

	checkPartition(extents, report.RegionBytes, report)
	return report
}

// walkFileChain appends the extent of every block in a file's chain
// (header and data separately, since Grow/newFileBlock allocates them
// independently) to extents.
func walkFileChain(tree *fsnode.Tree, file *fsnode.FileBody, extents *[]extent) {
	off := file.FirstBlock
	for off != region.Null {
		fb := tree.FileBlockAt(off)
		*extents = append(*extents, blockExtent(tree, off, "file block header"))
		*extents = append(*extents, blockExtent(tree, fb.Data, "file block data"))
		off = fb.Next
	}
}

func labelFor(in *fsnode.Inode, off region.Offset, tree *fsnode.Tree) string {
	if off == tree.SB.Root {
		return "/"
	}
	return in.NameString()
}

// checkFreeListOrder verifies I3: the free list is strictly ascending
// by offset, and no two successive blocks are contiguous.
func checkFreeListOrder(blocks []allocator.FreeBlock, report *Report) {
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		if cur.Offset <= prev.Offset {
			report.fail("free list is not strictly ascending: %d then %d", prev.Offset, cur.Offset)
		}
		if prev.Offset+allocator.HeaderSize+region.Offset(prev.Payload) == cur.Offset {
			report.fail("free blocks at %d and %d are contiguous but not coalesced", prev.Offset, cur.Offset)
		}
	}
}

// checkPartition verifies P2: the extents collected while walking the
// tree and the free list cover [0, regionSize) exactly, with no gaps
// and no overlaps.
func checkPartition(extents []extent, regionSize uint64, report *Report) {
	sort.Slice(extents, func(i, j int) bool { return extents[i].start < extents[j].start })

	var cursor region.Offset
	for _, e := range extents {
		switch {
		case e.start < cursor:
			report.fail("%s at [%d,%d) overlaps the preceding extent (cursor at %d)", e.label, e.start, e.end, cursor)
		case e.start > cursor:
			report.fail("gap of %d unaccounted bytes before %s at %d", e.start-cursor, e.label, e.start)
		}
		if e.end > cursor {
			cursor = e.end
		}
	}
	if region.Offset(regionSize) != cursor {
		report.fail("region is %d bytes but accounted extents end at %d", regionSize, cursor)
	}
}

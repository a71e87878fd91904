// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package pathresolve

import (
	"strings"
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/region"
)

// Split tokenises an absolute path on "/", dropping empty segments —
// which also disposes of a trailing slash and any run of repeated
// separators. Returns EINVAL for anything not starting with "/".
func Split(path string) ([]string, syscall.Errno) {
	if len(path) == 0 || path[0] != '/' {
		return nil, syscall.EINVAL
	}
	var tokens []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens, 0
}

// LastComponent returns the final path component — the name a create,
// delete, or rename site needs once Resolve(path, 1) has handed back
// the parent directory. Returns EINVAL for the root itself, which has
// no final component to take.
func LastComponent(path string) (string, syscall.Errno) {
	tokens, errno := Split(path)
	if errno != 0 {
		return "", errno
	}
	if len(tokens) == 0 {
		return "", syscall.EINVAL
	}
	return tokens[len(tokens)-1], 0
}

// Resolve walks tree from its root along path, skipping the final
// skipTail tokens (0 to resolve path itself, 1 to resolve its parent
// directory). Each intermediate token is rejected with ENOTDIR if the
// current node isn't a directory, or ENOENT if no child matches it.
// "." stays on the current directory; ".." moves to slot 0 of the
// current directory's children array, or back to the root if that
// slot holds the reserved "no parent" offset.
func Resolve(tree *fsnode.Tree, path string, skipTail int) (region.Offset, syscall.Errno) {
	tokens, errno := Split(path)
	if errno != 0 {
		return region.Null, errno
	}
	if skipTail < 0 || skipTail > len(tokens) {
		return region.Null, syscall.ENOENT
	}
	tokens = tokens[:len(tokens)-skipTail]

	off := tree.RootOffset()
	node := tree.InodeAt(off)

	for _, tok := range tokens {
		if node.Type != fsnode.TypeDir {
			return region.Null, syscall.ENOTDIR
		}
		dir := node.AsDir()

		switch tok {
		case ".":
			// Stay put.
		case "..":
			parent := tree.ChildOffsets(dir)[0]
			if parent == region.Null {
				parent = tree.RootOffset()
			}
			off = parent
		default:
			_, child := tree.FindChild(dir, tok)
			if child == region.Null {
				return region.Null, syscall.ENOENT
			}
			off = child
		}
		node = tree.InodeAt(off)
	}

	return off, 0
}

// IsAncestor reports whether the inode at ancestorOff lies on the
// path from tree's root down to the inode at off — used by rename to
// reject moving a directory into its own subtree.
func IsAncestor(tree *fsnode.Tree, ancestorOff, off region.Offset) bool {
	if ancestorOff == off {
		return true
	}
	cur := off
	for cur != tree.RootOffset() {
		node := tree.InodeAt(cur)
		if node.Type != fsnode.TypeDir {
			return false
		}
		parent := tree.ChildOffsets(node.AsDir())[0]
		if parent == region.Null || parent == cur {
			return false
		}
		if parent == ancestorOff {
			return true
		}
		cur = parent
	}
	return false
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsck walks a mounted tree and checks it against the
// invariants a healthy region must satisfy: every directory's slot 0
// points at its true parent, every inode is reachable from the root
// by exactly one path, and the free list together with everything
// reachable from the root partitions the region exactly, with no gaps
// and no overlaps.
package fsck

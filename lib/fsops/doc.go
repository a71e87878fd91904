// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsops implements the thirteen filesystem operations as
// methods on Filesystem: getattr, readdir, mknod, mkdir, rmdir,
// unlink, rename, truncate, open, read, write, utimens, statfs. Each
// method resolves its path arguments against the underlying tree,
// checks the resolved inode's kind, mutates, and returns a
// syscall.Errno — never leaving the region in a state that violates
// its structural invariants, even on failure.
package fsops

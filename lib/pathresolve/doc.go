// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathresolve tokenises absolute paths and walks a mounted
// tree from its root to locate the inode a path names — or, with
// skipTail set, the parent directory a create/delete/rename site
// needs, leaving the final component to the caller.
package pathresolve

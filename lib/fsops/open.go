// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/pathresolve"
)

// Open reports whether path exists. There is no file-descriptor table
// to populate here — the global fd/cwd arrays the original C implementation
// carried are dropped per §9's "global state is forbidden" note — so
// open's only job left is existence.
func (fs *Filesystem) Open(path string) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, errno := pathresolve.Resolve(fs.tree, path, 0)
	return errno
}

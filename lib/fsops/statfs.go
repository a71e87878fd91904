// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import (
	"syscall"

	"github.com/regionfs/regionfs/lib/fsnode"
)

// Statfs reports region-wide capacity in 1024-byte blocks. Free and
// available are identical: regionfs has no reserved-for-root slack.
func (fs *Filesystem) Statfs() (StatFS, syscall.Errno) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	free := uint64(fs.tree.A.TotalFree()) / fsnode.BlockSize
	return StatFS{
		Bsize:   fsnode.BlockSize,
		Blocks:  uint64(fs.tree.R.Size()) / fsnode.BlockSize,
		Bfree:   free,
		Bavail:  free,
		Namemax: fsnode.MaxNameLen,
	}, 0
}

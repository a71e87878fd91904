// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import "syscall"

// Truncate resizes a file to size, zero-filling any newly exposed
// bytes on grow. A no-op resize still touches atime, matching every
// other pure-resolve path.
func (fs *Filesystem) Truncate(path string, size int64) syscall.Errno {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if size < 0 {
		return syscall.EINVAL
	}

	_, in, errno := fs.resolveFile(path)
	if errno != 0 {
		return errno
	}
	file := in.AsFile()
	newSize := uint64(size)

	switch {
	case newSize == file.Size:
		fs.tree.Touch(in, false)
		return 0
	case newSize < file.Size:
		fs.tree.Shrink(file, newSize)
	default:
		if errno := fs.tree.Grow(file, newSize); errno != 0 {
			return errno
		}
	}

	file.Size = newSize
	fs.tree.Touch(in, true)
	return 0
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import "syscall"

// Write copies data into path starting at offset, implicitly filling
// the gap between the current end of file and offset with zeros when
// offset lands past it. The chain is grown before anything is
// written; if that grow fails partway through, Grow itself rolls back
// and the file is left exactly as it was found.
func (fs *Filesystem) Write(path string, data []byte, offset int64) (int, syscall.Errno) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if offset < 0 {
		return 0, syscall.EINVAL
	}

	_, in, errno := fs.resolveFile(path)
	if errno != 0 {
		return 0, errno
	}
	file := in.AsFile()

	end := uint64(offset) + uint64(len(data))
	if end > file.Size {
		if errno := fs.tree.Grow(file, end); errno != 0 {
			return 0, errno
		}
		file.Size = end
	}

	fs.tree.WriteRange(file, uint64(offset), data)
	fs.tree.Touch(in, true)
	return len(data), 0
}

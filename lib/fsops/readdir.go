// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package fsops

import "syscall"

// Readdir returns the names of path's children, slot 0 (the parent
// back-reference) excluded. The original C implementation allocates this
// array on the host's heap and reports ENOMEM on failure; a Go slice
// allocation has no analogous caller-visible failure mode, so that
// error path has no home here.
func (fs *Filesystem) Readdir(path string) ([]string, syscall.Errno) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, in, errno := fs.resolveDir(path)
	if errno != 0 {
		return nil, errno
	}
	dir := in.AsDir()
	children := fs.tree.ChildOffsets(dir)

	names := make([]string, 0, len(children)-1)
	for _, c := range children[1:] {
		names = append(names, fs.tree.InodeAt(c).NameString())
	}

	fs.tree.Touch(in, false)
	return names, 0
}

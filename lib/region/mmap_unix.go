// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin || linux

package region

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// BackingFile is a region memory-mapped from a file, so that its
// contents survive process restarts. This is the "backing-file mmap
// plumbing" the original C implementation treats as an external
// collaborator: regionfs's core packages (allocator, fsnode,
// pathresolve, fsops) never call into this file, only the cmd/
// binaries (regionfs-mount, regionfs-fsck, regionfs-browse) do,
// exactly the boundary spec.md draws between the core and its host.
type BackingFile struct {
	Region *Region

	fd   int
	size int64
}

// OpenBackingFile opens or creates path as a fixed-size backing file
// and maps it MAP_SHARED so writes are reflected back to disk (and
// visible to Sync). If the file does not exist, it is created and
// truncated to size, so a fresh region reads as all zeros, per the
// original C implementation's "first mount" contract. If the file exists,
// its current size must match size exactly — resizing an existing
// region is not supported, since every offset recorded inside it is
// only meaningful relative to the region size recorded in the
// superblock.
func OpenBackingFile(path string, size int64) (*BackingFile, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region size must be positive, got %d", size)
	}

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening backing file %s: %w", path, err)
	}

	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("stating backing file: %w", err)
	}

	switch {
	case stat.Size == 0:
		if err := unix.Ftruncate(fd, size); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("truncating backing file to %d bytes: %w", size, err)
		}
	case stat.Size != size:
		unix.Close(fd)
		return nil, fmt.Errorf("backing file %s is %d bytes, expected %d (regions cannot be resized in place)",
			path, stat.Size, size)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap of %s: %w", path, err)
	}

	return &BackingFile{
		Region: Attach(data),
		fd:     fd,
		size:   size,
	}, nil
}

// Sync flushes the mapped pages back to the backing file. A host that
// calls Sync before Close achieves the persistence guarantee the
// original C implementation describes: "the last successful msync is what
// survives."
func (b *BackingFile) Sync() error {
	if err := unix.Msync(b.Region.Bytes, unix.MS_SYNC); err != nil {
		return fmt.Errorf("msync: %w", err)
	}
	return nil
}

// Close unmaps the region and closes the underlying file descriptor.
// It does not implicitly Sync; callers that need durability must call
// Sync first.
func (b *BackingFile) Close() error {
	if err := unix.Munmap(b.Region.Bytes); err != nil {
		unix.Close(b.fd)
		return fmt.Errorf("munmap: %w", err)
	}
	return unix.Close(b.fd)
}

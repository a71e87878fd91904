// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuse adapts lib/fsops.Filesystem onto the go-fuse v2
// InodeEmbedder callback surface, so a mounted region behaves as a
// real POSIX filesystem to the host kernel.
package fuse

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/regionfs/regionfs/lib/fsops"
	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Filesystem is the mounted region backing every operation.
	Filesystem *fsops.Filesystem

	// Uid and Gid are echoed into every getattr response — regionfs
	// stores no ownership fields of its own.
	Uid, Gid uint32

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, a text logger that
	// writes error-level messages to stderr is used.
	Logger *slog.Logger
}

// Mount mounts the region filesystem at the configured mountpoint.
// The caller must call Unmount on the returned Server when done. The
// mountpoint directory is created if it does not exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Filesystem == nil {
		return nil, fmt.Errorf("filesystem is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &node{fs: options.Filesystem, options: &options, path: "/"}

	entryTimeout := time.Second
	attrTimeout := time.Second

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout: &entryTimeout,
		AttrTimeout:  &attrTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "regionfs",
			Name:       "regionfs",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("region filesystem mounted", "mountpoint", options.Mountpoint)
	return server, nil
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// regionfs-mount mounts a single region as a FUSE filesystem. Given a
// config file, it opens (or creates) the backing file, attaches a
// filesystem to it, and serves it at the configured mountpoint until
// signalled to stop.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/regionfs/regionfs/fuse"
	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/config"
	"github.com/regionfs/regionfs/lib/fsops"
	"github.com/regionfs/regionfs/lib/region"
	"github.com/regionfs/regionfs/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var showVersion bool
	flagSet := pflag.NewFlagSet("regionfs-mount", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to the mount configuration file (required)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.BoolP("help", "h", false, "show help")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if showVersion {
		fmt.Println(version.Full())
		return nil
	}
	if configPath == "" {
		return fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	backing, err := region.OpenBackingFile(cfg.BackingFile, cfg.RegionSize)
	if err != nil {
		return fmt.Errorf("opening backing file: %w", err)
	}
	defer func() {
		if err := backing.Close(); err != nil {
			logger.Error("closing backing file", "error", err)
		}
	}()

	clk := clock.Real()
	fs, errno := fsops.Mount(backing.Region, clk)
	if errno != 0 {
		return fmt.Errorf("mounting filesystem: %v", errno)
	}

	server, err := fuse.Mount(fuse.Options{
		Mountpoint: cfg.Mountpoint,
		Filesystem: fs,
		AllowOther: cfg.AllowOther,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("mounting FUSE filesystem: %w", err)
	}

	logger.Info("mounted",
		"mountpoint", cfg.Mountpoint,
		"backing_file", cfg.BackingFile,
		"region_size", cfg.RegionSize,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if err := backing.Sync(); err != nil {
		logger.Error("final sync failed", "error", err)
	}
	if err := server.Unmount(); err != nil {
		return fmt.Errorf("unmounting: %w", err)
	}
	return nil
}

// newLogger builds the standard JSON-to-stderr logger at the level
// named by level ("debug", "info", "warn", "error"). Config.Validate
// has already rejected any other value by the time this is called.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// regionfs-browse is an interactive terminal tree browser for a
// backing file, with fuzzy path jump and syntax-highlighted file
// preview. It mounts the tree read-only in intent: nothing it does
// calls a mutating fsnode or fsops operation.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/fsnode"
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
	var (
		backingFile string
		regionSize  int64
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("regionfs-browse", pflag.ContinueOnError)
	flagSet.StringVar(&backingFile, "backing-file", "", "path to the region's backing file (required)")
	flagSet.Int64Var(&regionSize, "region-size", 0, "size in bytes of the backing file (required)")
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
	if backingFile == "" || regionSize <= 0 {
		return fmt.Errorf("--backing-file and --region-size are required")
	}

	backing, err := region.OpenBackingFile(backingFile, regionSize)
	if err != nil {
		return fmt.Errorf("opening backing file: %w", err)
	}
	defer backing.Close()

	tree, errno := fsnode.Mount(backing.Region, clock.Real())
	if errno != 0 {
		return fmt.Errorf("mounting for browsing: %v", errno)
	}

	program := tea.NewProgram(newModel(tree), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

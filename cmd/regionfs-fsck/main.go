// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// regionfs-fsck checks a backing file's invariants offline, without
// mounting it as a live filesystem. It can also dump a compressed,
// canonical snapshot of the tree for external comparison, and verify
// that a close/reopen cycle changes nothing.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/regionfs/regionfs/lib/clock"
	"github.com/regionfs/regionfs/lib/fsck"
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
		backingFile   string
		regionSize    int64
		dumpPath      string
		verifyRemount bool
		showVersion   bool
	)

	flagSet := pflag.NewFlagSet("regionfs-fsck", pflag.ContinueOnError)
	flagSet.StringVar(&backingFile, "backing-file", "", "path to the region's backing file (required)")
	flagSet.Int64Var(&regionSize, "region-size", 0, "size in bytes of the backing file (required)")
	flagSet.StringVar(&dumpPath, "dump", "", "write a compressed canonical snapshot to this path")
	flagSet.BoolVar(&verifyRemount, "verify-remount", false, "close and reopen the backing file, and confirm the tree is unchanged")
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

	tree, errno := fsnode.Mount(backing.Region, clock.Real())
	if errno != 0 {
		backing.Close()
		return fmt.Errorf("mounting for inspection: %v", errno)
	}

	report := fsck.Check(tree)
	before := fsck.Snapshot(tree)
	printReport(os.Stdout, backingFile, report)

	if dumpPath != "" {
		encoded, err := fsck.EncodeSnapshot(before)
		if err != nil {
			backing.Close()
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := os.WriteFile(dumpPath, encoded, 0o644); err != nil {
			backing.Close()
			return fmt.Errorf("writing snapshot: %w", err)
		}
		fmt.Printf("snapshot written to %s (%s)\n", dumpPath, humanize.Bytes(uint64(len(encoded))))
	}

	if err := backing.Close(); err != nil {
		return fmt.Errorf("closing backing file: %w", err)
	}

	if verifyRemount {
		if err := checkRemountStable(backingFile, regionSize, before); err != nil {
			return err
		}
	}

	if !report.OK() {
		return fmt.Errorf("%d invariant violation(s) found", len(report.Violations))
	}
	return nil
}

// checkRemountStable reopens backingFile from scratch and confirms its
// snapshot is byte-identical to before, directly exercising P1: the
// tree observed after a mount sequence is exactly what an earlier
// mount sequence produced.
func checkRemountStable(backingFile string, regionSize int64, before fsck.Node) error {
	backing, err := region.OpenBackingFile(backingFile, regionSize)
	if err != nil {
		return fmt.Errorf("reopening backing file: %w", err)
	}
	defer backing.Close()

	tree, errno := fsnode.Mount(backing.Region, clock.Real())
	if errno != 0 {
		return fmt.Errorf("remounting for inspection: %v", errno)
	}
	after := fsck.Snapshot(tree)

	encBefore, err := fsck.EncodeSnapshot(before)
	if err != nil {
		return fmt.Errorf("encoding pre-remount snapshot: %w", err)
	}
	encAfter, err := fsck.EncodeSnapshot(after)
	if err != nil {
		return fmt.Errorf("encoding post-remount snapshot: %w", err)
	}
	if !bytes.Equal(encBefore, encAfter) {
		return fmt.Errorf("tree changed across close/reopen")
	}
	fmt.Println("remount check passed: tree unchanged")
	return nil
}

// reportWidth returns the terminal width to wrap report lines to,
// falling back to 80 columns when w isn't a TTY (redirected to a
// file, piped).
func reportWidth(w *os.File) int {
	if width, _, err := term.GetSize(int(w.Fd())); err == nil {
		return width
	}
	return 80
}

func printReport(w *os.File, backingFile string, report *fsck.Report) {
	width := reportWidth(w)

	if term.IsTerminal(int(w.Fd())) {
		fmt.Fprintf(w, "%s\n", backingFile)
	} else {
		fmt.Fprintf(w, "%s (non-interactive)\n", backingFile)
	}
	fmt.Fprintf(w, "  region:  %s\n", humanize.Bytes(report.RegionBytes))
	fmt.Fprintf(w, "  free:    %s\n", humanize.Bytes(report.FreeBytes))
	fmt.Fprintf(w, "  data:    %s across %d file(s), %d directories\n",
		humanize.Bytes(report.DataBytes), report.Files, report.Dirs)
	if report.OK() {
		fmt.Fprintln(w, "  status:  clean")
		return
	}
	fmt.Fprintf(w, "  status:  %d violation(s)\n", len(report.Violations))
	for _, v := range report.Violations {
		fmt.Fprintln(w, ansi.Wrap("    - "+v, width, " ,.;-+|"))
	}
}

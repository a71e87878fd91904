// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package region implements the position-independent memory model that
// the rest of regionfs is built on: a contiguous byte span (the
// "region") that never contains a native Go pointer, slice header, or
// interface value. Every intra-region reference is an [Offset] — a
// byte count from the start of the region — and the only legal way to
// turn an Offset into something dereferenceable is [At] or [PointerAt].
//
// A region attached at one base address and later reattached at a
// different base address (a different mmap call, a different process)
// reads identically, because nothing inside it depends on where it
// happens to live in the current address space. [New] creates a fresh,
// zeroed, heap-backed region for tests and for filesystems that never
// need to persist. [Attach] wraps an existing byte slice, typically one
// produced by mmap-ing a backing file (see the platform-specific
// attach in this package) so the same bytes can be reinterpreted after
// a remount.
package region

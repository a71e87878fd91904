// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsnode lays out inodes, directory children arrays, and file
// block chains inside a region, and enforces the invariants that make
// that layout a valid filesystem tree.
//
// Every record fsnode defines — Superblock, Inode, a children array, a
// file block header — is a fixed-layout Go struct overlaid directly
// onto region bytes via region.PointerAt. None of them may contain a
// Go pointer, slice, map, or interface: every cross-reference is a
// region.Offset, resolved fresh on each access. An Inode's file/
// directory body is a tagged union expressed as a fixed byte array
// reinterpreted through AsFile or AsDir depending on Type, rather than
// through any form of language-level polymorphism — the record has to
// mean the same thing no matter which process, or which base address,
// last wrote it.
//
// fsnode owns bootstrap: the first time a region is mounted (detected
// by the superblock's magic being absent), it lays down the
// superblock, the root inode, and the root's initial children array at
// fixed reserved offsets, then hands the remainder of the region to
// lib/allocator as the initial free block.
package fsnode

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for regionfs packages.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// region file names or path components distinguishable across
// parallel subtests.
//
// This package has no regionfs-internal dependencies.
package testutil

// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the YAML file describing a single mount:
// where its backing file lives, how large a fresh region should be,
// where to mount it, and how verbosely to log. There is no discovery
// and no environment-variable override — the file passed to LoadFile is
// the single source of truth.
package config

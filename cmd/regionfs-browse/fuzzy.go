// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// fuzzyMatch reports whether pattern fuzzy-matches text, and its
// score if so. slab is reused across calls to avoid per-match
// allocation, following fzf's own recommended usage.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) (matched bool, score int) {
	if len(pattern) == 0 {
		return true, 0
	}
	chars := util.ToChars([]byte(text))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
	if result.Start < 0 {
		return false, 0
	}
	return true, result.Score
}

// newMatchSlab allocates the scratch buffers fzf's matcher needs.
// Sizes follow fzf's own default terminal-width scratch allocation.
func newMatchSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

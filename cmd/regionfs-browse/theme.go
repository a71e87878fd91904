// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// renderer forces an ANSI256 color profile rather than relying on
// auto-detection, which produces uncolored output when stdout isn't
// a TTY (piped preview, redirected logs).
var renderer = lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.ANSI256))

func init() {
	renderer.SetColorProfile(termenv.ANSI256)
}

// theme defines the color palette for the browser's terminal UI. All
// colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	DirText    lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	JumpMatchForeground lipgloss.Color
}

// defaultTheme is the built-in dark-terminal color scheme.
var defaultTheme = theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	DirText:    lipgloss.Color("75"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	JumpMatchForeground: lipgloss.Color("220"),
}

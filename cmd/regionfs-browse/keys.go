// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the tree browser.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	JumpActivate key.Binding
	JumpClear    key.Binding

	Quit key.Binding
}

// defaultKeyMap is the built-in key binding set: vim-style navigation
// alongside arrow keys.
var defaultKeyMap = keyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse/parent"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right", "enter"),
		key.WithHelp("l/→/enter", "expand/preview"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "page down"),
	),
	JumpActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "jump to path"),
	),
	JumpClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear jump"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

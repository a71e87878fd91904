// Copyright 2026 The Regionfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/regionfs/regionfs/lib/fsnode"
	"github.com/regionfs/regionfs/lib/region"
)

// entry is one row in the flattened, currently-visible tree listing.
type entry struct {
	path  string
	name  string
	isDir bool
	size  uint64
	depth int
}

// model is the bubbletea model for the tree browser.
type model struct {
	tree     *fsnode.Tree
	expanded map[string]bool
	visible  []entry
	cursor   int

	width, height int

	jumping   bool
	jumpInput textinput.Model
	allPaths  []string
	slab      *util.Slab

	previewName    string
	previewContent string
	statusLine     string

	theme theme
	keys  keyMap
}

// newModel builds a browser over tree, pre-expanding the root.
func newModel(tree *fsnode.Tree) model {
	input := textinput.New()
	input.Placeholder = "path fragment…"
	input.Prompt = "/ "

	m := model{
		tree:      tree,
		expanded:  map[string]bool{"/": true},
		jumpInput: input,
		slab:      newMatchSlab(),
		theme:     defaultTheme,
		keys:      defaultKeyMap,
	}
	m.allPaths = walkAllPaths(tree)
	m.rebuildVisible()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m *model) rebuildVisible() {
	m.visible = m.visible[:0]
	m.appendDir(0, "/")
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) appendDir(depth int, dirPath string) {
	off, ok := resolvePath(m.tree, dirPath)
	if !ok {
		return
	}
	in := m.tree.InodeAt(off)
	if in.Type != fsnode.TypeDir {
		return
	}
	m.visible = append(m.visible, entry{path: dirPath, name: labelForPath(dirPath), isDir: true, depth: depth})
	if !m.expanded[dirPath] {
		return
	}

	type childInfo struct {
		name  string
		isDir bool
		size  uint64
	}
	var infos []childInfo
	for _, childOff := range m.tree.ChildOffsets(in.AsDir())[1:] {
		child := m.tree.InodeAt(childOff)
		info := childInfo{name: child.NameString(), isDir: child.Type == fsnode.TypeDir}
		if !info.isDir {
			info.size = child.AsFile().Size
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].name < infos[j].name })

	for _, info := range infos {
		childPath := path.Join(dirPath, info.name)
		if info.isDir {
			m.appendDir(depth+1, childPath)
		} else {
			m.visible = append(m.visible, entry{path: childPath, name: info.name, size: info.size, depth: depth + 1})
		}
	}
}

func labelForPath(p string) string {
	if p == "/" {
		return "/"
	}
	return path.Base(p)
}

// walkAllPaths returns every path in tree, directories and files
// alike, for the fuzzy jump index.
func walkAllPaths(tree *fsnode.Tree) []string {
	var paths []string
	var walk func(off region.Offset, dirPath string)
	walk = func(off region.Offset, dirPath string) {
		paths = append(paths, dirPath)
		in := tree.InodeAt(off)
		if in.Type != fsnode.TypeDir {
			return
		}
		for _, childOff := range tree.ChildOffsets(in.AsDir())[1:] {
			child := tree.InodeAt(childOff)
			walk(childOff, path.Join(dirPath, child.NameString()))
		}
	}
	walk(tree.RootOffset(), "/")
	return paths
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.jumping {
			return m.updateJump(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m model) updateJump(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.JumpClear):
		m.jumping = false
		m.jumpInput.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		if best, ok := m.bestJumpMatch(); ok {
			m.selectPath(best)
		}
		m.jumping = false
		m.jumpInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.JumpActivate):
		m.jumping = true
		m.jumpInput.SetValue("")
		m.jumpInput.Focus()
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.pageSize()
		if m.cursor < 0 {
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.pageSize()
		if m.cursor >= len(m.visible) {
			m.cursor = len(m.visible) - 1
		}
	case key.Matches(msg, m.keys.Left):
		m.collapseOrGoToParent()
	case key.Matches(msg, m.keys.Right):
		m.expandOrPreview()
	}
	return m, nil
}

func (m *model) pageSize() int {
	if m.height <= 4 {
		return 1
	}
	return m.height - 4
}

// bestJumpMatch returns the highest-scoring path matching the current
// jump query.
func (m model) bestJumpMatch() (string, bool) {
	pattern := []rune(m.jumpInput.Value())
	if len(pattern) == 0 {
		return "", false
	}
	best, bestScore, found := "", -1, false
	for _, p := range m.allPaths {
		matched, score := fuzzyMatch(p, pattern, m.slab)
		if matched && score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}

// selectPath expands every ancestor of target, rebuilds the visible
// list, and moves the cursor to it.
func (m *model) selectPath(target string) {
	for dir := path.Dir(target); ; dir = path.Dir(dir) {
		m.expanded[dir] = true
		if dir == "/" {
			break
		}
	}
	m.rebuildVisible()
	for i, e := range m.visible {
		if e.path == target {
			m.cursor = i
			if !e.isDir {
				m.loadPreview(e)
			}
			return
		}
	}
}

func (m *model) collapseOrGoToParent() {
	if len(m.visible) == 0 {
		return
	}
	current := m.visible[m.cursor]
	if current.isDir && m.expanded[current.path] && current.path != "/" {
		m.expanded[current.path] = false
		m.rebuildVisible()
		return
	}
	parent := path.Dir(current.path)
	m.rebuildVisible()
	for i, e := range m.visible {
		if e.path == parent {
			m.cursor = i
			return
		}
	}
}

func (m *model) expandOrPreview() {
	if len(m.visible) == 0 {
		return
	}
	current := m.visible[m.cursor]
	if current.isDir {
		m.expanded[current.path] = !m.expanded[current.path]
		m.rebuildVisible()
		return
	}
	m.loadPreview(current)
}

func (m *model) loadPreview(e entry) {
	off, ok := resolvePath(m.tree, e.path)
	if !ok {
		m.statusLine = fmt.Sprintf("cannot read %s", e.path)
		return
	}
	in := m.tree.InodeAt(off)
	body := in.AsFile()
	data := make([]byte, body.Size)
	m.tree.ReadRange(body, 0, data)
	m.previewName = e.path
	m.previewContent = highlightPreview(e.name, data)
}

func (m model) View() string {
	if m.width == 0 {
		return "loading…"
	}

	listWidth := m.width / 2
	previewWidth := m.width - listWidth - 1

	listPane := m.renderList(listWidth, m.height-2)
	previewPane := m.renderPreview(previewWidth, m.height-2)

	body := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	var footer string
	if m.jumping {
		footer = m.jumpInput.View()
	} else {
		footer = renderer.NewStyle().Foreground(m.theme.HelpText).Render(
			"↑/↓ move  ←/→ collapse/expand  / jump  q quit")
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m model) renderList(width, height int) string {
	var b strings.Builder
	normal := renderer.NewStyle().Foreground(m.theme.NormalText)
	dirStyle := renderer.NewStyle().Foreground(m.theme.DirText)
	selected := renderer.NewStyle().
		Background(m.theme.SelectedBackground).
		Foreground(m.theme.SelectedForeground)

	start := 0
	if m.cursor >= height {
		start = m.cursor - height + 1
	}
	end := start + height
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for i := start; i < end; i++ {
		e := m.visible[i]
		indent := strings.Repeat("  ", e.depth)
		plain := indent + e.name
		if e.isDir {
			marker := "▸"
			if m.expanded[e.path] {
				marker = "▾"
			}
			plain = fmt.Sprintf("%s%s %s/", indent, marker, e.name)
		}

		var line string
		switch {
		case i == m.cursor:
			line = selected.Render(padTo(plain, width))
		case e.isDir:
			line = dirStyle.Render(plain)
		default:
			line = normal.Render(plain)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return renderer.NewStyle().Width(width).Height(height).Render(b.String())
}

func (m model) renderPreview(width, height int) string {
	if m.previewName == "" {
		return renderer.NewStyle().Width(width).Height(height).
			Foreground(m.theme.FaintText).Render("select a file to preview")
	}
	header := renderer.NewStyle().Foreground(m.theme.HeaderForeground).Render(m.previewName)
	return renderer.NewStyle().Width(width).Height(height).Render(header + "\n\n" + m.previewContent)
}

// padTo pads s with spaces to at least width visible characters.
func padTo(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// resolvePath resolves an absolute path against tree with a plain
// read-only walk, since this package only ever looks things up for
// display and has no use for lib/pathresolve's syscall.Errno surface.
func resolvePath(tree *fsnode.Tree, p string) (region.Offset, bool) {
	if p == "/" {
		return tree.RootOffset(), true
	}
	off := tree.RootOffset()
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		in := tree.InodeAt(off)
		if in.Type != fsnode.TypeDir {
			return region.Null, false
		}
		idx, childOff := tree.FindChild(in.AsDir(), part)
		if idx < 0 {
			return region.Null, false
		}
		off = childOff
	}
	return off, true
}

// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Revision is one candidate model file.
type Revision struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// ListRevisions returns the .ifc files in dir, oldest first.
func ListRevisions(dir string) ([]Revision, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var revs []Revision
	for _, de := range entries {
		if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".ifc") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			return nil, err
		}
		revs = append(revs, Revision{Path: filepath.Join(dir, de.Name()), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].ModTime.Before(revs[j].ModTime) })
	return revs, nil
}

// SelectRevisions lets the user pick two revisions. The result is ordered
// oldest first, or nil when the user quits.
func SelectRevisions(items []Revision) ([]Revision, error) {
	p := tea.NewProgram(newPicker(items))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}
	return m.(picker).result(), nil
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Go     key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	Toggle: key.NewBinding(key.WithKeys(" ", "tab"), key.WithHelp("space", "toggle")),
	Go:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go")),
	Quit:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#623CE4")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A000"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

type picker struct {
	items    []Revision
	filter   textinput.Model
	cursor   int
	selected []string
	quit     bool
}

func newPicker(items []Revision) picker {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Focus()
	return picker{items: items, filter: ti}
}

func (m picker) Init() tea.Cmd { return textinput.Blink }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		visible := m.visible()
		switch {
		case key.Matches(k, keys.Quit):
			m.selected = nil
			m.quit = true
			return m, tea.Quit
		case key.Matches(k, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(k, keys.Down):
			if m.cursor < len(visible)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(k, keys.Toggle):
			if m.cursor < len(visible) {
				m.toggle(visible[m.cursor].Path)
			}
			return m, nil
		case key.Matches(k, keys.Go):
			if len(m.selected) == 2 {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	return m, cmd
}

func (m *picker) toggle(path string) {
	for i, p := range m.selected {
		if p == path {
			m.selected = append(m.selected[:i], m.selected[i+1:]...)
			return
		}
	}
	if len(m.selected) < 2 {
		m.selected = append(m.selected, path)
	}
}

func (m picker) isSelected(path string) bool {
	for _, p := range m.selected {
		if p == path {
			return true
		}
	}
	return false
}

func (m picker) visible() []Revision {
	f := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if f == "" {
		return m.items
	}
	var out []Revision
	for _, r := range m.items {
		if strings.Contains(strings.ToLower(filepath.Base(r.Path)), f) {
			out = append(out, r)
		}
	}
	return out
}

// result returns the two selections oldest first.
func (m picker) result() []Revision {
	if m.quit || len(m.selected) != 2 {
		return nil
	}
	var out []Revision
	for _, r := range m.items {
		if m.isSelected(r.Path) {
			out = append(out, r)
		}
	}
	return out
}

func (m picker) View() string {
	var b strings.Builder
	b.WriteString("Select the old and new revision:\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")
	for i, r := range m.visible() {
		cursor := " "
		if m.cursor == i {
			cursor = cursorStyle.Render(">")
		}
		mark := "[ ]"
		if m.isSelected(r.Path) {
			mark = selectedStyle.Render("[x]")
		}
		fmt.Fprintf(&b, "%s %s %-40s %8s %s\n", cursor, mark, filepath.Base(r.Path),
			humanize.Bytes(uint64(r.Size)), dimStyle.Render(humanize.Time(r.ModTime)))
	}
	b.WriteString(dimStyle.Render("\nSPACE: toggle, ENTER: go, ESC: quit\n"))
	return b.String()
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wit-codegen/codegen"
	"github.com/wippyai/wit-codegen/wit"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	ifaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateBrowse browseState = iota
	stateFilter
	statePreview
)

type entryInfo struct {
	name    string
	pkg     string
	index   int
	isWorld bool
	types   int
	funcs   int
}

type browseModel struct {
	err        error
	filename   string
	runtimeMod string
	doc        *wit.Document
	entries    []entryInfo
	visible    []int // indices into entries after filtering
	filter     textinput.Model
	selected   int
	state      browseState
	preview    []string
	offset     int
	height     int
}

type docLoadedMsg struct {
	err     error
	doc     *wit.Document
	entries []entryInfo
}

type previewMsg struct {
	err   error
	lines []string
}

func newBrowseModel(filename, runtimeMod string) *browseModel {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "
	filter.Width = 30

	return &browseModel{
		filename:   filename,
		runtimeMod: runtimeMod,
		filter:     filter,
		height:     24,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadDocument
}

func (m *browseModel) loadDocument() tea.Msg {
	doc, err := loadDocument(m.filename)
	if err != nil {
		return docLoadedMsg{err: err}
	}

	var entries []entryInfo
	for _, pkg := range doc.Packages {
		for _, ni := range pkg.Interfaces {
			iface, err := doc.InterfaceAt(ni.Index)
			if err != nil {
				return docLoadedMsg{err: err}
			}
			entries = append(entries, entryInfo{
				name:  ni.Name,
				pkg:   pkg.Name,
				index: ni.Index,
				types: len(iface.Types),
				funcs: len(iface.Functions),
			})
		}
		for _, ni := range pkg.Worlds {
			world, err := doc.WorldAt(ni.Index)
			if err != nil {
				return docLoadedMsg{err: err}
			}
			entries = append(entries, entryInfo{
				name:    ni.Name,
				pkg:     pkg.Name,
				index:   ni.Index,
				isWorld: true,
				types:   len(world.Imports),
				funcs:   len(world.Exports),
			})
		}
	}

	return docLoadedMsg{doc: doc, entries: entries}
}

// generatePreview renders the selected entry alone. A synthetic package
// holding just that member makes every cross-interface use resolve as a
// foreign import, so the preview matches what a per-interface split of the
// document would produce.
func (m *browseModel) generatePreview() tea.Msg {
	if len(m.visible) == 0 {
		return previewMsg{lines: []string{"nothing selected"}}
	}
	e := m.entries[m.visible[m.selected]]

	pkg := &wit.Package{Name: e.pkg}
	if e.isWorld {
		pkg.Worlds = []wit.NamedIndex{{Name: e.name, Index: e.index}}
	} else {
		pkg.Interfaces = []wit.NamedIndex{{Name: e.name, Index: e.index}}
	}
	sub := &wit.Document{
		Worlds:     m.doc.Worlds,
		Interfaces: m.doc.Interfaces,
		Types:      m.doc.Types,
		Packages:   []*wit.Package{pkg},
	}

	out, err := codegen.Generate(sub, codegen.Options{RuntimeModule: m.runtimeMod})
	if err != nil {
		return previewMsg{err: err}
	}
	return previewMsg{lines: strings.Split(out, "\n")}
}

func (m *browseModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if needle == "" || strings.Contains(strings.ToLower(e.name), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.state = stateBrowse
				m.filter.Blur()
			case "ctrl+c":
				return m, tea.Quit
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.applyFilter()
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			switch m.state {
			case stateBrowse:
				if m.selected > 0 {
					m.selected--
				}
			case statePreview:
				if m.offset > 0 {
					m.offset--
				}
			}

		case "down", "j":
			switch m.state {
			case stateBrowse:
				if m.selected < len(m.visible)-1 {
					m.selected++
				}
			case statePreview:
				if m.offset < len(m.preview)-1 {
					m.offset++
				}
			}

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.offset = 0
				return m, m.generatePreview
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "esc":
			if m.state == statePreview {
				m.state = stateBrowse
				m.preview = nil
				m.err = nil
			}
		}

	case docLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.doc = msg.doc
		m.entries = msg.entries
		m.applyFilter()

	case previewMsg:
		m.err = msg.err
		m.preview = msg.lines
		m.state = statePreview
	}

	return m, nil
}

func (m *browseModel) View() string {
	if m.err != nil && m.state != statePreview {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.doc == nil {
		return "Loading document..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("WIT Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse, stateFilter:
		if m.state == stateFilter || m.filter.Value() != "" {
			b.WriteString(m.filter.View())
			b.WriteString("\n\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no matching interfaces"))
			b.WriteString("\n")
		}
		for i, ei := range m.visible {
			e := m.entries[ei]
			line := m.formatEntry(e)
			if i == m.selected && m.state == stateBrowse {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter preview • / filter • q quit"))

	case statePreview:
		e := m.entries[m.visible[m.selected]]
		b.WriteString(fmt.Sprintf("Generated %s\n\n", ifaceStyle.Render(e.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		} else {
			end := m.offset + m.height - 6
			if end > len(m.preview) {
				end = len(m.preview)
			}
			for _, line := range m.preview[m.offset:end] {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *browseModel) formatEntry(e entryInfo) string {
	kind := "interface"
	counts := fmt.Sprintf("%d types, %d functions", e.types, e.funcs)
	if e.isWorld {
		kind = "world"
		counts = fmt.Sprintf("%d imports, %d exports", e.types, e.funcs)
	}
	return fmt.Sprintf("%s %s %s (%s)",
		countStyle.Render(kind),
		ifaceStyle.Render(e.name),
		helpStyle.Render(e.pkg),
		counts)
}

func runInteractive(filename, runtimeMod string) error {
	p := tea.NewProgram(newBrowseModel(filename, runtimeMod), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

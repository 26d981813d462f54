package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/render"
	"github.com/vine-io/flowview/view"
	log "github.com/vine-io/vine/lib/logger"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header and footer lines around the viewport
	chromeHeight = 4
)

var (
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1e40af")).Underline(true)
	inactiveTab = lipgloss.NewStyle().Faint(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#166534"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#991b1b"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

type Options struct {
	State     *view.State
	ExportDir string
	Text      *render.TextRenderer
}

type Option func(*Options)

func WithState(st *view.State) Option {
	return func(o *Options) {
		o.State = st
	}
}

func WithExportDir(dir string) Option {
	return func(o *Options) {
		o.ExportDir = dir
	}
}

func WithTextRenderer(tr *render.TextRenderer) Option {
	return func(o *Options) {
		o.Text = tr
	}
}

// exportedMsg reports the outcome of an export started with the export key.
type exportedMsg struct {
	path string
	err  error
}

// Model is an interactive viewer for one document. It owns its view state.
type Model struct {
	doc       *flowview.Document
	state     *view.State
	keys      KeyMap
	text      *render.TextRenderer
	viewport  viewport.Model
	exportDir string
	status    string
	failed    bool
	width     int
}

func New(doc *flowview.Document, opts ...Option) *Model {
	options := Options{ExportDir: "."}
	for _, opt := range opts {
		opt(&options)
	}
	if options.State == nil {
		options.State = view.NewState()
	}
	if options.Text == nil {
		options.Text = render.NewTextRenderer()
	}

	m := &Model{
		doc:       doc,
		state:     options.State,
		keys:      DefaultKeyMap(),
		text:      options.Text,
		viewport:  viewport.New(defaultWidth, defaultHeight-chromeHeight),
		exportDir: options.ExportDir,
		width:     defaultWidth,
	}
	m.refresh()
	return m
}

func (m *Model) State() view.State { return *m.state }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.refresh()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			log.Errorf("export failed: %v", msg.err)
			m.status, m.failed = "export failed: "+msg.err.Error(), true
		} else {
			m.status, m.failed = "exported to "+msg.path, false
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.state.ToggleMode()
		case key.Matches(msg, m.keys.Visual):
			m.state.SetMode(view.Visual)
		case key.Matches(msg, m.keys.Source):
			m.state.SetMode(view.Source)
		case key.Matches(msg, m.keys.ZoomIn):
			m.state.ZoomIn()
		case key.Matches(msg, m.keys.ZoomOut):
			m.state.ZoomOut()
		case key.Matches(msg, m.keys.ZoomReset):
			m.state.ResetZoom()
		case key.Matches(msg, m.keys.Export):
			return m, m.export()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		m.status = ""
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) export() tea.Cmd {
	doc, dir := m.doc, m.exportDir
	return func() tea.Msg {
		path, err := doc.Export(dir, "")
		return exportedMsg{path: path, err: err}
	}
}

// refresh redraws the viewport content for the current state.
func (m *Model) refresh() {
	m.viewport.SetContent(m.text.Render(m.doc.Page(m.state)))
	if m.state.Mode == view.Visual {
		m.viewport.GotoTop()
	}
}

func (m *Model) View() string {
	var tabs []string
	for _, mode := range []view.Mode{view.Visual, view.Source} {
		style := inactiveTab
		if mode == m.state.Mode {
			style = activeTab
		}
		tabs = append(tabs, style.Render(mode.Title()))
	}
	header := strings.Join(tabs, "  ")
	if m.state.Mode == view.Visual {
		header += fmt.Sprintf("   zoom %d%%", m.state.Zoom)
	}

	footer := m.help()
	if m.status != "" {
		style := statusStyle
		if m.failed {
			style = errorStyle
		}
		footer = style.Render(m.status) + "\n" + footer
	}

	return header + "\n\n" + m.viewport.View() + "\n" + footer
}

func (m *Model) help() string {
	parts := make([]string, 0)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Width(m.width).Render(strings.Join(parts, " • "))
}

// Run starts the viewer full screen and blocks until it exits.
func Run(doc *flowview.Document, opts ...Option) error {
	p := tea.NewProgram(New(doc, opts...), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

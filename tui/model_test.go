package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vine-io/flowview"
	"github.com/vine-io/flowview/render"
	"github.com/vine-io/flowview/view"
)

const sample = `<bpmn:startEvent id="s" name="Begin"/><bpmn:task id="t" name="Work"/><bpmn:endEvent id="e" name="Done"/>`

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(t *testing.T, opts ...Option) *Model {
	tr := render.NewTextRenderer(render.WithOutput(&bytes.Buffer{}), render.WithColorProfile(termenv.Ascii))
	opts = append([]Option{WithTextRenderer(tr), WithExportDir(t.TempDir())}, opts...)
	return New(flowview.NewDocument(sample, flowview.WithName("sample.bpmn")), opts...)
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		msg     tea.KeyMsg
	}{
		{"quit with q", km.Quit, runes("q")},
		{"quit with ctrl+c", km.Quit, tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"toggle with tab", km.Toggle, tea.KeyMsg{Type: tea.KeyTab}},
		{"zoom in with +", km.ZoomIn, runes("+")},
		{"zoom in with =", km.ZoomIn, runes("=")},
		{"zoom out", km.ZoomOut, runes("-")},
		{"reset", km.ZoomReset, runes("0")},
		{"export", km.Export, runes("e")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
	assert.Len(t, km.ShortHelp(), 6)
}

func TestModeKeys(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, view.Visual, m.State().Mode)
	assert.Contains(t, m.View(), render.DiagramTitle)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, view.Source, m.State().Mode)
	assert.Contains(t, m.View(), render.SourceTitle)

	m.Update(runes("v"))
	assert.Equal(t, view.Visual, m.State().Mode)
	m.Update(runes("x"))
	assert.Equal(t, view.Source, m.State().Mode)
	m.Update(runes("x"))
	assert.Equal(t, view.Source, m.State().Mode)
}

func TestZoomKeys(t *testing.T) {
	m := newModel(t)

	m.Update(runes("+"))
	m.Update(runes("+"))
	assert.Equal(t, 150, m.State().Zoom)
	assert.Contains(t, m.View(), "zoom 150%")

	for i := 0; i < 10; i++ {
		m.Update(runes("-"))
	}
	assert.Equal(t, view.MinZoom, m.State().Zoom)

	m.Update(runes("0"))
	assert.Equal(t, view.DefaultZoom, m.State().Zoom)
}

func TestZoomKeepsAcrossModes(t *testing.T) {
	m := newModel(t, WithState(&view.State{Mode: view.Visual, Zoom: 175}))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, view.State{Mode: view.Visual, Zoom: 175}, m.State())
}

func TestModelsAreIndependent(t *testing.T) {
	a, b := newModel(t), newModel(t)
	a.Update(runes("+"))
	a.Update(runes("x"))

	assert.Equal(t, view.State{Mode: view.Source, Zoom: 125}, a.State())
	assert.Equal(t, view.State{Mode: view.Visual, Zoom: 100}, b.State())
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	m := newModel(t, WithExportDir(dir))

	_, cmd := m.Update(runes("e"))
	require.NotNil(t, cmd)
	msg := cmd()
	m.Update(msg)

	exported, ok := msg.(exportedMsg)
	require.True(t, ok)
	require.NoError(t, exported.err)
	assert.Equal(t, dir, filepath.Dir(exported.path))

	data, err := os.ReadFile(exported.path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))
	assert.Contains(t, m.View(), "exported to")
}

func TestWindowResize(t *testing.T) {
	m := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 40-chromeHeight, m.viewport.Height)

	m.Update(tea.WindowSizeMsg{Width: 10, Height: 2})
	assert.Equal(t, 1, m.viewport.Height)
}

func TestEmptyDocument(t *testing.T) {
	tr := render.NewTextRenderer(render.WithOutput(&bytes.Buffer{}), render.WithColorProfile(termenv.Ascii))
	m := New(flowview.NewDocument(""), WithTextRenderer(tr))
	assert.Contains(t, m.View(), render.EmptyTitle)
}

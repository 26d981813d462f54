package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/view"
)

const (
	baseBoxWidth  = 32
	baseCellWidth = 14
)

type TextOptions struct {
	Output  io.Writer
	Profile *termenv.Profile
}

type TextOption func(*TextOptions)

// WithOutput sets the writer whose terminal capabilities decide the colors.
func WithOutput(w io.Writer) TextOption {
	return func(o *TextOptions) {
		o.Output = w
	}
}

// WithColorProfile forces a color profile, termenv.Ascii disables colors.
func WithColorProfile(p termenv.Profile) TextOption {
	return func(o *TextOptions) {
		o.Profile = &p
	}
}

// TextRenderer draws a Page for terminals.
type TextRenderer struct {
	r *lipgloss.Renderer
}

func NewTextRenderer(opts ...TextOption) *TextRenderer {
	options := TextOptions{Output: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}

	r := lipgloss.NewRenderer(options.Output)
	if options.Profile != nil {
		r.SetColorProfile(*options.Profile)
	}
	return &TextRenderer{r: r}
}

// Render draws the body for the page's current mode followed by the
// information panel.
func (tr *TextRenderer) Render(p *Page) string {
	var body string
	if p.state().Mode == view.Source {
		body = tr.Source(p)
	} else {
		body = tr.Visual(p)
	}
	return body + "\n\n" + tr.Info(p)
}

// Visual draws the elements as a vertical stack of boxes, sized by zoom.
func (tr *TextRenderer) Visual(p *Page) string {
	zoom := p.state().Zoom
	if p.Elements.IsEmpty() {
		return tr.empty(zoom)
	}

	width := scaled(baseBoxWidth, zoom)
	title := tr.r.NewStyle().Bold(true).Width(width).Align(lipgloss.Center).Render(DiagramTitle)
	subtitle := tr.r.NewStyle().Faint(true).Width(width).Align(lipgloss.Center).Render(DiagramSubtitle)

	blocks := []string{title, subtitle, ""}
	for i, elem := range p.Elements {
		blocks = append(blocks, tr.box(elem, zoom))
		if i < len(p.Elements)-1 {
			blocks = append(blocks, tr.connector(width, zoom))
		}
	}
	blocks = append(blocks, "", tr.Summary(p))

	return lipgloss.JoinVertical(lipgloss.Center, blocks...)
}

func (tr *TextRenderer) box(elem *bpmn.Element, zoom int) string {
	ks := StyleOf(elem.Kind)
	color := lipgloss.Color(ks.Color)

	badge := tr.r.NewStyle().Faint(true).Render("[" + elem.Kind.String() + "]")
	head := ks.Glyph + " " + badge
	label := tr.r.NewStyle().Bold(true).Foreground(color).Render(elem.Label)

	pad := 0
	if zoom >= 150 {
		pad = 1
	}
	return tr.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(scaled(baseBoxWidth, zoom)).
		Align(lipgloss.Center).
		Padding(pad, 1).
		Render(head + "\n" + label)
}

func (tr *TextRenderer) connector(width, zoom int) string {
	stem := zoom / 100
	if stem < 1 {
		stem = 1
	}
	lines := make([]string, 0, 2*stem+1)
	for i := 0; i < stem; i++ {
		lines = append(lines, "│")
	}
	lines = append(lines, "▼")
	for i := 0; i < stem; i++ {
		lines = append(lines, "│")
	}
	return tr.r.NewStyle().
		Foreground(lipgloss.Color("#9ca3af")).
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

func (tr *TextRenderer) empty(zoom int) string {
	return tr.r.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#6b7280")).
		Width(scaled(baseBoxWidth+16, zoom)).
		Align(lipgloss.Center).
		Padding(1, 2).
		Render(EmptyTitle + "\n\n" + EmptyDetail)
}

// Summary draws the four way count breakdown.
func (tr *TextRenderer) Summary(p *Page) string {
	counts := p.Elements.Counts()
	zoom := p.state().Zoom

	cells := make([]string, 0, len(bpmn.Kinds))
	for _, kind := range bpmn.Kinds {
		ks := StyleOf(kind)
		n := tr.r.NewStyle().Bold(true).Foreground(lipgloss.Color(ks.Color)).Render(fmt.Sprint(counts.Of(kind)))
		cells = append(cells, tr.r.NewStyle().
			Width(scaled(baseCellWidth, zoom)).
			Align(lipgloss.Center).
			Render(n+"\n"+ks.Title))
	}

	title := tr.r.NewStyle().Bold(true).Render(SummaryTitle)
	return tr.r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#d1d5db")).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, cells...)))
}

// Source returns the document text under a heading. The text itself is
// not altered.
func (tr *TextRenderer) Source(p *Page) string {
	title := tr.r.NewStyle().Bold(true).Render(SourceTitle)
	return title + "\n\n" + p.Source
}

// Info draws the information panel.
func (tr *TextRenderer) Info(p *Page) string {
	info := p.Info()
	key := tr.r.NewStyle().Faint(true).Width(16)
	rows := []string{
		tr.r.NewStyle().Bold(true).Render(InfoTitle),
		key.Render("XML Size:") + fmt.Sprintf("%d characters", info.Size),
		key.Render("Elements Found:") + fmt.Sprint(info.Elements),
		key.Render("View Mode:") + info.Mode,
	}
	return strings.Join(rows, "\n")
}

func scaled(base, zoom int) int {
	return base * zoom / view.DefaultZoom
}

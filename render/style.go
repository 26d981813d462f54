package render

import (
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/view"
)

// KindStyle is how one element kind is drawn.
type KindStyle struct {
	Glyph string
	// Color is the accent (border and text) color.
	Color string
	// Fill is the light background used by the HTML page.
	Fill string
	// Title is the heading used in the summary breakdown.
	Title string
}

var kindStyles = map[bpmn.Kind]KindStyle{
	bpmn.StartEvent: {Glyph: "⚪", Color: "#166534", Fill: "#dcfce7", Title: "Start Events"},
	bpmn.Task:       {Glyph: "📋", Color: "#1e40af", Fill: "#dbeafe", Title: "Tasks"},
	bpmn.Gateway:    {Glyph: "◆", Color: "#854d0e", Fill: "#fef9c3", Title: "Gateways"},
	bpmn.EndEvent:   {Glyph: "🔴", Color: "#991b1b", Fill: "#fee2e2", Title: "End Events"},
}

var unknownStyle = KindStyle{Glyph: "⚫", Color: "#1f2937", Fill: "#f3f4f6", Title: "Other"}

func StyleOf(kind bpmn.Kind) KindStyle {
	if s, ok := kindStyles[kind]; ok {
		return s
	}
	return unknownStyle
}

const (
	DiagramTitle    = "Process Flow Diagram"
	DiagramSubtitle = "Simplified visual representation of BPMN elements"
	EmptyTitle      = "No BPMN Elements Found"
	EmptyDetail     = "The BPMN XML doesn't contain recognizable process elements."
	SourceTitle     = "BPMN XML Source"
	SummaryTitle    = "Process Summary"
	InfoTitle       = "BPMN Information"
)

// Page is everything a renderer needs to draw one viewer.
type Page struct {
	Source   string
	Elements bpmn.Sequence
	Metadata *bpmn.Metadata
	State    *view.State
	// Class is an optional styling scope added to the HTML wrapper.
	Class string
	// DownloadURL, when set, backs the export link of the HTML source view.
	DownloadURL string
}

func (p *Page) state() *view.State {
	if p.State == nil {
		return view.NewState()
	}
	return p.State
}

// Info is the information panel.
type Info struct {
	Size     int
	Elements int
	Mode     string
}

func (p *Page) Info() Info {
	return Info{
		Size:     len([]rune(p.Source)),
		Elements: p.Elements.Len(),
		Mode:     p.state().Mode.Title(),
	}
}

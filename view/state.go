package view

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Mode selects what a viewer shows.
type Mode int

const (
	// Visual shows the extracted elements as a vertical diagram.
	Visual Mode = iota
	// Source shows the document text verbatim.
	Source
)

func (m Mode) String() string {
	switch m {
	case Visual:
		return "visual"
	case Source:
		return "source"
	default:
		return "unknown"
	}
}

// Title is the label used by the information panel.
func (m Mode) Title() string {
	switch m {
	case Visual:
		return "Visual Diagram"
	case Source:
		return "XML Source"
	default:
		return "Unknown"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMode accepts "visual", "source" and "xml" (case insensitive).
func ParseMode(text string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "visual", "":
		return Visual, nil
	case "source", "xml":
		return Source, nil
	}
	return Visual, fmt.Errorf("unknown view mode %q", text)
}

const (
	MinZoom     = 50
	MaxZoom     = 200
	ZoomStep    = 25
	DefaultZoom = 100
)

// State is the presentation state of one viewer instance. It is not safe
// for concurrent use; owners that share it must serialize access.
type State struct {
	Mode Mode `json:"mode"`
	Zoom int  `json:"zoom"`
}

func NewState() *State {
	return &State{Mode: Visual, Zoom: DefaultZoom}
}

// ZoomIn raises the zoom by one step, stopping at MaxZoom.
func (s *State) ZoomIn() int {
	s.Zoom = ClampZoom(s.Zoom + ZoomStep)
	return s.Zoom
}

// ZoomOut lowers the zoom by one step, stopping at MinZoom.
func (s *State) ZoomOut() int {
	s.Zoom = ClampZoom(s.Zoom - ZoomStep)
	return s.Zoom
}

func (s *State) ResetZoom() int {
	s.Zoom = DefaultZoom
	return s.Zoom
}

// SetZoom sets the zoom to the nearest step inside [MinZoom, MaxZoom].
func (s *State) SetZoom(zoom int) int {
	s.Zoom = ClampZoom(SnapZoom(zoom))
	return s.Zoom
}

func (s *State) SetMode(mode Mode) {
	s.Mode = mode
}

func (s *State) ToggleMode() Mode {
	if s.Mode == Visual {
		s.Mode = Source
	} else {
		s.Mode = Visual
	}
	return s.Mode
}

// Scale returns the zoom as a factor, 125 -> 1.25.
func (s *State) Scale() decimal.Decimal {
	return decimal.NewFromInt(int64(s.Zoom)).Div(decimal.NewFromInt(100))
}

// Action names accepted by Apply.
const (
	ActionZoomIn    = "zoom-in"
	ActionZoomOut   = "zoom-out"
	ActionZoomReset = "zoom-reset"
	ActionVisual    = "visual"
	ActionSource    = "source"
	ActionToggle    = "toggle"
)

// Apply performs a named action.
func (s *State) Apply(action string) error {
	switch action {
	case ActionZoomIn:
		s.ZoomIn()
	case ActionZoomOut:
		s.ZoomOut()
	case ActionZoomReset:
		s.ResetZoom()
	case ActionVisual:
		s.SetMode(Visual)
	case ActionSource:
		s.SetMode(Source)
	case ActionToggle:
		s.ToggleMode()
	default:
		return fmt.Errorf("unknown view action %q", action)
	}
	return nil
}

func ClampZoom(zoom int) int {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}

// SnapZoom rounds zoom to the nearest multiple of ZoomStep.
func SnapZoom(zoom int) int {
	return int(decimal.NewFromInt(int64(zoom)).
		Div(decimal.NewFromInt(ZoomStep)).
		Round(0).
		Mul(decimal.NewFromInt(ZoomStep)).
		IntPart())
}

// ValidZoom reports whether zoom is a step inside [MinZoom, MaxZoom].
func ValidZoom(zoom int) bool {
	return zoom >= MinZoom && zoom <= MaxZoom && zoom%ZoomStep == 0
}

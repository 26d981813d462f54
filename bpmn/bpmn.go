package bpmn

import "fmt"

// Kind is the category of an element recognised in a BPMN document.
type Kind int32

const (
	StartEvent Kind = iota + 1
	Task
	Gateway
	EndEvent
)

var kindNames = map[Kind]string{
	StartEvent: "startEvent",
	Task:       "task",
	Gateway:    "gateway",
	EndEvent:   "endEvent",
}

// Kinds lists every Kind in display order.
var Kinds = []Kind{StartEvent, Task, Gateway, EndEvent}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("invalid kind %d", int32(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind returns the Kind named by text.
func ParseKind(text string) (Kind, error) {
	for kind, name := range kindNames {
		if name == text {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown element kind %q", text)
}

// Element is a single process element shown by the viewer.
type Element struct {
	Id    string `json:"id"`
	Kind  Kind   `json:"type"`
	Label string `json:"name"`
}

func (e *Element) GetID() string { return e.Id }

func (e *Element) GetKind() Kind { return e.Kind }

func (e *Element) GetLabel() string { return e.Label }

// Sequence is the ordered output of one extraction. Elements are grouped by
// kind (start events, tasks, gateways, end events) and keep document order
// inside a group.
type Sequence []*Element

// Len returns the number of elements.
func (s Sequence) Len() int { return len(s) }

// IsEmpty reports whether no element was recognised.
func (s Sequence) IsEmpty() bool { return len(s) == 0 }

// Filter returns the elements of the given kind, in sequence order.
func (s Sequence) Filter(kind Kind) Sequence {
	out := make(Sequence, 0)
	for _, elem := range s {
		if elem.Kind == kind {
			out = append(out, elem)
		}
	}
	return out
}

// Counts returns per kind totals of the sequence.
func (s Sequence) Counts() Counts {
	var c Counts
	for _, elem := range s {
		c.add(elem.Kind)
	}
	return c
}

// Counts is the four way breakdown shown beneath the diagram.
type Counts struct {
	StartEvents int `json:"startEvents"`
	Tasks       int `json:"tasks"`
	Gateways    int `json:"gateways"`
	EndEvents   int `json:"endEvents"`
}

func (c *Counts) add(kind Kind) {
	switch kind {
	case StartEvent:
		c.StartEvents += 1
	case Task:
		c.Tasks += 1
	case Gateway:
		c.Gateways += 1
	case EndEvent:
		c.EndEvents += 1
	}
}

// Of returns the count for kind.
func (c Counts) Of(kind Kind) int {
	switch kind {
	case StartEvent:
		return c.StartEvents
	case Task:
		return c.Tasks
	case Gateway:
		return c.Gateways
	case EndEvent:
		return c.EndEvents
	default:
		return 0
	}
}

func (c Counts) Total() int {
	return c.StartEvents + c.Tasks + c.Gateways + c.EndEvents
}

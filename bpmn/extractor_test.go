package bpmn

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindsOf(s Sequence) []Kind {
	kinds := make([]Kind, 0, len(s))
	for _, elem := range s {
		kinds = append(kinds, elem.Kind)
	}
	return kinds
}

func labelsOf(s Sequence) []string {
	labels := make([]string, 0, len(s))
	for _, elem := range s {
		labels = append(labels, elem.Label)
	}
	return labels
}

func TestExtractNoElements(t *testing.T) {
	tests := []string{
		"",
		"plain text, not xml at all",
		`<definitions><process id="p"/></definitions>`,
		`<bpmn:startEvent id="s">`,
		`<bpmn:sequenceFlow id="f" name="yes" sourceRef="a" targetRef="b" />`,
	}

	for i, source := range tests {
		s := Extract(source)
		assert.Truef(t, s.IsEmpty(), "#%d: got %v", i, labelsOf(s))
	}
}

func TestExtractSingleStartEvent(t *testing.T) {
	s := Extract(`<bpmn:startEvent id="StartEvent_1" name="Begin" />`)

	require.Len(t, s, 1)
	assert.Equal(t, StartEvent, s[0].Kind)
	assert.Equal(t, "Begin", s[0].Label)
	assert.Equal(t, "start_0", s[0].Id)
}

func TestExtractLabelFallback(t *testing.T) {
	tests := []struct {
		source string
		kind   Kind
		label  string
	}{
		{`<bpmn:startEvent id="s" camunda:name="x" />`, StartEvent, "Start"},
		{`<bpmn:task id="t" zeebe:name="x">`, Task, "Task"},
		{`<bpmn:parallelGateway id="g" my:name="x">`, Gateway, "Gateway"},
		{`<bpmn:endEvent id="e" ext:name="x"/>`, EndEvent, "End"},
		{`<bpmn:startEvent id="s" name="" />`, StartEvent, ""},
	}

	for i, tt := range tests {
		s := Extract(tt.source)
		if !assert.Lenf(t, s, 1, "#%d", i) {
			continue
		}
		assert.Equalf(t, tt.kind, s[0].Kind, "#%d", i)
		assert.Equalf(t, tt.label, s[0].Label, "#%d", i)
	}
}

func TestExtractUserTasksOnly(t *testing.T) {
	source := `
<bpmn:userTask id="a" name="Review">
</bpmn:userTask>
<bpmn:userTask id="b" name="Approve">
</bpmn:userTask>`

	s := Extract(source)
	assert.Equal(t, []Kind{Task, Task}, kindsOf(s))
	assert.Equal(t, []string{"Review", "Approve"}, labelsOf(s))
}

func TestExtractTaskChainFirstMatchWins(t *testing.T) {
	source := `
<bpmn:serviceTask id="s1" name="Charge" />
<bpmn:userTask id="u1" name="Review" />
<bpmn:serviceTask id="s2" name="Notify" />`

	s := Extract(source)
	// serviceTask elements are dropped once userTask matched
	assert.Equal(t, []string{"Review"}, labelsOf(s))

	source = `
<bpmn:userTask id="u1" name="Review" />
<bpmn:task id="t1" name="Plain" />`

	s = Extract(source)
	assert.Equal(t, []string{"Plain"}, labelsOf(s))

	s = Extract(`<bpmn:serviceTask id="s1" name="Charge" />`)
	assert.Equal(t, []string{"Charge"}, labelsOf(s))
}

func TestExtractGatewayChain(t *testing.T) {
	source := `
<bpmn:parallelGateway id="p" name="Fork" />
<bpmn:exclusiveGateway id="x" name="Decide" />`

	s := Extract(source)
	assert.Equal(t, []string{"Decide"}, labelsOf(s))

	s = Extract(`<bpmn:parallelGateway id="p" name="Fork" />`)
	assert.Equal(t, []Kind{Gateway}, kindsOf(s))
	assert.Equal(t, []string{"Fork"}, labelsOf(s))
}

func TestExtractGroupsByCategory(t *testing.T) {
	source := `
<bpmn:endEvent id="e" name="Done" />
<bpmn:task id="t1" name="First" />
<bpmn:exclusiveGateway id="g" name="Ok?" />
<bpmn:startEvent id="s" name="Go" />
<bpmn:task id="t2" name="Second" />`

	want := Sequence{
		{Id: "start_0", Kind: StartEvent, Label: "Go"},
		{Id: "task_1", Kind: Task, Label: "First"},
		{Id: "task_2", Kind: Task, Label: "Second"},
		{Id: "gateway_3", Kind: Gateway, Label: "Ok?"},
		{Id: "end_4", Kind: EndEvent, Label: "Done"},
	}

	got := Extract(source)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractIdsUnique(t *testing.T) {
	xmlText, err := os.ReadFile("../testdata/order-process.bpmn")
	require.NoError(t, err)

	s := Extract(string(xmlText))
	seen := map[string]struct{}{}
	for _, elem := range s {
		_, dup := seen[elem.Id]
		assert.Falsef(t, dup, "duplicate id %s", elem.Id)
		seen[elem.Id] = struct{}{}
	}
}

func TestExtractFile(t *testing.T) {
	xmlText, err := os.ReadFile("../testdata/order-process.bpmn")
	require.NoError(t, err)

	want := Sequence{
		{Id: "start_0", Kind: StartEvent, Label: "Order received"},
		{Id: "task_1", Kind: Task, Label: "Check order"},
		{Id: "task_2", Kind: Task, Label: "Ship order"},
		{Id: "gateway_3", Kind: Gateway, Label: "Approved?"},
		{Id: "end_4", Kind: EndEvent, Label: "Order shipped"},
		{Id: "end_5", Kind: EndEvent, Label: "Order rejected"},
	}

	got := Extract(string(xmlText))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractorNamespace(t *testing.T) {
	source := `
<bpmn2:startEvent id="s" name="Go" />
<bpmn2:serviceTask id="t" name="Call" />
<bpmn2:endEvent id="e" name="Stop" />`

	assert.True(t, Extract(source).IsEmpty())

	x := NewExtractor(WithNamespace("bpmn2"))
	assert.Equal(t, []string{"Go", "Call", "Stop"}, labelsOf(x.Extract(source)))

	x = NewExtractor(WithNamespace(""))
	s := x.Extract(`<task id="t" name="Unprefixed"/>`)
	assert.Equal(t, []string{"Unprefixed"}, labelsOf(s))
}

func TestExtractorMatchTimeout(t *testing.T) {
	x := NewExtractor(WithMatchTimeout(time.Minute))
	assert.Equal(t, time.Minute, x.MatchTimeout)
	assert.Equal(t, DefaultNamespace, x.Namespace)

	s := x.Extract(`<bpmn:task id="t" name="Work"/>`)
	assert.Equal(t, 1, s.Len())
}

func TestExtractorWith(t *testing.T) {
	base := NewExtractor(WithMatchTimeout(3 * time.Second))
	x := base.With(WithNamespace("semantic"))

	assert.Equal(t, "semantic", x.Namespace)
	assert.Equal(t, 3*time.Second, x.MatchTimeout)
	assert.Equal(t, DefaultNamespace, base.Namespace)

	s := x.Extract(`<semantic:task id="t" name="Work"/><bpmn:task id="u" name="Other"/>`)
	assert.Equal(t, []string{"Work"}, labelsOf(s))
}

func TestExtractDoesNotShareState(t *testing.T) {
	source := `<bpmn:task id="t" name="Work"/>`
	a := Extract(source)
	a[0].Label = "changed"

	b := Extract(source)
	assert.Equal(t, "Work", b[0].Label)
}

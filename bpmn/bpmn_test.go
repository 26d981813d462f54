package bpmn

import (
	"os"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceCounts(t *testing.T) {
	s := Sequence{
		{Id: "start_0", Kind: StartEvent},
		{Id: "task_1", Kind: Task},
		{Id: "task_2", Kind: Task},
		{Id: "end_3", Kind: EndEvent},
	}

	c := s.Counts()
	assert.Equal(t, Counts{StartEvents: 1, Tasks: 2, EndEvents: 1}, c)
	assert.Equal(t, 4, c.Total())
	assert.Equal(t, 2, c.Of(Task))
	assert.Equal(t, 0, c.Of(Gateway))
	assert.Len(t, s.Filter(Task), 2)
	assert.Empty(t, s.Filter(Gateway))
}

func TestKindText(t *testing.T) {
	for _, kind := range Kinds {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, kind, got)
	}

	_, err := Kind(42).MarshalText()
	assert.Error(t, err)
	_, err = ParseKind("callActivity")
	assert.Error(t, err)
}

func TestElementJSON(t *testing.T) {
	data, err := json.Marshal(&Element{Id: "task_1", Kind: Task, Label: "Work"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"task_1","type":"task","name":"Work"}`, string(data))
}

func TestReadMetadata(t *testing.T) {
	xmlText, err := os.ReadFile("../testdata/order-process.bpmn")
	require.NoError(t, err)

	md := ReadMetadata(string(xmlText))
	assert.True(t, md.WellFormed)
	assert.Equal(t, "Definitions_order", md.Id)
	assert.Equal(t, "bpmn", md.Prefix)
	assert.Equal(t, "http://bpmn.io/schema/bpmn", md.TargetNamespace)
	assert.Equal(t, "17.0.2", md.ExporterVersion)
	assert.Equal(t, []ProcessInfo{{Id: "Process_order", Name: "Order handling", Executable: true}}, md.Processes)
}

func TestReadMetadataPrefix(t *testing.T) {
	source := `<?xml version="1.0"?>
<bpmn2:definitions xmlns:bpmn2="http://www.omg.org/spec/BPMN/20100524/MODEL" id="d">
  <bpmn2:process id="p1" />
</bpmn2:definitions>`

	md := ReadMetadata(source)
	assert.True(t, md.WellFormed)
	assert.Equal(t, "bpmn2", md.Prefix)
	assert.Len(t, md.Processes, 1)
	assert.False(t, md.Processes[0].Executable)

	source = `<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL"><process id="p"/></definitions>`
	md = ReadMetadata(source)
	assert.True(t, md.WellFormed)
	assert.Equal(t, "", md.Prefix)
}

func TestReadMetadataMalformed(t *testing.T) {
	for _, source := range []string{"", "<bpmn:definitions", "<html><body/></html>"} {
		md := ReadMetadata(source)
		assert.False(t, md.WellFormed)
		assert.Equal(t, DefaultNamespace, md.Prefix)
		assert.Empty(t, md.Processes)
	}
}

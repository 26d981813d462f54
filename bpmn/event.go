package bpmn

var startEventCategory = &category{
	kind:     StartEvent,
	prefix:   "start",
	fallback: "Start",
	tags:     []string{"startEvent"},
}

var endEventCategory = &category{
	kind:     EndEvent,
	prefix:   "end",
	fallback: "End",
	tags:     []string{"endEvent"},
}

package bpmn

// taskCategory tries the generic task tag first, then userTask, then
// serviceTask. Only the first tag with any match contributes, so a document
// mixing userTask and serviceTask loses its service tasks. The behaviour is
// kept as is; unioning the subtypes would change what the viewer shows.
var taskCategory = &category{
	kind:     Task,
	prefix:   "task",
	fallback: "Task",
	tags:     []string{"task", "userTask", "serviceTask"},
}

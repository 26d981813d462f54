package bpmn

// gatewayCategory follows the same first match wins chain as taskCategory:
// parallel gateways show up only when no exclusive gateway matched.
var gatewayCategory = &category{
	kind:     Gateway,
	prefix:   "gateway",
	fallback: "Gateway",
	tags:     []string{"exclusiveGateway", "parallelGateway"},
}

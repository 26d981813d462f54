package bpmn

import (
	"github.com/beevik/etree"
)

func getAttr(attrs []etree.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.FullKey() == name {
			return attr.Value, true
		}
	}
	return "", false
}

// modelPrefix returns the prefix the element binds to the BPMN model
// namespace. The second result is false when no binding is declared.
func modelPrefix(elem *etree.Element) (string, bool) {
	for _, attr := range elem.Attr {
		if attr.Value != ModelNamespaceURI {
			continue
		}
		if attr.Space == "xmlns" {
			return attr.Key, true
		}
		if attr.Space == "" && attr.Key == "xmlns" {
			return "", true
		}
	}
	return "", false
}

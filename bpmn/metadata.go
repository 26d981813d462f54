package bpmn

import (
	"strings"

	"github.com/beevik/etree"
)

const ModelNamespaceURI = "http://www.omg.org/spec/BPMN/20100524/MODEL"

type ProcessInfo struct {
	Id         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Executable bool   `json:"executable"`
}

// Metadata is header information read from the <definitions> root. It is
// informational only and never influences extraction.
type Metadata struct {
	WellFormed      bool          `json:"wellFormed"`
	Id              string        `json:"id,omitempty"`
	TargetNamespace string        `json:"targetNamespace,omitempty"`
	Exporter        string        `json:"exporter,omitempty"`
	ExporterVersion string        `json:"exporterVersion,omitempty"`
	Prefix          string        `json:"prefix"`
	Processes       []ProcessInfo `json:"processes,omitempty"`
}

// ReadMetadata parses source with etree. Text that is not well-formed XML, or
// whose root is not <definitions>, gives a Metadata with WellFormed false and
// Prefix set to DefaultNamespace.
func ReadMetadata(source string) *Metadata {
	md := &Metadata{Prefix: DefaultNamespace}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(source); err != nil {
		return md
	}
	root := doc.Root()
	if root == nil || root.Tag != "definitions" {
		return md
	}

	md.WellFormed = true
	if prefix, ok := modelPrefix(root); ok {
		md.Prefix = prefix
	} else {
		md.Prefix = root.Space
	}
	md.Id, _ = getAttr(root.Attr, "id")
	md.TargetNamespace, _ = getAttr(root.Attr, "targetNamespace")
	md.Exporter, _ = getAttr(root.Attr, "exporter")
	md.ExporterVersion, _ = getAttr(root.Attr, "exporterVersion")

	md.Processes = make([]ProcessInfo, 0)
	for _, child := range root.ChildElements() {
		if child.Tag != "process" || child.Space != root.Space {
			continue
		}
		info := ProcessInfo{}
		info.Id, _ = getAttr(child.Attr, "id")
		info.Name, _ = getAttr(child.Attr, "name")
		if v, _ := getAttr(child.Attr, "isExecutable"); strings.EqualFold(v, "true") {
			info.Executable = true
		}
		md.Processes = append(md.Processes, info)
	}

	return md
}

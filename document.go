// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package flowview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/render"
	"github.com/vine-io/flowview/view"
	"github.com/vine-io/pkg/xname"
	log "github.com/vine-io/vine/lib/logger"
)

// DocumentOptions controls how a Document is built from its source.
type DocumentOptions struct {
	Name      string
	Extractor *bpmn.Extractor
	// AutoNamespace scans with the prefix the document itself binds to the
	// BPMN model namespace instead of the extractor's configured one.
	AutoNamespace bool
}

type DocumentOption func(*DocumentOptions)

func WithName(name string) DocumentOption {
	return func(o *DocumentOptions) {
		o.Name = name
	}
}

func WithExtractor(x *bpmn.Extractor) DocumentOption {
	return func(o *DocumentOptions) {
		o.Extractor = x
	}
}

func WithAutoNamespace(auto bool) DocumentOption {
	return func(o *DocumentOptions) {
		o.AutoNamespace = auto
	}
}

func NewDocumentOptions(opts ...DocumentOption) DocumentOptions {
	var options DocumentOptions
	for _, opt := range opts {
		opt(&options)
	}

	if options.Extractor == nil {
		options.Extractor = bpmn.NewExtractor()
	}

	return options
}

// Document is a BPMN source together with what the viewer derives from it.
type Document struct {
	Name     string
	Source   string
	Elements bpmn.Sequence
	Metadata *bpmn.Metadata
}

// NewDocument extracts elements and metadata from source. It never fails.
func NewDocument(source string, opts ...DocumentOption) *Document {
	options := NewDocumentOptions(opts...)

	md := bpmn.ReadMetadata(source)
	x := options.Extractor
	if options.AutoNamespace && md.WellFormed && md.Prefix != x.Namespace {
		log.Debugf("document %s binds BPMN to prefix %q", options.Name, md.Prefix)
		x = x.With(bpmn.WithNamespace(md.Prefix))
	}

	return &Document{
		Name:     options.Name,
		Source:   source,
		Elements: x.Extract(source),
		Metadata: md,
	}
}

// LoadFile reads a document from path. A leading ~ is expanded.
func LoadFile(path string, opts ...DocumentOption) (*Document, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand %s: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	opts = append([]DocumentOption{WithName(filepath.Base(expanded))}, opts...)
	return NewDocument(string(data), opts...), nil
}

func (d *Document) Counts() bpmn.Counts {
	return d.Elements.Counts()
}

// Page returns the render input for the document in the given view state.
func (d *Document) Page(st *view.State) *render.Page {
	if st == nil {
		st = view.NewState()
	}
	return &render.Page{
		Source:   d.Source,
		Elements: d.Elements,
		Metadata: d.Metadata,
		State:    st,
	}
}

// Export writes the source verbatim into dir and returns the file path. An
// empty name generates one.
func (d *Document) Export(dir, name string) (string, error) {
	if name == "" {
		name = "Diagram_" + xname.Gen6()
	}
	if filepath.Ext(name) == "" {
		name += ".bpmn"
	}

	dir, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", dir, err)
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	target := filepath.Join(dir, name)
	if err = os.WriteFile(target, []byte(d.Source), 0o644); err != nil {
		return "", fmt.Errorf("export document: %w", err)
	}
	log.Infof("exported %s (%d bytes) to %s", d.displayName(), len(d.Source), target)

	return target, nil
}

func (d *Document) displayName() string {
	if d.Name == "" {
		return "document"
	}
	return d.Name
}

// View is the JSON form of a Document.
type View struct {
	Name     string         `json:"name,omitempty"`
	Size     int            `json:"size"`
	Elements bpmn.Sequence  `json:"elements"`
	Counts   bpmn.Counts    `json:"counts"`
	Metadata *bpmn.Metadata `json:"metadata,omitempty"`
}

func (d *Document) View() *View {
	return &View{
		Name:     d.Name,
		Size:     len([]rune(d.Source)),
		Elements: d.Elements,
		Counts:   d.Counts(),
		Metadata: d.Metadata,
	}
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.View())
}

// Object returns the JSON form decoded into plain maps and slices.
func (d *Document) Object() (map[string]any, error) {
	data, err := json.Marshal(d.View())
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	if err = json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsBPMNFile reports whether path looks like a BPMN document by extension.
func IsBPMNFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bpmn", ".bpmn2", ".xml":
		return true
	}
	return false
}

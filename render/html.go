package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/view"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"style": StyleOf,
	"last": func(i int, s bpmn.Sequence) bool {
		return i == len(s)-1
	},
}).Parse(pageHTML))

type htmlData struct {
	*Page
	Visual  bool
	Scale   string
	Zoom    int
	Counts  []countCell
	InfoRow Info
	Titles  map[string]string
}

type countCell struct {
	Count int
	Title string
	Color string
}

// HTML writes a standalone page for p.
func HTML(w io.Writer, p *Page) error {
	st := p.state()
	counts := p.Elements.Counts()
	cells := make([]countCell, 0, len(bpmn.Kinds))
	for _, kind := range bpmn.Kinds {
		ks := StyleOf(kind)
		cells = append(cells, countCell{Count: counts.Of(kind), Title: ks.Title, Color: ks.Color})
	}

	data := &htmlData{
		Page:    p,
		Visual:  st.Mode == view.Visual,
		Scale:   st.Scale().String(),
		Zoom:    st.Zoom,
		Counts:  cells,
		InfoRow: p.Info(),
		Titles: map[string]string{
			"diagram":  DiagramTitle,
			"subtitle": DiagramSubtitle,
			"empty":    EmptyTitle,
			"detail":   EmptyDetail,
			"source":   SourceTitle,
			"summary":  SummaryTitle,
			"info":     InfoTitle,
		},
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// HTMLString is HTML into a string.
func HTMLString(p *Page) (string, error) {
	buf := bytes.NewBuffer([]byte{})
	if err := HTML(buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<title>{{ index .Titles "diagram" }}</title>
<style>
body { font-family: sans-serif; margin: 1rem; }
.fv-toolbar { display: flex; gap: .5rem; align-items: center; padding: .75rem; background: #f3f4f6; border-radius: .5rem; }
.fv-canvas { min-height: 500px; border: 1px solid #e5e7eb; border-radius: .5rem; overflow: hidden; margin-top: 1rem; }
.fv-stack { padding: 2rem; transform-origin: top left; display: flex; flex-direction: column; align-items: center; }
.fv-box { min-width: 200px; padding: .75rem 1rem; border: 2px solid; border-radius: .5rem; text-align: center; }
.fv-badge { font-size: .75rem; border: 1px solid currentColor; border-radius: .25rem; padding: 0 .25rem; }
.fv-arrow { color: #9ca3af; padding: .5rem 0; text-align: center; }
.fv-summary { display: grid; grid-template-columns: repeat(4, 1fr); gap: .75rem; margin-top: 2rem; padding: 1rem; background: #f9fafb; border-radius: .5rem; font-size: .75rem; text-align: center; }
.fv-empty { padding: 4rem 0; text-align: center; color: #6b7280; }
.fv-source { height: 500px; overflow: auto; padding: 1rem; }
.fv-source pre { font-size: .75rem; background: #f9fafb; padding: 1rem; border: 1px solid #e5e7eb; }
.fv-info { margin-top: 1rem; font-size: .75rem; }
.fv-info div { display: flex; justify-content: space-between; max-width: 24rem; }
</style>
</head>
<body>
<div class="fv-viewer {{ .Class }}" data-mode="{{ if .Visual }}visual{{ else }}source{{ end }}" data-zoom="{{ .Zoom }}">
<div class="fv-toolbar">
<span>{{ if .Visual }}<strong>Visual</strong> | XML Source{{ else }}Visual | <strong>XML Source</strong>{{ end }}</span>
{{- if .Visual }}
<span class="fv-zoom">{{ .Zoom }}%</span>
{{- end }}
</div>
{{- if .Visual }}
<div class="fv-canvas">
<div class="fv-stack" style="transform: scale({{ .Scale }})">
{{- if .Elements }}
<h3>{{ index .Titles "diagram" }}</h3>
<p>{{ index .Titles "subtitle" }}</p>
{{- range $i, $e := .Elements }}
{{- $s := style $e.Kind }}
<div class="fv-box fv-{{ $e.Kind }}" id="{{ $e.Id }}" style="color: {{ $s.Color }}; border-color: {{ $s.Color }}; background: {{ $s.Fill }}">
<div><span>{{ $s.Glyph }}</span> <span class="fv-badge">{{ $e.Kind }}</span></div>
<div><strong>{{ $e.Label }}</strong></div>
</div>
{{- if not (last $i $.Elements) }}
<div class="fv-arrow">│<br />▼<br />│</div>
{{- end }}
{{- end }}
<div class="fv-summary">
<h4 style="grid-column: 1 / -1">{{ index .Titles "summary" }}</h4>
{{- range .Counts }}
<div><div style="font-weight: bold; color: {{ .Color }}">{{ .Count }}</div><div>{{ .Title }}</div></div>
{{- end }}
</div>
{{- else }}
<div class="fv-empty">
<p><strong>{{ index .Titles "empty" }}</strong></p>
<p>{{ index .Titles "detail" }}</p>
</div>
{{- end }}
</div>
</div>
{{- else }}
<div class="fv-source">
<h4>{{ index .Titles "source" }}</h4>
{{- if .DownloadURL }}
<a class="fv-download" href="{{ .DownloadURL }}" download>Download</a>
{{- end }}
<pre>{{ .Source }}</pre>
</div>
{{- end }}
<div class="fv-info">
<h4>{{ index .Titles "info" }}</h4>
<div><span>XML Size:</span><span>{{ .InfoRow.Size }} characters</span></div>
<div><span>Elements Found:</span><span>{{ .InfoRow.Elements }}</span></div>
<div><span>View Mode:</span><span>{{ .InfoRow.Mode }}</span></div>
</div>
</div>
</body>
</html>
`

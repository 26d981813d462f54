package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vine-io/flowview/bpmn"
	"github.com/vine-io/flowview/view"
)

const sample = `<bpmn:definitions xmlns:bpmn="http://www.omg.org/spec/BPMN/20100524/MODEL" id="d1">
<bpmn:process id="p1" name="Onboarding" isExecutable="true">
<bpmn:startEvent id="s" name="Hired" />
<bpmn:userTask id="t1" name="Sign contract" />
<bpmn:userTask id="t2" name="Get laptop" />
<bpmn:endEvent id="e" name="Ready" />
</bpmn:process>
</bpmn:definitions>`

func newPage(source string) *Page {
	return &Page{
		Source:   source,
		Elements: bpmn.Extract(source),
		Metadata: bpmn.ReadMetadata(source),
		State:    view.NewState(),
	}
}

func newText() *TextRenderer {
	return NewTextRenderer(WithOutput(&bytes.Buffer{}), WithColorProfile(termenv.Ascii))
}

func TestTextVisual(t *testing.T) {
	out := newText().Render(newPage(sample))

	for _, want := range []string{DiagramTitle, "Hired", "Sign contract", "Get laptop", "Ready", "[task]", SummaryTitle, "Tasks"} {
		assert.Contains(t, out, want)
	}
	// four boxes, three connectors
	assert.Equal(t, 3, strings.Count(out, "▼"))
	assert.Contains(t, out, "Elements Found: 4")
	assert.Contains(t, out, "View Mode:      Visual Diagram")
}

func TestTextSingleElementHasNoConnector(t *testing.T) {
	out := newText().Visual(newPage(`<bpmn:task id="t" name="Only"/>`))
	assert.Contains(t, out, "Only")
	assert.NotContains(t, out, "▼")
}

func TestTextEmpty(t *testing.T) {
	out := newText().Render(newPage("<notes>nothing here</notes>"))
	assert.Contains(t, out, EmptyTitle)
	assert.NotContains(t, out, SummaryTitle)
	assert.Contains(t, out, "Elements Found: 0")
}

func TestTextSourceIsVerbatim(t *testing.T) {
	p := newPage(sample)
	p.State.SetMode(view.Source)

	out := newText().Render(p)
	assert.Contains(t, out, SourceTitle)
	assert.Contains(t, out, sample)
	assert.NotContains(t, out, DiagramTitle)
	assert.Contains(t, out, "XML Source")
}

func TestTextZoomChangesSize(t *testing.T) {
	tr := newText()
	p := newPage(sample)

	p.State.SetZoom(50)
	small := tr.Visual(p)
	p.State.SetZoom(200)
	large := tr.Visual(p)

	widest := func(s string) int {
		w := 0
		for _, line := range strings.Split(s, "\n") {
			if n := len([]rune(line)); n > w {
				w = n
			}
		}
		return w
	}
	assert.Greater(t, widest(large), widest(small))
	assert.Greater(t, strings.Count(large, "│"), strings.Count(small, "│"))
}

func TestInfo(t *testing.T) {
	p := &Page{Source: "héllo", State: view.NewState()}
	info := p.Info()
	assert.Equal(t, Info{Size: 5, Elements: 0, Mode: "Visual Diagram"}, info)

	p = &Page{}
	assert.Equal(t, "Visual Diagram", p.Info().Mode)
}

func TestHTMLVisual(t *testing.T) {
	p := newPage(sample)
	p.Class = "embedded"
	p.State.ZoomIn()

	out, err := HTMLString(p)
	require.NoError(t, err)

	assert.Contains(t, out, `class="fv-viewer embedded"`)
	assert.Contains(t, out, "transform: scale(1.25)")
	assert.Contains(t, out, `data-zoom="125"`)
	assert.Contains(t, out, `id="task_1"`)
	assert.Contains(t, out, "Sign contract")
	assert.Equal(t, 4, strings.Count(out, `class="fv-box `))
	assert.Equal(t, 3, strings.Count(out, `class="fv-arrow"`))
	assert.Contains(t, out, SummaryTitle)
	assert.NotContains(t, out, "<pre>")
}

func TestHTMLSource(t *testing.T) {
	p := newPage(`<bpmn:task id="t" name="A & B"/>`)
	p.State.SetMode(view.Source)
	p.DownloadURL = "/api/sessions/x/download"

	out, err := HTMLString(p)
	require.NoError(t, err)

	assert.Contains(t, out, `data-mode="source"`)
	assert.Contains(t, out, "&lt;bpmn:task id=&#34;t&#34; name=&#34;A &amp; B&#34;/&gt;")
	assert.Contains(t, out, `href="/api/sessions/x/download"`)
	assert.NotContains(t, out, `class="fv-box`)
}

func TestHTMLEmpty(t *testing.T) {
	out, err := HTMLString(newPage(""))
	require.NoError(t, err)
	assert.Contains(t, out, EmptyTitle)
	assert.Contains(t, out, "0 characters")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(newPage(sample))

	assert.Contains(t, md, "| Elements Found | 4 |")
	assert.Contains(t, md, "| Process | Onboarding (executable: true) |")
	assert.Contains(t, md, "2. 📋 **Sign contract** `task`")
	assert.Contains(t, md, "| Start Events | Tasks | Gateways | End Events |")
	assert.Contains(t, md, "| 1 | 2 | 0 | 1 |")
}

func TestMarkdownEscapesDocumentText(t *testing.T) {
	source := "<bpmn:definitions xmlns:bpmn=\"http://www.omg.org/spec/BPMN/20100524/MODEL\" id=\"d`1|x\">\n" +
		`<bpmn:process id="p" name="a_b [c]" isExecutable="false">` + "\n" +
		`<bpmn:task id="t" name="**bold** | &lt;i&gt;" />` + "\n" +
		`</bpmn:process></bpmn:definitions>`
	md := Markdown(newPage(source))

	assert.Contains(t, md, "| Definitions | ``d`1\\|x`` |")
	assert.Contains(t, md, `| Process | a\_b \[c\] (executable: false) |`)
	assert.Contains(t, md, `1. 📋 **\*\*bold\*\* \| &lt;i&gt;** `+"`task`")

	assert.Equal(t, "`plain`", codeSpan("plain"))
	assert.Equal(t, "`` `tick ``", codeSpan("`tick"))
}

func TestMarkdownEmpty(t *testing.T) {
	md := Markdown(newPage("garbage"))
	assert.Contains(t, md, EmptyTitle)
	assert.Contains(t, md, "| 0 | 0 | 0 | 0 |")
	assert.NotContains(t, md, "| Process |")
}

func TestMarkdownRenderer(t *testing.T) {
	r, err := NewMarkdownRenderer(80)
	require.NoError(t, err)

	out, err := r(Markdown(newPage(sample)))
	require.NoError(t, err)
	assert.Contains(t, out, "Sign contract")
}

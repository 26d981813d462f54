package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/vine-io/flowview/bpmn"
)

// Markdown describes the page as markdown: information panel, process
// metadata when known, the element list and the count breakdown.
func Markdown(p *Page) string {
	info := p.Info()
	b := strings.Builder{}

	b.WriteString("# " + InfoTitle + "\n\n")
	b.WriteString("| | |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| XML Size | %d characters |\n", info.Size))
	b.WriteString(fmt.Sprintf("| Elements Found | %d |\n", info.Elements))
	b.WriteString(fmt.Sprintf("| View Mode | %s |\n", info.Mode))

	if md := p.Metadata; md != nil && md.WellFormed {
		if md.Id != "" {
			b.WriteString(fmt.Sprintf("| Definitions | %s |\n", codeSpan(md.Id)))
		}
		for _, proc := range md.Processes {
			name := proc.Name
			if name == "" {
				name = proc.Id
			}
			b.WriteString(fmt.Sprintf("| Process | %s (executable: %t) |\n", escapeText(name), proc.Executable))
		}
	}

	b.WriteString("\n## " + DiagramTitle + "\n\n")
	if p.Elements.IsEmpty() {
		b.WriteString("_" + EmptyTitle + "._ " + EmptyDetail + "\n")
	} else {
		for i, elem := range p.Elements {
			ks := StyleOf(elem.Kind)
			b.WriteString(fmt.Sprintf("%d. %s **%s** `%s`\n", i+1, ks.Glyph, escapeText(elem.Label), elem.Kind))
		}
	}

	counts := p.Elements.Counts()
	b.WriteString("\n## " + SummaryTitle + "\n\n")
	titles := make([]string, 0, len(bpmn.Kinds))
	values := make([]string, 0, len(bpmn.Kinds))
	for _, kind := range bpmn.Kinds {
		titles = append(titles, StyleOf(kind).Title)
		values = append(values, fmt.Sprint(counts.Of(kind)))
	}
	b.WriteString("| " + strings.Join(titles, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(titles)) + "\n")
	b.WriteString("| " + strings.Join(values, " | ") + " |\n")

	return b.String()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`,
	"#", `\#`, "~", `\~`, "!", `\!`, "|", `\|`,
	"\r", "", "\n", " ",
)

// escapeText makes s literal inline text, safe inside a table cell.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// codeSpan wraps s in a fence longer than any backtick run it holds. Pipes
// stay escaped since tables split cells before parsing code spans.
func codeSpan(s string) string {
	s = strings.NewReplacer("\r", "", "\n", " ").Replace(s)
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + strings.ReplaceAll(s, "|", `\|`) + fence
}

// NewMarkdownRenderer returns a function rendering markdown for the
// terminal with glamour.
func NewMarkdownRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

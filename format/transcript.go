package format

import (
	"fmt"
	"strings"
	"time"

	"planilhas/types"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const timeLayout = "15:04:05"

// ArtifactLinks lists the offered links of a with their labels.
func ArtifactLinks(a types.Artifacts) [][2]string {
	var links [][2]string
	if a.ResultURL != "" {
		links = append(links, [2]string{"Result", a.ResultURL})
	}
	if a.UnmatchedURL != "" {
		links = append(links, [2]string{"Rows without a match", a.UnmatchedURL})
	}
	if a.LogURL != "" {
		links = append(links, [2]string{"Processing log", a.LogURL})
	}
	return links
}

// RenderMarkdown renders the transcript as markdown. baseURL prefixes the
// relative artifact links.
func RenderMarkdown(msgs []types.ChatMessage, baseURL string) string {
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		switch m := msg.(type) {
		case types.UserTurn:
			fmt.Fprintf(&b, "**You** _%s_\n\n%s\n", stamp(m.At), escapeMarkdown(m.Text))
		case types.AssistantTurn:
			fmt.Fprintf(&b, "**Assistant** _%s_\n\n%s\n", stamp(m.At), escapeMarkdown(Summarize(m.Summary)))
			links := ArtifactLinks(m.Artifacts)
			if len(links) > 0 {
				b.WriteString("\n")
			}
			for _, l := range links {
				fmt.Fprintf(&b, "- [%s](%s)\n", l[0], strings.TrimRight(baseURL, "/")+l[1])
			}
		}
	}
	return b.String()
}

// RenderHTML renders the transcript as an HTML fragment.
func RenderHTML(msgs []types.ChatMessage, baseURL string) []byte {
	if len(msgs) == 0 {
		return []byte("<p><em>No messages yet.</em></p>\n")
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(RenderMarkdown(msgs, baseURL)))
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.Safelink,
	})
	return markdown.Render(doc, renderer)
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Local().Format(timeLayout)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

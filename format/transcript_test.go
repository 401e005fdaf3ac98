package format

import (
	"testing"
	"time"

	"planilhas/types"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)
	msgs := []types.ChatMessage{
		types.UserTurn{Text: "mesclar por nome", At: at},
		types.AssistantTurn{
			Summary:   types.RunSummary{DetectedAction: "MERGE", Destination: "a", Source: "b", Key: "nome"},
			Artifacts: types.Artifacts{ResultURL: "/download/r.xlsx", UnmatchedURL: "/download/u.csv"},
			At:        at,
		},
	}
	md := RenderMarkdown(msgs, "http://localhost:8000/")
	assert.Contains(t, md, "**You** _10:00:00_")
	assert.Contains(t, md, "mesclar por nome")
	assert.Contains(t, md, "- [Result](http://localhost:8000/download/r.xlsx)")
	assert.Contains(t, md, "- [Rows without a match](http://localhost:8000/download/u.csv)")
	assert.NotContains(t, md, "Processing log")
}

func TestRenderHTML(t *testing.T) {
	msgs := []types.ChatMessage{
		types.UserTurn{Text: "<script>alert(1)</script>", At: time.Now()},
		types.AssistantTurn{Artifacts: types.Artifacts{ResultURL: "/download/r.xlsx"}, At: time.Now()},
	}
	out := string(RenderHTML(msgs, "http://api"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `href="http://api/download/r.xlsx"`)
	assert.Contains(t, out, "<strong>Assistant</strong>")
}

func TestRenderHTMLEmpty(t *testing.T) {
	assert.Contains(t, string(RenderHTML(nil, "")), "No messages yet")
}

func TestArtifactLinksSkipsEmpty(t *testing.T) {
	assert.Empty(t, ArtifactLinks(types.Artifacts{}))
	links := ArtifactLinks(types.Artifacts{LogURL: "/download/log.txt"})
	assert.Equal(t, [][2]string{{"Processing log", "/download/log.txt"}}, links)
}

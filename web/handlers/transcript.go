package handlers

import (
	"fmt"
	"html"
	"net/http"

	"planilhas/app"
	"planilhas/format"

	"github.com/gin-gonic/gin"
)

type TranscriptHandler struct {
	app     *app.App
	baseURL string
}

func NewTranscriptHandler(a *app.App, baseURL string) *TranscriptHandler {
	return &TranscriptHandler{app: a, baseURL: baseURL}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>Planilhas</title></head>
<body>
<p>Session <code>%s</code></p>
%s
</body>
</html>
`

// HTML renders the transcript as a page.
func (h *TranscriptHandler) HTML(c *gin.Context) {
	body := format.RenderHTML(h.app.Sessions().Transcript(), h.baseURL)
	page := fmt.Sprintf(pageTemplate, html.EscapeString(h.app.Sessions().Current()), body)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *TranscriptHandler) Markdown(c *gin.Context) {
	md := format.RenderMarkdown(h.app.Sessions().Transcript(), h.baseURL)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
}

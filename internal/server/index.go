package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/bill-scanner/internal/llm"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

func (s *Server) handleIndex(c *gin.Context) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, struct{ Prompt string }{Prompt: llm.ResolvePrompt(s.cfg.PromptOverride)}); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

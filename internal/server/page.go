package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.tmpl").Funcs(template.FuncMap{
	"join": strings.Join,
}).ParseFS(templateFS, "templates/index.tmpl"))

// pageData is the struct passed to the index template.
type pageData struct {
	Filename    string
	HasDocument bool
	Characters  int
	Outcome     *generator.Outcome
	Columns     []string
	Table       models.TestCaseTable
	Accept      []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, release := s.lockSession(r)
	data := pageData{
		Filename:    sess.Filename,
		HasDocument: sess.HasDocument,
		Characters:  len(sess.ExtractedText),
		Outcome:     sess.TakeOutcome(),
		Columns:     models.Columns,
		Table:       sess.Table,
		Accept:      extract.AllowedExtensions(),
	}
	release()

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/export"
	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/models"
)

// statusFor maps an outcome kind to the HTTP status used by the JSON API.
func statusFor(kind generator.Kind) int {
	switch kind {
	case generator.KindOK:
		return http.StatusOK
	case generator.KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case generator.KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case generator.KindExtractionError, generator.KindEmptyParseResult:
		return http.StatusUnprocessableEntity
	case generator.KindServiceError:
		return http.StatusBadGateway
	case generator.KindMissingInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// classifyUpload maps upload errors, including request-level ones, to an outcome.
func classifyUpload(err error) generator.Outcome {
	if errors.Is(err, errMissingFile) {
		return generator.Outcome{Kind: generator.KindMissingInput, Severity: generator.SeverityWarning, Message: "Please choose a file to upload."}
	}
	return generator.Classify(err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

// upload runs the upload action for the request's session and reports its outcome.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) (generator.Outcome, *generator.Session, func()) {
	doc, err := readUpload(w, r)
	sess, release := s.lockSession(r)
	if err == nil {
		err = s.gen.Upload(sess, doc)
	}
	if err != nil {
		s.logger.Debug("upload failed", zap.String("session", sess.ID), zap.Error(err))
		return classifyUpload(err), sess, release
	}
	return generator.UploadedOutcome(), sess, release
}

// generate runs the generate action for the request's session and reports its outcome.
func (s *Server) generate(r *http.Request, prompt string) (generator.Outcome, *generator.Session, func()) {
	sess, release := s.lockSession(r)
	table, err := s.gen.Generate(r.Context(), sess, prompt)
	if err != nil {
		return generator.Classify(err), sess, release
	}
	return generator.GeneratedOutcome(len(table)), sess, release
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	outcome, sess, release := s.upload(w, r)
	sess.LastOutcome = &outcome
	release()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	outcome, sess, release := s.generate(r, r.FormValue("prompt"))
	sess.LastOutcome = &outcome
	release()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleUploadAPI(w http.ResponseWriter, r *http.Request) {
	outcome, sess, release := s.upload(w, r)
	defer release()
	if outcome.Kind != generator.KindOK {
		s.respondOutcome(w, outcome)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   sess.Filename,
		"characters": len(sess.ExtractedText),
		"message":    outcome.Message,
	})
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type tableResponse struct {
	TestCases models.TestCaseTable `json:"test_cases"`
	Count     int                  `json:"count"`
	Filename  string               `json:"filename,omitempty"`
	Warning   string               `json:"warning,omitempty"`
}

func newTableResponse(sess *generator.Session) tableResponse {
	table := sess.Table
	if table == nil {
		table = models.TestCaseTable{}
	}
	return tableResponse{TestCases: table, Count: len(table), Filename: sess.Filename}
}

func (s *Server) handleGenerateAPI(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outcome, sess, release := s.generate(r, req.Prompt)
	defer release()
	switch outcome.Kind {
	case generator.KindOK:
		s.respondJSON(w, http.StatusOK, newTableResponse(sess))
	case generator.KindEmptyParseResult:
		resp := newTableResponse(sess)
		resp.Warning = outcome.Message
		s.respondJSON(w, statusFor(outcome.Kind), resp)
	default:
		s.respondOutcome(w, outcome)
	}
}

func (s *Server) handleTestCasesAPI(w http.ResponseWriter, r *http.Request) {
	sess, release := s.lockSession(r)
	defer release()
	s.respondJSON(w, http.StatusOK, newTableResponse(sess))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.CSVFilename, export.CSVContentType, export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.XLSXFilename, export.XLSXContentType, export.WriteXLSX)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, filename, contentType string,
	write func(w io.Writer, table models.TestCaseTable) error) {
	sess, release := s.lockSession(r)
	defer release()
	if !sess.HasTable() {
		s.respondError(w, http.StatusNotFound, "no test cases to export")
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, sess.Table); err != nil {
		s.logger.Error("export failed", zap.String("format", filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) respondOutcome(w http.ResponseWriter, o generator.Outcome) {
	s.respondJSON(w, statusFor(o.Kind), map[string]string{"error": o.Message, "kind": string(o.Kind)})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

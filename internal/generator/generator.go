// Package generator runs the upload and generate actions over a session.
package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/models"
	"github.com/hyperjump/testgen/internal/testcase"
)

var (
	// ErrMissingInstruction is returned when generate is called with a blank instruction.
	ErrMissingInstruction = errors.New("instruction is empty")
	// ErrNoDocument is returned when generate is called before a successful upload.
	ErrNoDocument = errors.New("no document uploaded")
	// ErrEmptyParseResult is returned when the reply contained no usable rows.
	// It is a warning: the request itself succeeded.
	ErrEmptyParseResult = errors.New("no valid test cases parsed")
)

// Extractor turns an uploaded document into text.
type Extractor interface {
	Extract(doc *models.UploadedDocument) (string, error)
}

// CompletionRequester sends one instruction plus document context to a model.
type CompletionRequester interface {
	RequestCompletion(ctx context.Context, instruction, docContext string) (string, error)
}

// Generator executes user actions: extraction on upload, completion and parsing on generate.
type Generator struct {
	extractor Extractor
	requester CompletionRequester
	logger    *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for the generator.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a Generator.
func New(extractor Extractor, requester CompletionRequester, opts ...Option) *Generator {
	g := &Generator{extractor: extractor, requester: requester, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Upload extracts doc into sess. On success the session's text and filename are replaced
// and any previous table is cleared; on failure the session is left untouched.
func (g *Generator) Upload(sess *Session, doc *models.UploadedDocument) error {
	text, err := g.extractor.Extract(doc)
	if err != nil {
		g.logger.Info("upload rejected",
			zap.String("session", sess.ID),
			zap.String("filename", doc.Filename),
			zap.String("media_type", doc.MediaType),
			zap.Int64("size", doc.SizeBytes()),
			zap.Error(err))
		return err
	}
	sess.Filename = doc.Filename
	sess.ExtractedText = text
	sess.HasDocument = true
	sess.Table = nil
	sess.UpdatedAt = time.Now()
	g.logger.Info("document extracted",
		zap.String("session", sess.ID),
		zap.String("filename", doc.Filename),
		zap.String("media_type", doc.MediaType),
		zap.Int("characters", len(text)))
	return nil
}

// Generate requests test cases for the session's document. A reply with no usable rows
// clears the table and returns ErrEmptyParseResult. A failed request leaves the table as is.
func (g *Generator) Generate(ctx context.Context, sess *Session, instruction string) (models.TestCaseTable, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, ErrMissingInstruction
	}
	if !sess.HasDocument {
		return nil, ErrNoDocument
	}

	start := time.Now()
	reply, err := g.requester.RequestCompletion(ctx, instruction, sess.ExtractedText)
	if err != nil {
		g.logger.Error("generation failed", zap.String("session", sess.ID), zap.Error(err))
		return nil, err
	}

	table := testcase.Parse(reply)
	sess.Table = table
	sess.UpdatedAt = time.Now()
	if len(table) == 0 {
		g.logger.Warn("reply contained no test cases",
			zap.String("session", sess.ID),
			zap.Int("reply_chars", len(reply)))
		return table, ErrEmptyParseResult
	}
	g.logger.Info("test cases generated",
		zap.String("session", sess.ID),
		zap.Int("rows", len(table)),
		zap.Duration("elapsed", time.Since(start)))
	return table, nil
}

// Run performs Upload then Generate on a throwaway session.
func (g *Generator) Run(ctx context.Context, doc *models.UploadedDocument, instruction string) (models.TestCaseTable, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrMissingInstruction
	}
	sess := NewSession("")
	if err := g.Upload(sess, doc); err != nil {
		return nil, err
	}
	return g.Generate(ctx, sess, instruction)
}

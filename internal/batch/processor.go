// Package batch generates test cases for documents dropped into watched directories.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/export"
	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/generator"
	"github.com/hyperjump/testgen/internal/models"
)

// OutputSuffix is appended to the input file name (without extension) for results.
const OutputSuffix = ".test_cases.csv"

// Runner generates a table for one document.
type Runner interface {
	Run(ctx context.Context, doc *models.UploadedDocument, instruction string) (models.TestCaseTable, error)
}

// Processor turns watched documents into CSV files written next to them.
// Documents are processed one at a time.
type Processor struct {
	runner      Runner
	instruction string
	timeout     time.Duration
	logger      *zap.Logger
	mu          sync.Mutex
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for the processor.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithTimeout bounds each document's generation. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

// NewProcessor creates a Processor that sends instruction with every document.
func NewProcessor(runner Runner, instruction string, opts ...Option) *Processor {
	p := &Processor{runner: runner, instruction: instruction, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OutputPath returns where results for input are written: "<dir>/<name>.test_cases.csv".
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + OutputSuffix
}

// IsOutput reports whether path is a results file written by a Processor.
func IsOutput(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), OutputSuffix)
}

// Process generates test cases for the file at path and writes them to OutputPath(path).
// An empty parse result still writes a header-only file and is reported as a warning.
func (p *Processor) Process(ctx context.Context, path string) (string, error) {
	if IsOutput(path) {
		return "", nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := extract.ReadDocument(path)
	if err != nil {
		return "", err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	table, err := p.runner.Run(ctx, doc, p.instruction)
	if err != nil && !errors.Is(err, generator.ErrEmptyParseResult) {
		p.logger.Error("batch generation failed", zap.String("path", path), zap.Error(err))
		return "", err
	}
	out := OutputPath(path)
	if werr := writeTable(out, table); werr != nil {
		return "", werr
	}
	p.logger.Info("batch results written",
		zap.String("input", path),
		zap.String("output", out),
		zap.Int("rows", len(table)))
	return out, err
}

// Handle is the watcher callback: it processes path and only logs failures.
func (p *Processor) Handle(path string) {
	if _, err := p.Process(context.Background(), path); err != nil && !errors.Is(err, generator.ErrEmptyParseResult) {
		p.logger.Warn("skipping document", zap.String("path", path), zap.Error(err))
	}
}

// writeTable writes via a temp file so a watcher never sees a partial CSV.
func writeTable(path string, table models.TestCaseTable) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".testgen-*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := export.WriteCSV(tmp, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperjump/testgen/internal/extract"
	"github.com/hyperjump/testgen/internal/llm"
	"github.com/hyperjump/testgen/internal/models"
)

type fakeRequester struct {
	reply    string
	err      error
	calls    int
	contexts []string
}

func (f *fakeRequester) RequestCompletion(_ context.Context, instruction, docContext string) (string, error) {
	f.calls++
	f.contexts = append(f.contexts, docContext)
	return f.reply, f.err
}

func textDoc(name, content string) *models.UploadedDocument {
	return models.NewUploadedDocument(name, extract.MediaTypePlain, []byte(content))
}

func TestUpload_replacesSessionState(t *testing.T) {
	g := New(extract.NewExtractor(), &fakeRequester{})
	sess := NewSession("s1")
	sess.Table = models.TestCaseTable{{Description: "old", Steps: "old", ExpectedResult: "old"}}

	if err := g.Upload(sess, textDoc("req.txt", "requirement one")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !sess.HasDocument || sess.ExtractedText != "requirement one" || sess.Filename != "req.txt" {
		t.Errorf("session not updated: %+v", sess)
	}
	if sess.HasTable() {
		t.Error("previous table should be cleared on new upload")
	}

	if err := g.Upload(sess, textDoc("second.txt", "requirement two")); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if sess.ExtractedText != "requirement two" || sess.Filename != "second.txt" {
		t.Errorf("second upload should replace text wholesale: %+v", sess)
	}
}

func TestUpload_failureLeavesSessionUntouched(t *testing.T) {
	g := New(extract.NewExtractor(), &fakeRequester{})
	sess := NewSession("s1")
	if err := g.Upload(sess, textDoc("req.txt", "keep me")); err != nil {
		t.Fatal(err)
	}

	bad := models.NewUploadedDocument("pic.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	err := g.Upload(sess, bad)
	if !errors.Is(err, extract.ErrUnsupportedType) {
		t.Fatalf("want ErrUnsupportedType, got %v", err)
	}
	if sess.ExtractedText != "keep me" || sess.Filename != "req.txt" {
		t.Errorf("session changed after failed upload: %+v", sess)
	}
}

func TestGenerate(t *testing.T) {
	req := &fakeRequester{reply: "Login works || Enter valid creds, click login || User is logged in\nnoise"}
	g := New(extract.NewExtractor(), req)
	sess := NewSession("s1")
	if err := g.Upload(sess, textDoc("req.txt", "login requirements")); err != nil {
		t.Fatal(err)
	}

	table, err := g.Generate(context.Background(), sess, "  cover login  ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(table) != 1 || table[0].Description != "Login works" {
		t.Errorf("table = %+v", table)
	}
	if len(sess.Table) != 1 {
		t.Errorf("session table = %+v", sess.Table)
	}
	if req.contexts[0] != "login requirements" {
		t.Errorf("context = %q", req.contexts[0])
	}
}

func TestGenerate_missingInput(t *testing.T) {
	req := &fakeRequester{reply: "a || b || c"}
	g := New(extract.NewExtractor(), req)

	sess := NewSession("s1")
	if _, err := g.Generate(context.Background(), sess, "prompt"); !errors.Is(err, ErrNoDocument) {
		t.Errorf("want ErrNoDocument, got %v", err)
	}
	if err := g.Upload(sess, textDoc("req.txt", "x")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), sess, "   "); !errors.Is(err, ErrMissingInstruction) {
		t.Errorf("want ErrMissingInstruction, got %v", err)
	}
	if req.calls != 0 {
		t.Errorf("requester called %d times for invalid input", req.calls)
	}
}

func TestGenerate_emptyParseResult(t *testing.T) {
	req := &fakeRequester{reply: "Sorry, here is a markdown table:\n| a | b | c |"}
	g := New(extract.NewExtractor(), req)
	sess := NewSession("s1")
	if err := g.Upload(sess, textDoc("req.txt", "x")); err != nil {
		t.Fatal(err)
	}
	sess.Table = models.TestCaseTable{{Description: "old", Steps: "old", ExpectedResult: "old"}}

	table, err := g.Generate(context.Background(), sess, "prompt")
	if !errors.Is(err, ErrEmptyParseResult) {
		t.Fatalf("want ErrEmptyParseResult, got %v", err)
	}
	if table == nil || len(table) != 0 {
		t.Errorf("want empty non-nil table, got %#v", table)
	}
	if sess.HasTable() {
		t.Error("session table should be empty after an unusable reply")
	}
	if o := Classify(err); o.Severity != SeverityWarning {
		t.Errorf("empty parse should be a warning, got %+v", o)
	}
}

func TestGenerate_serviceErrorKeepsTable(t *testing.T) {
	req := &fakeRequester{err: &llm.ServiceError{Provider: "fake", Err: errors.New("timeout")}}
	g := New(extract.NewExtractor(), req)
	sess := NewSession("s1")
	if err := g.Upload(sess, textDoc("req.txt", "x")); err != nil {
		t.Fatal(err)
	}
	prev := models.TestCaseTable{{Description: "old", Steps: "old", ExpectedResult: "old"}}
	sess.Table = prev

	_, err := g.Generate(context.Background(), sess, "prompt")
	var svcErr *llm.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("want ServiceError, got %v", err)
	}
	if len(sess.Table) != 1 {
		t.Errorf("table should be unchanged, got %+v", sess.Table)
	}
}

func TestGenerate_emptyContextStillRequests(t *testing.T) {
	req := &fakeRequester{reply: "a || b || c"}
	g := New(extract.NewExtractor(), req)
	sess := NewSession("s1")
	if err := g.Upload(sess, textDoc("empty.txt", "")); err != nil {
		t.Fatal(err)
	}

	if _, err := g.Generate(context.Background(), sess, "prompt"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if req.calls != 1 || req.contexts[0] != "" {
		t.Errorf("calls=%d contexts=%q", req.calls, req.contexts)
	}
}

func TestRun(t *testing.T) {
	req := &fakeRequester{reply: "a || b || c\nd || e || f"}
	g := New(extract.NewExtractor(), req)

	table, err := g.Run(context.Background(), textDoc("req.txt", "doc"), "prompt")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(table) != 2 {
		t.Errorf("table = %+v", table)
	}

	if _, err := g.Run(context.Background(), textDoc("req.txt", "doc"), ""); !errors.Is(err, ErrMissingInstruction) {
		t.Errorf("want ErrMissingInstruction, got %v", err)
	}
	if req.calls != 1 {
		t.Errorf("calls = %d", req.calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err      error
		kind     Kind
		severity Severity
		message  string
	}{
		{nil, KindOK, SeveritySuccess, ""},
		{fmt.Errorf("%w: 300MB", extract.ErrFileTooLarge), KindFileTooLarge, SeverityError, MsgFileTooLarge},
		{fmt.Errorf("%w: image/png", extract.ErrUnsupportedType), KindUnsupportedType, SeverityError, MsgUnsupportedType},
		{&extract.ExtractionError{Format: "PDF", Err: errors.New("bad xref")}, KindExtractionError, SeverityError, "Error reading file: bad xref"},
		{&llm.ServiceError{Provider: "groq", Err: errors.New("401")}, KindServiceError, SeverityError, "Failed to generate test cases: 401"},
		{ErrEmptyParseResult, KindEmptyParseResult, SeverityWarning, MsgEmptyParse},
		{ErrMissingInstruction, KindMissingInput, SeverityWarning, MsgMissingInput},
		{ErrNoDocument, KindMissingInput, SeverityWarning, MsgMissingInput},
	}
	for _, tt := range tests {
		got := Classify(tt.err)
		if got.Kind != tt.kind || got.Severity != tt.severity || got.Message != tt.message {
			t.Errorf("Classify(%v) = %+v, want {%s %s %q}", tt.err, got, tt.kind, tt.severity, tt.message)
		}
	}

	if o := Classify(errors.New("boom")); o.Kind != KindInternal || !strings.Contains(o.Message, "boom") {
		t.Errorf("unknown error: %+v", o)
	}
}

func TestGeneratedOutcome(t *testing.T) {
	if got := GeneratedOutcome(1).Message; got != "Generated 1 test case." {
		t.Errorf("got %q", got)
	}
	if got := GeneratedOutcome(3).Message; got != "Generated 3 test cases." {
		t.Errorf("got %q", got)
	}
}

func TestSession_TakeOutcome(t *testing.T) {
	sess := NewSession("s")
	o := UploadedOutcome()
	sess.LastOutcome = &o
	if got := sess.TakeOutcome(); got == nil || got.Message != MsgUploaded {
		t.Errorf("TakeOutcome = %+v", got)
	}
	if sess.TakeOutcome() != nil {
		t.Error("outcome should be cleared after take")
	}
}

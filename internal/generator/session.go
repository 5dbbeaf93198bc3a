package generator

import (
	"time"

	"github.com/hyperjump/testgen/internal/models"
)

// Session is the state of one interactive user: the last extracted document and
// the last generated table. A session is mutated by one action at a time.
type Session struct {
	ID            string
	Filename      string
	ExtractedText string
	HasDocument   bool
	Table         models.TestCaseTable
	// LastOutcome is the result of the most recent action, shown once by the UI.
	LastOutcome *Outcome
	UpdatedAt   time.Time
}

// NewSession returns an empty session with the given ID.
func NewSession(id string) *Session {
	return &Session{ID: id, UpdatedAt: time.Now()}
}

// HasTable reports whether the session holds at least one test case.
func (s *Session) HasTable() bool {
	return len(s.Table) > 0
}

// TakeOutcome returns and clears LastOutcome.
func (s *Session) TakeOutcome() *Outcome {
	o := s.LastOutcome
	s.LastOutcome = nil
	return o
}

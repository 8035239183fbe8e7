package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zombor/receipt-analyzer/internal/analysis"
)

// Status is the state of the current analysis session.
type Status int

const (
	StatusIdle Status = iota
	StatusAnalyzing
	StatusSuccess
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAnalyzing:
		return "analyzing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ErrAnalysisInProgress is returned when an upload arrives while a request
// is already in flight.
var ErrAnalysisInProgress = errors.New("an analysis is already in progress")

// Snapshot is the read model exposed to renderers and handlers.
type Snapshot struct {
	Status       string           `json:"status"`
	IsAnalyzing  bool             `json:"is_analyzing"`
	Result       *analysis.Result `json:"result,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

// Store holds the single live session and mediates all state transitions.
// Exactly one session exists at a time; beginning a new one supersedes the
// previous result wholesale.
type Store struct {
	mu         sync.Mutex
	status     Status
	result     *analysis.Result
	errMessage string
}

// NewStore creates a Store in the idle state.
func NewStore() *Store {
	return &Store{status: StatusIdle}
}

// Begin transitions into the analyzing state, clearing any prior result and
// error. It rejects the transition while an analysis is in flight.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusAnalyzing {
		return ErrAnalysisInProgress
	}

	s.status = StatusAnalyzing
	s.result = nil
	s.errMessage = ""
	return nil
}

// Succeed records a successful analysis result. Legal only while analyzing.
func (s *Store) Succeed(result *analysis.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAnalyzing {
		return fmt.Errorf("cannot record success from %s state", s.status)
	}

	s.status = StatusSuccess
	s.result = result
	s.errMessage = ""
	return nil
}

// Fail records an analysis failure. Legal only while analyzing.
func (s *Store) Fail(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusAnalyzing {
		return fmt.Errorf("cannot record failure from %s state", s.status)
	}

	s.status = StatusError
	s.result = nil
	s.errMessage = message
	return nil
}

// Status returns the current status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Result returns the stored result, or nil outside the success state.
func (s *Store) Result() *analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot returns the current read model.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Status:       s.status.String(),
		IsAnalyzing:  s.status == StatusAnalyzing,
		Result:       s.result,
		ErrorMessage: s.errMessage,
	}
}

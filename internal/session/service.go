package session

import (
	"context"
	"log/slog"

	"github.com/zombor/receipt-analyzer/internal/analysis"
	"github.com/zombor/receipt-analyzer/internal/upload"
)

// Analyzer submits a receipt image to the analysis service.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, data []byte, contentType string) (*analysis.Result, error)
}

// Service runs the upload lifecycle: gate, transition into analyzing,
// exactly one analysis call, then the terminal transition.
type Service struct {
	gate     *upload.Gate
	analyzer Analyzer
	store    *Store
}

// NewService creates a Service.
func NewService(gate *upload.Gate, analyzer Analyzer, store *Store) *Service {
	return &Service{
		gate:     gate,
		analyzer: analyzer,
		store:    store,
	}
}

// Store returns the session store the service writes to.
func (s *Service) Store() *Store {
	return s.store
}

// Submit processes one drop/select event. The first accepted file is sent
// for analysis; additional files in the same event are ignored. An event
// with no accepted files changes nothing. The transition into analyzing
// happens before the network call, so readers observe the in-progress state
// for the whole request.
//
// Analysis failures are not returned as errors: they land in the store as
// the error state. The only error returned is ErrAnalysisInProgress, when a
// request is already in flight.
func (s *Service) Submit(ctx context.Context, files []upload.File) (Snapshot, error) {
	accepted := s.gate.Accept(files)
	if len(accepted) == 0 {
		return s.store.Snapshot(), nil
	}
	file := accepted[0]

	if err := s.store.Begin(); err != nil {
		return s.store.Snapshot(), err
	}

	slog.Info("Analyzing receipt", "filename", file.Name, "content_type", file.ContentType, "size", len(file.Data))

	result, err := s.analyzer.Analyze(ctx, file.Name, file.Data, file.ContentType)
	if err != nil {
		message := analysis.ErrorMessage(err)
		slog.Error("Analysis failed", "filename", file.Name, "error", err)
		if failErr := s.store.Fail(message); failErr != nil {
			slog.Error("Error recording failure", "error", failErr)
		}
		return s.store.Snapshot(), nil
	}

	if err := s.store.Succeed(result); err != nil {
		slog.Error("Error recording success", "error", err)
	}
	return s.store.Snapshot(), nil
}

// Package export serializes analysis results for download or on-disk
// delivery.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zombor/receipt-analyzer/internal/analysis"
)

// MIMEType is the media type of exported files.
const MIMEType = "application/json"

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time.
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Export is a serialized result ready to hand to the user. It lives only
// for the call that produced it.
type Export struct {
	Filename string
	Data     []byte
}

// Exporter serializes the stored analysis result.
type Exporter struct {
	timeSource TimeSource
}

// NewExporter creates an Exporter with the real clock.
func NewExporter() *Exporter {
	return &Exporter{timeSource: &defaultTimeSource{}}
}

// NewExporterWithTimeSource creates an Exporter with a custom time source
// for testing.
func NewExporterWithTimeSource(timeSource TimeSource) *Exporter {
	return &Exporter{timeSource: timeSource}
}

// Export serializes the result with 2-space indentation under the filename
// receipt-analysis-<unix-millis>.json. When the result still carries the
// verbatim service body, the export re-indents those bytes so field order
// and unrecognized fields survive untouched. Exporting a nil result is an
// error, not a panic.
func (e *Exporter) Export(result *analysis.Result) (*Export, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to export")
	}

	var data []byte
	if raw := result.Raw(); raw != nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return nil, fmt.Errorf("indenting result: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling result: %w", err)
		}
	}

	return &Export{
		Filename: fmt.Sprintf("receipt-analysis-%d.json", e.timeSource.Now().UnixMilli()),
		Data:     data,
	}, nil
}

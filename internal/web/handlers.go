package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/zombor/receipt-analyzer/internal/export"
	"github.com/zombor/receipt-analyzer/internal/render"
	"github.com/zombor/receipt-analyzer/internal/session"
	"github.com/zombor/receipt-analyzer/internal/upload"
)

// maxFormSize caps uploads at 50MB to handle high-resolution phone photos
const maxFormSize = int64(50 << 20)

// errFileTooLarge reports an uploaded file over the size cap.
var errFileTooLarge = errors.New("file too large")

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// jsonError writes a JSON error response with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// sessionResponse is the session read model plus the rendered display
// blocks for a successful result.
type sessionResponse struct {
	session.Snapshot
	Receipts []render.ReceiptView `json:"receipts,omitempty"`
}

// newSessionResponse projects the snapshot's result into display blocks.
func newSessionResponse(snapshot session.Snapshot) sessionResponse {
	resp := sessionResponse{Snapshot: snapshot}
	if snapshot.Result != nil && snapshot.Result.Success {
		resp.Receipts = render.Project(snapshot.Result.Records)
	}
	return resp
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleHealth reports service health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "Receipt Analyzer",
	})
}

// handleSession returns the current session state with rendered blocks
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snapshot := s.service.Store().Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newSessionResponse(snapshot)); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleUploadReceipt accepts one drop/select event's files and runs the
// analysis lifecycle. Files the gate rejects are ignored silently; an event
// with no accepted files leaves the session untouched.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	files, err := formFiles(r)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			jsonError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusBadRequest)
			return
		}
		slog.Error("Error reading uploaded files", "error", err)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	snapshot, err := s.service.Submit(r.Context(), files)
	if err != nil {
		if errors.Is(err, session.ErrAnalysisInProgress) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Error submitting upload", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(newSessionResponse(snapshot)); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// formFiles reads every "file" part of the multipart form in order.
func formFiles(r *http.Request) ([]upload.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["file"]
	files := make([]upload.File, 0, len(headers))
	for _, header := range headers {
		if header.Size > maxFormSize {
			return nil, fmt.Errorf("%s: %w", header.Filename, errFileTooLarge)
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("opening form file %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading form file %s: %w", header.Filename, err)
		}
		files = append(files, upload.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

// handleExport streams the stored result as a JSON download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	exported, err := s.exporter.Export(s.service.Store().Result())
	if err != nil {
		jsonError(w, "No analysis result to export", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", export.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exported.Filename))
	w.Write(exported.Data)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript file
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

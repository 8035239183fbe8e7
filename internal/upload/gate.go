package upload

import (
	"path/filepath"
	"strings"
)

// File is one file arriving through an intake path, with its binary payload
// and declared media type.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Config enumerates what the gate accepts.
type Config struct {
	// AcceptedExtensions are lowercase extensions including the dot.
	AcceptedExtensions map[string]bool

	// MaxFiles is the number of files forwarded from a single event.
	MaxFiles int
}

// DefaultConfig accepts the supported receipt image formats, one file at a
// time.
func DefaultConfig() Config {
	return Config{
		AcceptedExtensions: map[string]bool{
			".jpeg": true,
			".jpg":  true,
			".png":  true,
			".gif":  true,
			".bmp":  true,
			".tiff": true,
		},
		MaxFiles: 1,
	}
}

// Gate filters incoming files by type before they reach the analysis client.
type Gate struct {
	config Config
}

// NewGate creates a Gate with the given configuration.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// Accept returns the accepted files from one drop/select event, in event
// order, capped at MaxFiles. Files rejected by the type filter are dropped
// silently; an event with no accepted files yields an empty slice.
func (g *Gate) Accept(files []File) []File {
	accepted := make([]File, 0, g.config.MaxFiles)
	for _, f := range files {
		if len(accepted) >= g.config.MaxFiles {
			break
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !g.config.AcceptedExtensions[ext] {
			continue
		}
		if f.ContentType == "" {
			f.ContentType = ContentTypeForExt(ext)
		}
		accepted = append(accepted, f)
	}
	return accepted
}

// ContentTypeForExt maps an image extension to its MIME type.
func ContentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

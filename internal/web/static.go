// Package web serves the journal's static front-end assets.
package web

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// contentTypes maps file extensions to response content types. Unknown
// extensions fall back to application/octet-stream.
var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

const indexFile = "index.html"

// Handler serves files from a root directory. Requests for paths that
// do not exist fall back to the entry document (single-page app
// routing); read failures other than not-found produce a generic 500.
type Handler struct {
	root string
}

// NewHandler creates a static handler rooted at dir.
func NewHandler(dir string) *Handler {
	return &Handler{root: dir}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" || name == "." || strings.HasPrefix(name, "..") {
		name = indexFile
	}

	data, err := os.ReadFile(filepath.Join(h.root, filepath.FromSlash(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			h.serveIndex(w)
			return
		}
		http.Error(w, "Server Error", http.StatusInternalServerError)
		return
	}

	ext := strings.ToLower(filepath.Ext(name))
	ct, ok := contentTypes[ext]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) serveIndex(w http.ResponseWriter) {
	data, err := os.ReadFile(filepath.Join(h.root, indexFile))
	if err != nil {
		http.Error(w, "Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

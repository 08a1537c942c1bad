package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves the single-page app bundle. Unknown paths fall
// back to index.html so client-side routes survive a full page load.
type SPAHandler struct {
	root  string
	index string
	files http.Handler
}

func NewSPAHandler(root string) *SPAHandler {
	return &SPAHandler{
		root:  root,
		index: filepath.Join(root, "index.html"),
		files: http.FileServer(http.Dir(root)),
	}
}

func (h *SPAHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	full := filepath.Join(h.root, rel)

	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		h.files.ServeHTTP(w, r)
		return
	}

	http.ServeFile(w, r, h.index)
}

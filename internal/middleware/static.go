package middleware

import (
	"net/http"
	"os"
	"path/filepath"
)

const missingReceiptSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 200"><rect width="200" height="200" fill="#f0f0f0"/><path d="M65 40h70v110l-12-8-11 8-12-8-12 8-11-8-12 8z" fill="#fff" stroke="#999" stroke-width="4"/><line x1="80" y1="70" x2="120" y2="70" stroke="#999" stroke-width="4"/><line x1="80" y1="90" x2="120" y2="90" stroke="#999" stroke-width="4"/><text x="100" y="180" text-anchor="middle" font-family="Arial" font-size="14" fill="#666">RECEIPT</text></svg>`

// ReceiptFileServer serves uploaded receipt images. Missing files get a
// placeholder instead of a 404 so transaction views never break on a
// receipt that was deleted from disk.
func ReceiptFileServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))

		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			w.Header().Set("Cache-Control", "public, max-age=2592000")
			http.ServeFile(w, r, path)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write([]byte(missingReceiptSVG))
	})
}

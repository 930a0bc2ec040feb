package handlers

import (
	"net/http"
	"path"
)

// Static serves files from dir for GET and HEAD. Other methods and missing
// files get the JSON not-found envelope instead of the file server's text.
func Static(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			NotFound(w, r)
			return
		}

		f, err := root.Open(path.Clean("/" + r.URL.Path))
		if err != nil {
			NotFound(w, r)
			return
		}
		_ = f.Close()

		files.ServeHTTP(w, r)
	})
}

package web

import (
	"io/fs"
	"net/http"
)

// Static serves the files under dir of fsys with the request path stripped of
// prefix.
func Static(fsys fs.FS, dir, prefix string) (http.Handler, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}
	return http.StripPrefix(prefix, http.FileServerFS(sub)), nil
}

package handlers

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/freekieb7/rawhttp/filesystem"
	"github.com/freekieb7/rawhttp/http"
)

var mimeTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"png":  "image/png",
	"txt":  "text/plain",
}

// MimeType maps a file name to its content type by extension.
func MimeType(name string) string {
	if mime, found := mimeTypes[filesystem.GetFileExtension(name)]; found {
		return mime
	}
	return "application/octet-stream"
}

// Static serves the file named by the last path segment out of root. A
// directory is answered with a JSON list of its entries.
func Static(fs filesystem.Filesystem, root string) http.Handler {
	return func(req http.Request, res http.Response) http.Response {
		name := req.Path[strings.LastIndexByte(req.Path, '/')+1:]
		if name == "." || name == ".." {
			return http.NotFoundHandler(req, res)
		}
		path := filepath.Join(root, name)

		kind, err := fs.Kind(path)
		if err != nil {
			return internalError(req, res, path, err)
		}

		switch kind {
		case filesystem.KindFile:
			content, err := fs.ReadFile(path)
			if errors.Is(err, filesystem.ErrFileNotFound) {
				return http.NotFoundHandler(req, res)
			}
			if err != nil {
				return internalError(req, res, path, err)
			}
			return res.WithStatus(http.StatusOK).WithBody(MimeType(name), content)
		case filesystem.KindDirectory:
			names, err := fs.ListDirectory(path)
			if err != nil {
				return internalError(req, res, path, err)
			}
			return res.WithStatus(http.StatusOK).WithJSON(names)
		default:
			return http.NotFoundHandler(req, res)
		}
	}
}

func internalError(req http.Request, res http.Response, path string, err error) http.Response {
	slog.ErrorContext(req.Context(), "serving static file failed", "path", path, "error", err)
	return res.WithStatus(http.StatusInternalError).WithText("500 Internal Error")
}

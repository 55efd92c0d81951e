package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const staticPrefix = "/static/"

var (
	ErrEmptyStaticPath = errors.New("empty static file path")
	ErrOutsideRoot     = errors.New("path escapes static root")
)

// contentTypes maps lowercase file extensions to the served Content-Type.
// File contents are never sniffed.
var contentTypes = map[string]string{
	".txt":  "text/plain",
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

const defaultContentType = "application/octet-stream"

func contentTypeFor(path string) string {
	if typ, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return typ
	}
	return defaultContentType
}

// resolveStatic maps a /static/ request path to a file path under root,
// which must be absolute and clean. The joined candidate is canonicalized
// and must stay inside root as a proper path prefix: "../" escapes and
// sibling directories like "root-evil" are both ErrOutsideRoot. Callers
// answer that exactly like a missing file.
func resolveStatic(root, reqPath string) (string, error) {
	name := reqPath[len(staticPrefix):]
	if name == "" {
		return "", ErrEmptyStaticPath
	}
	candidate := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", ErrOutsideRoot
	}
	return candidate, nil
}

// Command std_server serves the same routes as the root server, built on
// net/http instead of a raw TCP listener. Useful for comparing behavior
// and for seeing what the standard library layers on top.
package main

import (
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const greeting = "Hello, World!"

var (
	port    = flag.String("port", "8081", "port number")
	dir     = flag.String("dir", "./public", "directory served under /static/")
	verbose = flag.Bool("verbose", false, "enable debug logging")
)

var errOutsideRoot = errors.New("path escapes static root")

// resolve maps a request-relative name to a path under root, rejecting
// anything that would land outside it.
func resolve(root, name string) (string, error) {
	path := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errOutsideRoot
	}
	return path, nil
}

func newHandler(root string, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, greeting)
	})

	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "405 Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/static/")
		if name == "" {
			http.Error(w, "400 Bad Request", http.StatusBadRequest)
			return
		}
		path, err := resolve(root, name)
		if err != nil {
			log.Debug().Str("path", r.URL.Path).Msg("static path escapes root")
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	})

	return mux
}

func main() {
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create static root")
	}
	root, err := filepath.Abs(*dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve static root")
	}

	addr := ":" + *port
	srv := &http.Server{
		Addr:    addr,
		Handler: newHandler(root, logger),
	}
	logger.Info().Str("addr", addr).Str("root", root).Msg("listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

package main

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const greeting = "Hello, World!"

// Worker owns one accepted connection for exactly one request/response
// exchange.
type Worker struct {
	conn   net.Conn
	reader *bufio.Reader
	root   string // absolute static root
	log    zerolog.Logger
	req    *Request
	res    *Response
	sent   bool // response bytes already started onto the wire
}

type stateFunc func(*Worker) stateFunc

func NewWorker(conn net.Conn, root string, logger zerolog.Logger) *Worker {
	return &Worker{
		conn:   conn,
		reader: bufio.NewReader(conn),
		root:   root,
		log:    logger.With().Str("remote", conn.RemoteAddr().String()).Logger(),
	}
}

// Run drives the state machine to completion. A panic anywhere in handling
// is recovered here: a best-effort 500 goes out if nothing was sent yet,
// cleanup still runs, and the accept loop never sees the failure.
func (w *Worker) Run() {
	defer func() {
		if v := recover(); v != nil {
			w.log.Error().Interface("panic", v).Msg("connection handler panicked")
			if !w.sent {
				w.sent = true
				_ = WriteResponse(w.conn, errorResponse(500))
			}
			finishWorker(w)
		}
	}()

	for state := waitForRequest; state != nil; {
		state = state(w)
	}
}

// Evaluated in order, first match wins.
var routes = []route{
	{match: func(path string) bool { return path == "/" }, serve: serveGreeting},
	{match: hasStaticPrefix, serve: serveStaticFile},
}

type route struct {
	match func(path string) bool
	serve func(w *Worker) *Response
}

func hasStaticPrefix(path string) bool {
	return len(path) >= len(staticPrefix) && strings.EqualFold(path[:len(staticPrefix)], staticPrefix)
}

func serveGreeting(w *Worker) *Response {
	return textResponse(200, greeting)
}

func serveStaticFile(w *Worker) *Response {
	path, err := resolveStatic(w.root, w.req.Path)
	if err != nil {
		if errors.Is(err, ErrEmptyStaticPath) {
			return errorResponse(400)
		}
		// Escapes answer exactly like a plain miss.
		w.log.Debug().Str("path", w.req.Path).Msg("static path escapes root")
		return errorResponse(404)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errorResponse(404)
		}
		w.log.Error().Err(err).Str("file", path).Msg("failed to open static file")
		return errorResponse(500)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		w.log.Error().Err(err).Str("file", path).Msg("failed to stat static file")
		return errorResponse(500)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return errorResponse(404)
	}
	return fileResponse(f, info.Size(), contentTypeFor(path))
}

// state funcs

func waitForRequest(w *Worker) stateFunc {
	req, err := readRequest(w.reader)
	if err != nil {
		if errors.Is(err, ErrMalformedRequest) {
			w.log.Debug().Err(err).Msg("rejecting malformed request")
			w.res = errorResponse(400)
		} else {
			w.log.Debug().Err(err).Msg("failed to read request")
			w.res = errorResponse(500)
		}
		return sendErrorResponse
	}
	w.req = req
	w.log.Debug().Str("method", req.Method).Str("path", req.Path).Msg("request received")
	return dispatchRequest
}

func dispatchRequest(w *Worker) stateFunc {
	if !strings.EqualFold(w.req.Method, "GET") {
		w.res = errorResponse(405)
		return sendErrorResponse
	}
	for _, rt := range routes {
		if rt.match(w.req.Path) {
			w.res = rt.serve(w)
			return sendResponse
		}
	}
	w.res = errorResponse(404)
	return sendErrorResponse
}

func sendResponse(w *Worker) stateFunc {
	w.sent = true
	if err := WriteResponse(w.conn, w.res); err != nil {
		// Peer went away mid-response. Nothing may be rewritten; drop.
		w.log.Warn().Err(err).Msg("response write failed")
	}
	return finishWorker
}

func sendErrorResponse(w *Worker) stateFunc {
	w.log.Debug().Int("status", w.res.Status).Msg("sending error response")
	return sendResponse
}

func finishWorker(w *Worker) stateFunc {
	if w.res != nil {
		if c, ok := w.res.Body.(io.Closer); ok {
			c.Close()
		}
	}
	w.conn.Close()
	w.log.Debug().Msg("connection closed")
	return nil
}

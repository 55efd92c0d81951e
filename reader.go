package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedRequest = errors.New("malformed request line")

// similar to readLineSlice() in net/textproto/reader.go
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		l, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if line == nil && !more {
			return string(l), nil
		}
		line = append(line, l...)
		if !more {
			break
		}
	}
	return string(line), nil
}

// readRequest parses the request line and consumes the header block. The
// line must split on single spaces into exactly three fields; anything else
// is ErrMalformedRequest. Header lines are discarded unread up to the blank
// line that ends them, and no request body is ever read.
func readRequest(r *bufio.Reader) (*Request, error) {
	rl, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request line: %w", err)
	}
	fields := strings.Split(rl, " ")
	if len(fields) != 3 {
		return nil, ErrMalformedRequest
	}
	req := &Request{
		Method:  fields[0],
		Path:    fields[1],
		Version: fields[2],
	}
	if err := skipHeaders(r); err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}
	return req, nil
}

// skipHeaders discards header lines until the blank line. End of stream
// also ends the header block; a request with no blank line is still served.
func skipHeaders(r *bufio.Reader) error {
	for {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(line) == 0 {
			return nil
		}
	}
}

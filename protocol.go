package main

import (
	"fmt"
	"io"
	"strings"
)

type Request struct {
	Method  string
	Path    string
	Version string
}

// Length is the exact body size in bytes, fixed before any header is
// written.
type Response struct {
	Status      int
	Phrase      string
	ContentType string
	Length      int64
	Body        io.Reader
}

func statusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 500:
		return "Internal Server Error"
	default:
		return "Unknown Status"
	}
}

func textResponse(status int, body string) *Response {
	return &Response{
		Status:      status,
		Phrase:      statusText(status),
		ContentType: "text/plain",
		Length:      int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func errorResponse(status int) *Response {
	return textResponse(status, fmt.Sprintf("%d %s", status, statusText(status)))
}

// The body stays open until the worker closes it after writing.
func fileResponse(body io.Reader, size int64, contentType string) *Response {
	return &Response{
		Status:      200,
		Phrase:      statusText(200),
		ContentType: contentType,
		Length:      size,
		Body:        body,
	}
}

package main

import (
	"fmt"
	"io"
)

// WriteResponse serializes res onto w: status line, the fixed header set in
// its fixed order, a blank line, then exactly res.Length body bytes.
func WriteResponse(w io.Writer, res *Response) error {
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\nContent-Type: %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n",
		res.Status, res.Phrase, res.ContentType, res.Length)
	if err != nil {
		return err
	}
	if res.Body == nil {
		return nil
	}
	_, err = io.CopyN(w, res.Body, res.Length)
	return err
}

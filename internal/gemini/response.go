package gemini

import (
	"fmt"
	"io"
)

// MIMEGemtext is the native content type of the protocol.
const MIMEGemtext = "text/gemini"

// Response is the complete answer to a single request. Meta carries the
// content type for success responses, the target for redirects and a short
// human readable message for failures. Body is ignored by the wire encoder
// unless the status is in the success class.
type Response struct {
	Status int
	Meta   string
	Body   []byte
}

// Success builds a 20 response with the given content type and body.
func Success(contentType string, body []byte) Response {
	return Response{Status: StatusSuccess, Meta: contentType, Body: body}
}

// Redirect builds a permanent redirect to target.
func Redirect(target string) Response {
	return Response{Status: StatusRedirectPermanent, Meta: target}
}

// Failure builds a bodyless response for any non-success status.
func Failure(status int, message string) Response {
	return Response{Status: status, Meta: message}
}

// WriteTo encodes the response onto w: a single CRLF terminated header
// line "<status><SP><meta>" followed by the body for success responses.
func (resp Response) WriteTo(w io.Writer) (int64, error) {
	var written int64

	n, err := fmt.Fprintf(w, "%d %s\r\n", resp.Status, resp.Meta)
	written += int64(n)
	if err != nil {
		return written, err
	}

	if StatusClass(resp.Status) != 2 {
		return written, nil
	}

	n, err = w.Write(resp.Body)
	written += int64(n)
	return written, err
}

// Package httpproto implements the minimal, hand-rolled HTTP/1.1 parsing
// and reply formatting the image server needs: no chunked transfer
// encoding, no keep-alive pipelining, no header continuation lines. It
// exists because the server speaks to raw net.Conn byte streams rather
// than through net/http's request/response plumbing.
package httpproto

import (
	"fmt"
	"strconv"
	"strings"
)

// Status reports the outcome of feeding accumulated bytes to Parse.
type Status int

const (
	// NeedMore means the accumulated bytes do not yet contain a full
	// message; the caller should read more and call Parse again.
	NeedMore Status = iota
	// Ready means Message holds a complete, well-formed request.
	Ready
	// Malformed means the accumulated bytes can never form a valid
	// request; the caller should reply with 400 and close.
	Malformed
)

// Header is one key/value pair from the request's header block.
type Header struct {
	Key   string
	Value string
}

// Message is a fully parsed HTTP/1.1 request line plus headers and body.
type Message struct {
	Method  string
	URI     string
	Headers []Header
	Body    []byte
}

const (
	lineDelim   = "\r\n"
	headerEnd   = lineDelim + lineDelim
	maxHeaders  = 40
	protocolTok = "HTTP/1.1"
)

// Parse attempts to parse a complete HTTP/1.1 request out of buf, the
// bytes accumulated so far from a connection. It never blocks and never
// mutates buf.
func Parse(buf []byte) (Status, *Message) {
	s := string(buf)

	headerEndIdx := strings.Index(s, headerEnd)
	if headerEndIdx == -1 {
		if len(s) > 0 && !looksLikePartialRequest(s) {
			return Malformed, nil
		}
		return NeedMore, nil
	}

	requestLine, rest, ok := cutLine(s)
	if !ok {
		return Malformed, nil
	}
	method, uri, ok := parseRequestLine(requestLine)
	if !ok {
		return Malformed, nil
	}

	headerBlock := s[len(requestLine)+len(lineDelim) : headerEndIdx]
	headers, ok := parseHeaders(headerBlock)
	if !ok {
		return Malformed, nil
	}
	_ = rest

	bodyStart := headerEndIdx + len(headerEnd)
	contentLen := 0
	for _, h := range headers {
		if strings.EqualFold(h.Key, "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(h.Value))
			if err != nil || n < 0 {
				return Malformed, nil
			}
			contentLen = n
		}
	}

	available := len(s) - bodyStart
	if available < contentLen {
		return NeedMore, nil
	}

	body := buf[bodyStart : bodyStart+contentLen]
	return Ready, &Message{
		Method:  method,
		URI:     uri,
		Headers: headers,
		Body:    body,
	}
}

// ContentLength scans buf for a Content-Length header without requiring
// the full message to be present yet, so the caller can grow its read
// buffer ahead of time. It returns 0 if the header is absent or the
// header block itself hasn't arrived.
func ContentLength(buf []byte) int {
	s := string(buf)
	idx := strings.Index(s, headerEnd)
	limit := len(s)
	if idx != -1 {
		limit = idx
	}
	lower := strings.ToLower(s[:limit])
	key := "content-length:"
	at := strings.Index(lower, key)
	if at == -1 {
		return 0
	}
	rest := s[at+len(key):]
	if nl := strings.IndexAny(rest, "\r\n"); nl != -1 {
		rest = rest[:nl]
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func looksLikePartialRequest(s string) bool {
	// A request line can't legally exceed one line; if we already have a
	// full line without a recognized method, the stream is garbage, not
	// merely incomplete.
	line, _, ok := cutLine(s)
	if !ok {
		return true // first line not terminated yet, keep waiting
	}
	_, _, ok = parseRequestLine(line)
	return ok
}

func cutLine(s string) (line, rest string, ok bool) {
	idx := strings.Index(s, lineDelim)
	if idx == -1 {
		return "", "", false
	}
	return s[:idx], s[idx+len(lineDelim):], true
}

func parseRequestLine(line string) (method, uri string, ok bool) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", false
	}
	if parts[2] != protocolTok {
		return "", "", false
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func parseHeaders(block string) ([]Header, bool) {
	if block == "" {
		return nil, true
	}
	var headers []Header
	for _, line := range strings.Split(block, lineDelim) {
		if line == "" {
			continue
		}
		if len(headers) >= maxHeaders {
			return nil, false
		}
		k, v, found := strings.Cut(line, ": ")
		if !found {
			return nil, false
		}
		headers = append(headers, Header{Key: k, Value: v})
	}
	return headers, true
}

// MatchVerb reports whether msg's method equals verb, case-sensitively.
func MatchVerb(msg *Message, verb string) bool {
	return msg.Method == verb
}

// MatchURI reports whether msg's URI starts with target.
func MatchURI(msg *Message, target string) bool {
	return strings.HasPrefix(msg.URI, target)
}

// GetVar extracts the value of query parameter name from a URI of the
// form "/path?a=1&b=2". It returns ok=false if the parameter is absent.
func GetVar(uri, name string) (string, bool) {
	_, query, found := strings.Cut(uri, "?")
	if !found {
		return "", false
	}
	for _, kv := range strings.Split(query, "&") {
		k, v, found := strings.Cut(kv, "=")
		if found && k == name {
			return v, true
		}
	}
	return "", false
}

// Reply formats a minimal HTTP/1.1 response: status line, Content-Type,
// Content-Length, a blank line, then body.
func Reply(status string, contentType string, body []byte) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s%s", protocolTok, status, lineDelim)
	fmt.Fprintf(&b, "Content-Type: %s%s", contentType, lineDelim)
	fmt.Fprintf(&b, "Content-Length: %d%s", len(body), lineDelim)
	b.WriteString(lineDelim)
	out := make([]byte, 0, b.Len()+len(body))
	out = append(out, []byte(b.String())...)
	out = append(out, body...)
	return out
}

// Redirect formats a 302 Found response pointing at location, with an
// empty body, used by the server to send insert and delete back to
// /index.html.
func Redirect(location string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 302 Found%s", protocolTok, lineDelim)
	fmt.Fprintf(&b, "Location: %s%s", location, lineDelim)
	b.WriteString("Content-Length: 0" + lineDelim)
	b.WriteString(lineDelim)
	return []byte(b.String())
}

const (
	StatusOK          = "200 OK"
	StatusFound       = "302 Found"
	StatusBadRequest  = "400 Bad Request"
	StatusNotFound    = "404 Not Found"
	StatusServerError = "500 Internal Server Error"
)

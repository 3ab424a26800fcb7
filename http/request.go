package http

import (
	"strings"
	"unicode/utf8"
)

const protocolHTTP11 = "HTTP/1.1"

type Headers map[string]string

// Request is built from the request line of one framed request. Headers
// and Body are left for collaborators to fill.
type Request struct {
	Method Method
	Path   string

	// Query is nil when the request path carries no '?'.
	Query *QueryString

	Headers Headers
	Body    []byte
}

// ParseRequest parses the request line at the start of buf. Lines after
// the first are not tokenized. The returned error is always a ParseError.
func ParseRequest(buf []byte) (*Request, error) {
	if !utf8.Valid(buf) {
		return nil, ErrInvalidEncoding
	}

	method, path, query, err := parseRequestLine(string(buf))
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:  method,
		Path:    path,
		Query:   query,
		Headers: Headers{},
	}, nil
}

func parseRequestLine(s string) (Method, string, *QueryString, error) {
	methodToken, rest, ok := nextWord(s)
	if !ok {
		return 0, "", nil, ErrInvalidRequest
	}
	rawPath, rest, ok := nextWord(rest)
	if !ok {
		return 0, "", nil, ErrInvalidRequest
	}
	protocol, _, ok := nextWord(rest)
	if !ok {
		return 0, "", nil, ErrInvalidRequest
	}

	if err := validateProtocol(protocol); err != nil {
		return 0, "", nil, err
	}

	method, err := ParseMethod(methodToken)
	if err != nil {
		return 0, "", nil, err
	}

	path, rawQuery, hasQuery := strings.Cut(rawPath, "?")
	if !hasQuery {
		return method, path, nil, nil
	}

	query := ParseQueryString(rawQuery)
	return method, path, &query, nil
}

// nextWord returns the trimmed text before the first space or carriage
// return and everything after that delimiter.
func nextWord(s string) (string, string, bool) {
	i := strings.IndexAny(s, " \r")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(s[:i]), s[i+1:], true
}

func validateProtocol(protocol string) error {
	name, version, found := strings.Cut(protocol, "/")
	switch {
	case !found:
		return ErrInvalidProtocol
	case name == "HTTP" && version == "1.1":
		return nil
	case name == "HTTP":
		return ErrUnsupportedVersion
	default:
		return ErrInvalidProtocol
	}
}

// QueryParam returns the first value bound to key in the query string.
func (req *Request) QueryParam(key string) (string, bool) {
	if req.Query == nil {
		return "", false
	}
	v, found := req.Query.Get(key)
	if !found {
		return "", false
	}
	return v.First(), true
}

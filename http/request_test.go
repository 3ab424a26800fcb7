package http

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/freekieb7/rawhttp/test"
)

func TestRequestParse(t *testing.T) {
	reqMsg := []byte("GET /user?types=Tap+Water&x=8 HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\n\r\n")

	req, err := ParseRequest(reqMsg)
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, MethodGet, req.Method)
	test.AssertEqual(t, "/user", req.Path)
	if req.Query == nil {
		t.Fatal("expected query string")
	}

	types, found := req.QueryParam("types")
	test.AssertEqual(t, true, found)
	test.AssertEqual(t, "Tap Water", types)
	test.AssertEqual(t, 0, len(req.Headers))
	test.AssertEqual(t, 0, len(req.Body))
}

func TestRequestParseWithoutQuery(t *testing.T) {
	req, err := ParseRequest([]byte("DELETE /items/7 HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, MethodDelete, req.Method)
	test.AssertEqual(t, "/items/7", req.Path)
	if req.Query != nil {
		t.Errorf("expected no query string, got %v", req.Query)
	}

	_, found := req.QueryParam("x")
	test.AssertEqual(t, false, found)
}

func TestRequestParseEmptyQuery(t *testing.T) {
	req, err := ParseRequest([]byte("GET /search? HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqual(t, "/search", req.Path)
	if req.Query == nil {
		t.Fatal("expected an empty query string")
	}
	test.AssertEqual(t, true, req.Query.Has(""))
}

func TestRequestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ParseError
	}{
		{"empty buffer", "", ErrInvalidRequest},
		{"method only", "GET\r\n\r\n", ErrInvalidRequest},
		{"no carriage return", "GET /x HTTP/1.1", ErrInvalidRequest},
		{"missing protocol", "GET /x\r\n\r\n", ErrInvalidProtocol},
		{"invalid utf8", "GET /\xff HTTP/1.1\r\n\r\n", ErrInvalidEncoding},
		{"invalid utf8 in headers", "GET / HTTP/1.1\r\nX-Bad: \xfe\r\n\r\n", ErrInvalidEncoding},
		{"http 1.0", "GET /x HTTP/1.0\r\n\r\n", ErrUnsupportedVersion},
		{"http 2", "GET /x HTTP/2\r\n\r\n", ErrUnsupportedVersion},
		{"other scheme same version", "GET /x FTP/1.1\r\n\r\n", ErrInvalidProtocol},
		{"other scheme other version", "GET /x FTP/2.0\r\n\r\n", ErrInvalidProtocol},
		{"lower case scheme", "GET /x http/1.1\r\n\r\n", ErrInvalidProtocol},
		{"protocol without slash", "GET /x HTTP1.1\r\n\r\n", ErrInvalidProtocol},
		{"unknown method", "FOO /x HTTP/1.1\r\n\r\n", ErrInvalidMethod},
		{"lower case method", "get /x HTTP/1.1\r\n\r\n", ErrInvalidMethod},
		{"protocol checked before method", "FOO /x HTTP/1.0\r\n\r\n", ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.input))
			if req != nil {
				t.Errorf("expected no request, got %+v", req)
			}
			test.AssertErrorIs(t, err, tt.expected)

			var parseErr ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T", err)
			}
		})
	}
}

func TestParseErrorMessages(t *testing.T) {
	test.AssertEqual(t, "Invalid Request", ErrInvalidRequest.Error())
	test.AssertEqual(t, "Invalid Encoding", ErrInvalidEncoding.Error())
	test.AssertEqual(t, "Invalid Protocol", ErrInvalidProtocol.Error())
	test.AssertEqual(t, "Invalid Method", ErrInvalidMethod.Error())
	test.AssertEqual(t, "HTTP Version Not Supported", ErrUnsupportedVersion.Error())
	test.AssertEqual(t, "Unknown Parse Error", ParseError(0).Error())
}

func TestRequestLineRoundTrip(t *testing.T) {
	tests := []struct {
		method Method
		path   string
		query  map[string][]string
	}{
		{MethodGet, "/", nil},
		{MethodPost, "/user", map[string][]string{"types": {"Tap Water"}, "favorite": {"true"}}},
		{MethodPut, "/a/b/c", map[string][]string{"eq": {"x=y"}, "pct": {"100%"}}},
		{MethodDelete, "/items", map[string][]string{"tag": {"a", "b", "c"}}},
		{MethodHead, "/unicode", map[string][]string{"ünï": {"cödé"}}},
		{MethodOptions, "/opt", map[string][]string{"empty": {""}}},
		{MethodPatch, "/patch", map[string][]string{"k": {"v"}}},
	}

	for _, tt := range tests {
		t.Run(tt.method.String()+" "+tt.path, func(t *testing.T) {
			target := tt.path
			if tt.query != nil {
				var pairs []string
				for key, values := range tt.query {
					for _, value := range values {
						pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
					}
				}
				target += "?" + strings.Join(pairs, "&")
			}

			line := tt.method.String() + " " + target + " HTTP/1.1\r\nHost: example.com\r\n\r\n"
			req, err := ParseRequest([]byte(line))
			if err != nil {
				t.Fatal(err)
			}

			test.AssertEqual(t, tt.method, req.Method)
			test.AssertEqual(t, tt.path, req.Path)

			if tt.query == nil {
				if req.Query != nil {
					t.Errorf("expected no query string, got %v", req.Query)
				}
				return
			}

			test.AssertEqual(t, len(tt.query), req.Query.Len())
			for key, values := range tt.query {
				v, found := req.Query.Get(key)
				if !found {
					t.Fatalf("key %q missing", key)
				}
				test.AssertDeepEqual(t, values, v.All())
				test.AssertEqual(t, len(values) > 1, v.IsMultiple())
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "CONNECT", "TRACE", "PATCH"} {
		m, err := ParseMethod(name)
		test.AssertNoError(t, err)
		test.AssertEqual(t, name, m.String())
	}

	_, err := ParseMethod("BREW")
	test.AssertErrorIs(t, err, ErrInvalidMethod)
	test.AssertEqual(t, "UNKNOWN", Method(0).String())
}

func FuzzRequestParse(f *testing.F) {
	f.Add([]byte("GET / HTTP/1.1\r\n\r\n"))
	f.Add([]byte("POST /user?types=Tap+Water&z=&z=1 HTTP/1.1\r\nHost: x\r\n\r\n"))
	f.Add([]byte("FOO /x HTTP/1.0\r\n\r\n"))
	f.Add([]byte("\r\r\r  \r\n"))
	f.Add([]byte{0xff, 0x20, 0x0d})

	f.Fuzz(func(t *testing.T, buf []byte) {
		req, err := ParseRequest(buf)
		if err != nil {
			if req != nil {
				t.Fatalf("request returned alongside error %v", err)
			}
			var parseErr ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T", err)
			}
			return
		}
		if req == nil {
			t.Fatal("nil request without error")
		}
	})
}

func BenchmarkRequestParse(b *testing.B) {
	reqMsg := []byte("GET /test?x=8&z=9&z=10 HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\n\r\n")

	for range b.N {
		if _, err := ParseRequest(reqMsg); err != nil {
			b.Error(err)
		}
	}
}

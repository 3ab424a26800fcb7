package http

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/freekieb7/rawhttp/test"
)

func pinNow(t *testing.T, now time.Time) {
	t.Helper()

	prev := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = prev })
}

// splitResponse returns the status line, the header lines and the body.
func splitResponse(t *testing.T, raw []byte) (string, []string, []byte) {
	t.Helper()

	head, body, found := bytes.Cut(raw, []byte("\r\n\r\n"))
	if !found {
		t.Fatalf("no header terminator in %q", raw)
	}

	lines := strings.Split(string(head), "\r\n")
	return lines[0], lines[1:], body
}

func TestResponseWithBody(t *testing.T) {
	pinNow(t, time.Date(1994, time.November, 6, 8, 49, 37, 0, time.UTC))

	res := NewResponse(StatusOK).WithBody([]byte("Hello"), "text/plain")
	statusLine, headers, body := splitResponse(t, res.Bytes())

	test.AssertEqual(t, "HTTP/1.1 200 OK", statusLine)
	test.AssertEqual(t, "Hello", string(body))

	counts := make(map[string]int)
	values := make(map[string]string)
	for _, line := range headers {
		key, value, found := strings.Cut(line, ": ")
		if !found {
			t.Fatalf("malformed header line %q", line)
		}
		counts[key]++
		values[key] = value
	}

	for _, key := range []string{HeaderEtag, HeaderDate, HeaderCacheControl, HeaderContentType, HeaderContentLength} {
		test.AssertEqual(t, 1, counts[key])
	}
	test.AssertEqual(t, 5, len(headers))
	test.AssertEqual(t, "5", values[HeaderContentLength])
	test.AssertEqual(t, "text/plain", values[HeaderContentType])
	test.AssertEqual(t, "Sun, 06 Nov 1994 08:49:37 GMT", values[HeaderDate])
	test.AssertEqual(t, "public, max-age=0, must-revalidate", values[HeaderCacheControl])
}

func TestResponseContentLengthCountsBytes(t *testing.T) {
	res := NewResponse(StatusOK).WithText("héllo wörld")

	test.AssertEqual(t, "13", res.Headers[HeaderContentLength])
}

func TestResponseDateUsesUTC(t *testing.T) {
	pinNow(t, time.Date(1994, time.November, 6, 9, 49, 37, 0, time.FixedZone("CET", 3600)))

	res := NewResponse(StatusOK).WithText("x")

	test.AssertEqual(t, "Sun, 06 Nov 1994 08:49:37 GMT", res.Headers[HeaderDate])
}

func TestResponseWithoutBody(t *testing.T) {
	res := NewResponse(StatusNoContent)

	test.AssertEqual(t, "HTTP/1.1 204 No Content\r\n\r\n", string(res.Bytes()))
}

func TestResponseEtag(t *testing.T) {
	a := NewResponse(StatusOK).WithText("same body")
	b := NewResponse(StatusCreated).WithText("same body")
	c := NewResponse(StatusOK).WithText("other body")

	test.AssertEqual(t, a.Headers[HeaderEtag], b.Headers[HeaderEtag])
	if a.Headers[HeaderEtag] == c.Headers[HeaderEtag] {
		t.Errorf("different bodies share etag %s", a.Headers[HeaderEtag])
	}

	etag := a.Headers[HeaderEtag]
	if len(etag) < 3 || etag[0] != '"' || etag[len(etag)-1] != '"' {
		t.Errorf("etag %s is not quoted", etag)
	}
}

func TestResponseAddHeader(t *testing.T) {
	res := &Response{Status: StatusOK}
	res.AddHeader("X-Request-Id", "abc")

	_, headers, _ := splitResponse(t, res.Bytes())
	test.AssertDeepEqual(t, []string{"X-Request-Id: abc"}, headers)
}

func TestResponseIsReadableByNetHTTP(t *testing.T) {
	raw := NewResponse(StatusNotFound).WithBody([]byte(`{"error":"missing"}`), "application/json").Bytes()

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(raw)), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	test.AssertNoError(t, err)
	test.AssertEqual(t, 404, resp.StatusCode)
	test.AssertEqual(t, int64(19), resp.ContentLength)
	test.AssertEqual(t, "application/json", resp.Header.Get("Content-Type"))
	test.AssertEqual(t, `{"error":"missing"}`, string(body))
}

func TestResponseWriteTo(t *testing.T) {
	res := NewResponse(StatusOK).WithText("Hello")

	var buf bytes.Buffer
	n, err := res.WriteTo(&buf)

	test.AssertNoError(t, err)
	test.AssertEqual(t, int64(buf.Len()), n)
	test.AssertEqual(t, res.String(), buf.String())
}

func TestResponseWithoutContentType(t *testing.T) {
	res := NewResponse(StatusOK).WithBody([]byte("raw"), "")

	_, found := res.Headers[HeaderContentType]
	test.AssertEqual(t, false, found)
	test.AssertEqual(t, "3", res.Headers[HeaderContentLength])
}

package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sort"
	"strconv"
	"time"
)

// TimeFormat is the IMF-fixdate layout used for the Date header.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

const (
	HeaderContentType   = "Content-Type"
	HeaderContentLength = "Content-Length"
	HeaderDate          = "Date"
	HeaderCacheControl  = "Cache-Control"
	HeaderEtag          = "Etag"

	cacheControlRevalidate = "public, max-age=0, must-revalidate"
)

var crlf = []byte("\r\n")

// nowFunc is swapped in tests to pin the Date header.
var nowFunc = time.Now

type Response struct {
	Status  StatusCode
	Headers Headers
	Body    []byte
}

func NewResponse(status StatusCode) *Response {
	return &Response{
		Status:  status,
		Headers: Headers{},
	}
}

func (res *Response) WithStatus(status StatusCode) *Response {
	res.Status = status
	return res
}

// WithBody sets the body together with the headers describing it: Etag,
// Content-Type, Content-Length, Date and Cache-Control. Content-Type is
// left out when contentType is empty.
func (res *Response) WithBody(body []byte, contentType string) *Response {
	if res.Headers == nil {
		res.Headers = Headers{}
	}

	res.Body = body
	res.Headers[HeaderEtag] = etag(body)
	if contentType != "" {
		res.Headers[HeaderContentType] = contentType
	}
	res.Headers[HeaderContentLength] = strconv.Itoa(len(body))
	res.Headers[HeaderDate] = nowFunc().UTC().Format(TimeFormat)
	res.Headers[HeaderCacheControl] = cacheControlRevalidate
	return res
}

func (res *Response) WithText(payload string) *Response {
	return res.WithBody([]byte(payload), "text/plain")
}

func (res *Response) AddHeader(key, value string) {
	if res.Headers == nil {
		res.Headers = Headers{}
	}
	res.Headers[key] = value
}

// Bytes serializes the response as it goes on the wire. Headers are
// written in sorted order so equal responses serialize identically.
func (res *Response) Bytes() []byte {
	var buf bytes.Buffer

	buf.WriteString(protocolHTTP11)
	buf.WriteByte(' ')
	buf.WriteString(res.Status.String())
	buf.WriteByte(' ')
	buf.WriteString(res.Status.ReasonPhrase())
	buf.Write(crlf)

	keys := make([]string, 0, len(res.Headers))
	for k := range res.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(res.Headers[k])
		buf.Write(crlf)
	}

	buf.Write(crlf)
	buf.Write(res.Body)

	return buf.Bytes()
}

func (res *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(res.Bytes())
	return int64(n), err
}

func (res *Response) String() string {
	return string(res.Bytes())
}

func etag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

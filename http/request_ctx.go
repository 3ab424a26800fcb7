package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"

	"github.com/google/uuid"
)

// ConnState is the lifecycle position of one accepted connection.
type ConnState uint8

const (
	StateReading ConnState = iota
	StateFramed
	StateResponding
	StateClosed
)

func (state ConnState) String() string {
	switch state {
	case StateReading:
		return "reading"
	case StateFramed:
		return "framed"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// maxRetainedBuffer caps the buffer capacity kept when a RequestCtx is
// recycled.
const maxRetainedBuffer = 64 * 1024

// RequestCtx owns everything belonging to one accepted connection: the
// socket, the bytes read so far, and the request and response built from
// them.
type RequestCtx struct {
	ID         string
	Conn       net.Conn
	ConnWriter *bufio.Writer
	State      ConnState

	Buffer   []byte
	Request  *Request
	Response *Response

	// Err is the error that ended the connection early, if any.
	Err error

	ctx     context.Context
	logger  *slog.Logger
	scratch []byte
	written bool
}

func NewRequestCtx() *RequestCtx {
	return &RequestCtx{
		ConnWriter: bufio.NewWriterSize(nil, DefaultWriteBufferSize),
		Buffer:     make([]byte, 0, DefaultReadBufferSize),
		scratch:    make([]byte, DefaultReadBufferSize),
	}
}

func (reqCtx *RequestCtx) Reset(conn net.Conn) {
	reqCtx.ID = ""
	if conn != nil {
		reqCtx.ID = uuid.NewString()
	}
	reqCtx.Conn = conn
	reqCtx.ConnWriter.Reset(conn)
	reqCtx.State = StateReading

	if cap(reqCtx.Buffer) > maxRetainedBuffer {
		reqCtx.Buffer = make([]byte, 0, DefaultReadBufferSize)
	}
	reqCtx.Buffer = reqCtx.Buffer[:0]
	reqCtx.Request = nil
	reqCtx.Response = nil
	reqCtx.Err = nil

	reqCtx.ctx = nil
	reqCtx.logger = nil
	reqCtx.written = false
}

// Context returns the context of the connection span.
func (reqCtx *RequestCtx) Context() context.Context {
	if reqCtx.ctx == nil {
		return context.Background()
	}
	return reqCtx.ctx
}

func remoteAddr(conn net.Conn) string {
	if conn == nil || conn.RemoteAddr() == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}

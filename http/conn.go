package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"
)

var headerTerminator = []byte("\r\n\r\n")

// Bounds on draining unread input after an early response, so the close
// does not reset the connection before the peer reads it.
const (
	lingerTimeout  = 500 * time.Millisecond
	lingerMaxBytes = 256 * 1024
)

type stateFunc func(s *Server, reqCtx *RequestCtx) stateFunc

// readRequest accumulates bytes until the buffer ends with the header
// terminator. A peer close, timeout or read error before that closes the
// connection without a response.
func readRequest(s *Server, reqCtx *RequestCtx) stateFunc {
	reqCtx.State = StateReading

	if s.ReadTimeout > 0 {
		if err := reqCtx.Conn.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			reqCtx.Err = err
			return closeConn
		}
	}

	for {
		n, err := reqCtx.Conn.Read(reqCtx.scratch)
		reqCtx.Buffer = append(reqCtx.Buffer, reqCtx.scratch[:n]...)

		if bytes.HasSuffix(reqCtx.Buffer, headerTerminator) {
			return parseRequest
		}

		if s.MaxRequestSize > 0 && len(reqCtx.Buffer) > s.MaxRequestSize {
			reqCtx.Err = ErrRequestTooLarge
			reqCtx.logger.Info("request exceeds size limit", slog.Int("size", len(reqCtx.Buffer)))
			reqCtx.Response = NewResponse(StatusBadRequest).WithText("Request Too Large")
			return writeResponse
		}

		if err != nil {
			reqCtx.Err = err
			switch {
			case errors.Is(err, io.EOF):
				reqCtx.logger.Debug("peer closed before request was framed", slog.Int("buffered", len(reqCtx.Buffer)))
			case errors.Is(err, os.ErrDeadlineExceeded):
				reqCtx.logger.Debug("read timed out", slog.Int("buffered", len(reqCtx.Buffer)))
			default:
				reqCtx.logger.Warn("read failed", slog.Any("error", err))
			}
			return closeConn
		}
	}
}

func parseRequest(s *Server, reqCtx *RequestCtx) stateFunc {
	reqCtx.State = StateFramed

	req, err := ParseRequest(reqCtx.Buffer)
	if err != nil {
		var parseErr ParseError
		if !errors.As(err, &parseErr) {
			parseErr = ErrInvalidRequest
		}

		reqCtx.Err = parseErr
		reqCtx.logger.Info("failed to parse request", slog.String("error", parseErr.Error()))
		s.metrics.parseErrors.Add(reqCtx.Context(), 1, parseErrorAttrs(parseErr))

		reqCtx.Response = s.OnParseFailure(parseErr)
		if reqCtx.Response == nil {
			reqCtx.Response = BadRequest(parseErr)
		}
		return writeResponse
	}

	reqCtx.Request = req
	reqCtx.Response = NewResponse(StatusOK)
	reqCtx.logger.Debug("received request",
		slog.String("method", req.Method.String()),
		slog.String("path", req.Path),
	)

	s.handler.ServeRequest(req, reqCtx.Response)
	return writeResponse
}

func writeResponse(s *Server, reqCtx *RequestCtx) stateFunc {
	reqCtx.State = StateResponding

	if s.WriteTimeout > 0 {
		if err := reqCtx.Conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout)); err != nil {
			reqCtx.logger.Warn("set write deadline failed", slog.Any("error", err))
			return closeConn
		}
	}

	if _, err := reqCtx.Response.WriteTo(reqCtx.ConnWriter); err != nil {
		reqCtx.logger.Warn("write failed", slog.Any("error", err))
		return closeConn
	}

	if err := reqCtx.ConnWriter.Flush(); err != nil {
		reqCtx.logger.Warn("flush failed", slog.Any("error", err))
		return closeConn
	}

	reqCtx.written = true
	if errors.Is(reqCtx.Err, ErrRequestTooLarge) {
		return lingerClose
	}
	return closeConn
}

// lingerClose shuts down the write side and discards what the peer is
// still sending, up to lingerMaxBytes or lingerTimeout.
func lingerClose(s *Server, reqCtx *RequestCtx) stateFunc {
	if cw, ok := reqCtx.Conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			reqCtx.logger.Debug("close write failed", slog.Any("error", err))
		}
	}

	if err := reqCtx.Conn.SetReadDeadline(time.Now().Add(lingerTimeout)); err != nil {
		return closeConn
	}

	n, _ := io.Copy(io.Discard, io.LimitReader(reqCtx.Conn, lingerMaxBytes))
	reqCtx.logger.Debug("drained unread input", slog.Int64("bytes", n))
	return closeConn
}

func closeConn(s *Server, reqCtx *RequestCtx) stateFunc {
	reqCtx.State = StateClosed

	if err := reqCtx.Conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		reqCtx.logger.Debug("close failed", slog.Any("error", err))
	}
	return nil
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaxRequestSize          = 2 * 1024 * 1024 // 2MB
	DefaultReadBufferSize   = 1024
	DefaultWriteBufferSize  = 4096 // 4kB
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 10 * time.Second
	DefaultMaxConns         = WorkerPoolSize
	instrumentationName     = "github.com/freekieb7/rawhttp/http"
	acceptInitialRetryDelay = 5 * time.Millisecond
	acceptMaxRetryDelay     = time.Second
)

// Server accepts connections and answers exactly one request on each.
type Server struct {
	Name    string
	Handler Handler

	// OnParseFailure builds the response for a request line that failed to
	// parse. Defaults to BadRequest.
	OnParseFailure ParseFailureFunc

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int
	MaxConns       int

	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	initOnce   sync.Once
	handler    Handler
	pool       *WorkerPool
	tracer     trace.Tracer
	metrics    *serverMetrics
	inShutdown atomic.Bool

	mu        sync.Mutex
	listeners map[net.Listener]struct{}

	// loops counts running Serve calls. Every pool.Go happens inside one.
	loops sync.WaitGroup
}

func NewServer(name string, handler Handler) *Server {
	return &Server{
		Name:           name,
		Handler:        handler,
		OnParseFailure: BadRequest,
		ReadTimeout:    DefaultReadTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		MaxRequestSize: MaxRequestSize,
		MaxConns:       DefaultMaxConns,
		Logger:         otelslog.NewLogger(name),
	}
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Logger == nil {
			s.Logger = otelslog.NewLogger(s.Name)
		}
		if s.Handler == nil {
			s.Handler = GreetingHandler
		}
		if s.OnParseFailure == nil {
			s.OnParseFailure = BadRequest
		}
		if s.TracerProvider == nil {
			s.TracerProvider = otel.GetTracerProvider()
		}
		if s.MeterProvider == nil {
			s.MeterProvider = otel.GetMeterProvider()
		}

		s.handler = RecoverMiddleware(s.Logger)(s.Handler)
		s.pool = NewWorkerPool(s.MaxConns)
		s.tracer = s.TracerProvider.Tracer(instrumentationName)
		s.listeners = make(map[net.Listener]struct{})

		m, err := newServerMetrics(s.MeterProvider.Meter(instrumentationName))
		if err != nil {
			s.Logger.Warn("metrics disabled", slog.Any("error", err))
			m, _ = newServerMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		}
		s.metrics = m
	})
}

// ListenAndServe binds addr and serves until ctx is done or Shutdown is
// called. A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.init()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.Logger.Info("listening", slog.String("addr", listener.Addr().String()))
	return s.Serve(ctx, listener)
}

// Serve runs the accept loop on listener. Every accepted connection is
// served on its own goroutine once a pool slot is free. Accept errors are
// logged and retried with exponential backoff.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.init()

	if !s.trackListener(listener, true) {
		listener.Close()
		return ErrServerClosed
	}
	defer s.trackListener(listener, false)

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = acceptInitialRetryDelay
	retry.MaxInterval = acceptMaxRetryDelay
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		reqCtx, err := s.pool.Acquire(ctx)
		if err != nil {
			return s.closedErr(ctx)
		}

		conn, err := listener.Accept()
		if err != nil {
			s.pool.Release(reqCtx)

			if s.inShutdown.Load() || ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return s.closedErr(ctx)
			}

			delay := retry.NextBackOff()
			s.Logger.Warn("failed to accept connection",
				slog.Any("error", err),
				slog.Duration("retry_in", delay),
			)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return s.closedErr(ctx)
			}
			continue
		}
		retry.Reset()

		reqCtx.Reset(conn)
		s.pool.Go(reqCtx, func(reqCtx *RequestCtx) {
			s.serve(ctx, reqCtx)
		})
	}
}

// ServeConn serves a single connection on the calling goroutine.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	s.init()

	reqCtx := NewRequestCtx()
	reqCtx.Reset(conn)
	s.serve(ctx, reqCtx)
}

func (s *Server) serve(ctx context.Context, reqCtx *RequestCtx) {
	start := time.Now()
	addr := remoteAddr(reqCtx.Conn)

	ctx, span := s.tracer.Start(ctx, "http.conn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("conn.id", reqCtx.ID),
			attribute.String("network.peer.address", addr),
		),
	)
	defer span.End()

	reqCtx.ctx = ctx
	reqCtx.logger = s.Logger.With(
		slog.String("conn.id", reqCtx.ID),
		slog.String("remote.addr", addr),
	)

	s.metrics.connections.Add(ctx, 1)
	s.metrics.active.Add(ctx, 1)
	defer s.metrics.active.Add(ctx, -1)

	for state := stateFunc(readRequest); state != nil; {
		state = state(s, reqCtx)
	}

	if reqCtx.Request != nil {
		span.SetAttributes(
			attribute.String("http.request.method", reqCtx.Request.Method.String()),
			attribute.String("url.path", reqCtx.Request.Path),
		)
	}

	var parseErr ParseError
	if errors.As(reqCtx.Err, &parseErr) {
		span.SetAttributes(attribute.String("http.parse_error", parseErr.Kind()))
	}

	if !reqCtx.written {
		if reqCtx.Err != nil {
			span.SetStatus(codes.Error, reqCtx.Err.Error())
		}
		return
	}

	status := reqCtx.Response.Status
	span.SetAttributes(attribute.Int("http.response.status_code", int(status)))
	if status >= StatusInternalServerError {
		span.SetStatus(codes.Error, status.ReasonPhrase())
	}

	statusAttr := metric.WithAttributes(attribute.Int("http.response.status_code", int(status)))
	s.metrics.requests.Add(ctx, 1, statusAttr)
	s.metrics.duration.Record(ctx, time.Since(start).Seconds(), statusAttr)
}

// Shutdown stops every accept loop and waits for in-flight connections to
// finish or for ctx to be done. Connections handed out by an Accept that
// raced with Shutdown are waited for too.
func (s *Server) Shutdown(ctx context.Context) error {
	s.init()

	s.mu.Lock()
	s.inShutdown.Store(true)
	for listener := range s.listeners {
		listener.Close()
	}
	s.mu.Unlock()

	if err := waitGroup(ctx, &s.loops); err != nil {
		return err
	}
	return s.pool.Wait(ctx)
}

func (s *Server) trackListener(listener net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !add {
		delete(s.listeners, listener)
		s.loops.Done()
		return true
	}
	if s.inShutdown.Load() {
		return false
	}
	s.listeners[listener] = struct{}{}
	s.loops.Add(1)
	return true
}

func (s *Server) closedErr(ctx context.Context) error {
	if s.inShutdown.Load() {
		return ErrServerClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrServerClosed
}

func parseErrorAttrs(err ParseError) metric.AddOption {
	return metric.WithAttributes(attribute.String("error.kind", err.Kind()))
}

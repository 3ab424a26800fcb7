package http

import (
	"fmt"
	"log/slog"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware answers a panicking handler with 500.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(req *Request, res *Response) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.Error("handler panicked",
						slog.String("method", req.Method.String()),
						slog.String("path", req.Path),
						slog.String("panic", fmt.Sprint(recovered)),
					)

					*res = *NewResponse(StatusInternalServerError)
					res.WithText(StatusInternalServerError.ReasonPhrase())
				}
			}()

			next.ServeRequest(req, res)
		})
	}
}

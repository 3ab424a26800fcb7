package http

import (
	"testing"

	"github.com/freekieb7/rawhttp/test"
)

func serveRouter(router *Router, method Method, path string) *Response {
	res := NewResponse(StatusOK)
	router.Handler().ServeRequest(&Request{Method: method, Path: path}, res)
	return res
}

func TestRouterDispatch(t *testing.T) {
	router := NewRouter()
	router.GET("/items", HandlerFunc(func(req *Request, res *Response) {
		res.WithText("list")
	}))
	router.POST("/items", HandlerFunc(func(req *Request, res *Response) {
		res.WithStatus(StatusCreated).WithText("created")
	}))

	res := serveRouter(&router, MethodGet, "/items")
	test.AssertEqual(t, StatusOK, res.Status)
	test.AssertEqual(t, "list", string(res.Body))

	res = serveRouter(&router, MethodPost, "/items")
	test.AssertEqual(t, StatusCreated, res.Status)
	test.AssertEqual(t, "created", string(res.Body))

	res = serveRouter(&router, MethodDelete, "/items")
	test.AssertEqual(t, StatusMethodNotAllowed, res.Status)

	res = serveRouter(&router, MethodGet, "/missing")
	test.AssertEqual(t, StatusNotFound, res.Status)
	test.AssertEqual(t, "Not Found", string(res.Body))
}

func TestRouterGroupAndMiddleware(t *testing.T) {
	var order []string
	trace := func(name string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(req *Request, res *Response) {
				order = append(order, name)
				next.ServeRequest(req, res)
			})
		}
	}

	router := NewRouter()
	router.Middleware = append(router.Middleware, trace("router"))
	router.Group("/v1", func(group *Router) {
		group.GET("/ping", HandlerFunc(func(req *Request, res *Response) {
			order = append(order, "handler")
			res.WithText("pong")
		}), trace("route"))
	}, trace("group"))

	res := serveRouter(&router, MethodGet, "/v1/ping")

	test.AssertEqual(t, "pong", string(res.Body))
	test.AssertDeepEqual(t, []string{"router", "group", "route", "handler"}, order)

	res = serveRouter(&router, MethodGet, "/ping")
	test.AssertEqual(t, StatusNotFound, res.Status)
}

func TestGreetingHandler(t *testing.T) {
	res := NewResponse(StatusOK)
	GreetingHandler.ServeRequest(&Request{Method: MethodPost, Path: "/anything"}, res)

	test.AssertEqual(t, StatusOK, res.Status)
	test.AssertEqual(t, "Hello, world!", string(res.Body))
	test.AssertEqual(t, "text/plain", res.Headers[HeaderContentType])
}

func TestBadRequest(t *testing.T) {
	res := BadRequest(ErrInvalidMethod)

	test.AssertEqual(t, StatusBadRequest, res.Status)
	test.AssertEqual(t, "Invalid Method", string(res.Body))
}

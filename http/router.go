package http

// Router dispatches on exact method and path matches.
type Router struct {
	Routes     []Route
	Middleware []Middleware
}

func NewRouter() Router {
	return Router{
		Routes: make([]Route, 0),
	}
}

func (router *Router) GET(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodGet}, path, handler, middleware...)
}

func (router *Router) HEAD(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodHead}, path, handler, middleware...)
}

func (router *Router) POST(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodPost}, path, handler, middleware...)
}

func (router *Router) PUT(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodPut}, path, handler, middleware...)
}

func (router *Router) PATCH(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodPatch}, path, handler, middleware...)
}

func (router *Router) DELETE(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodDelete}, path, handler, middleware...)
}

func (router *Router) OPTIONS(path string, handler Handler, middleware ...Middleware) {
	router.Any([]Method{MethodOptions}, path, handler, middleware...)
}

func (router *Router) Any(methods []Method, path string, handler Handler, middleware ...Middleware) {
	for _, middleware := range middleware {
		handler = middleware(handler)
	}

	router.Routes = append(router.Routes, Route{
		Methods: methods,
		Path:    path,
		Handler: handler,
	})
}

func (router *Router) Group(path string, groupFunc func(group *Router), middlewareList ...Middleware) {
	group := NewRouter()

	groupFunc(&group)

	for _, route := range group.Routes {
		route.Path = path + route.Path
		for _, middleware := range middlewareList {
			route.Handler = middleware(route.Handler)
		}

		router.Routes = append(router.Routes, route)
	}
}

// Handler returns the router as a Handler wrapped in its middleware.
func (router *Router) Handler() Handler {
	var handler Handler = HandlerFunc(router.ServeRequest)
	for _, middleware := range router.Middleware {
		handler = middleware(handler)
	}
	return handler
}

func (router *Router) ServeRequest(req *Request, res *Response) {
	handler := NotFoundHandler
	for _, route := range router.Routes {
		if route.Path != req.Path {
			continue
		}

		handler = MethodNotAllowedHandler
		for _, method := range route.Methods {
			if method == req.Method {
				route.Handler.ServeRequest(req, res)
				return
			}
		}
	}

	handler.ServeRequest(req, res)
}

package http

type Route struct {
	Methods []Method
	Path    string
	Handler Handler
}

var NotFoundHandler Handler = HandlerFunc(func(req *Request, res *Response) {
	res.WithStatus(StatusNotFound).WithText(StatusNotFound.ReasonPhrase())
})

var MethodNotAllowedHandler Handler = HandlerFunc(func(req *Request, res *Response) {
	res.WithStatus(StatusMethodNotAllowed).WithText(StatusMethodNotAllowed.ReasonPhrase())
})

package http

// Handler answers a parsed request by filling in the response. The
// response starts out as 200 OK without a body.
type Handler interface {
	ServeRequest(req *Request, res *Response)
}

type HandlerFunc func(req *Request, res *Response)

func (f HandlerFunc) ServeRequest(req *Request, res *Response) {
	f(req, res)
}

// GreetingHandler ignores the request and answers with a fixed greeting.
var GreetingHandler Handler = HandlerFunc(func(req *Request, res *Response) {
	res.WithText("Hello, world!")
})

// ParseFailureFunc builds the response sent for a request that failed to
// parse.
type ParseFailureFunc func(err ParseError) *Response

// BadRequest answers every parse failure with 400 and the error message.
func BadRequest(err ParseError) *Response {
	return NewResponse(StatusBadRequest).WithText(err.Error())
}

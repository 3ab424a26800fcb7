package http

// Method is one of the request methods the server understands.
type Method uint8

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodPut
	MethodDelete
	MethodHead
	MethodOptions
	MethodConnect
	MethodTrace
	MethodPatch
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodHead:    "HEAD",
	MethodOptions: "OPTIONS",
	MethodConnect: "CONNECT",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

// ParseMethod matches token case-sensitively against the known methods.
func ParseMethod(token string) (Method, error) {
	for m := MethodGet; m <= MethodPatch; m++ {
		if methodNames[m] == token {
			return m, nil
		}
	}
	return 0, ErrInvalidMethod
}

func (m Method) String() string {
	if m < MethodGet || m > MethodPatch {
		return "UNKNOWN"
	}
	return methodNames[m]
}

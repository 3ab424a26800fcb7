package http

import "errors"

// ParseError reports why a buffered request could not be parsed.
type ParseError uint8

const (
	ErrInvalidRequest ParseError = iota + 1
	ErrInvalidEncoding
	ErrInvalidProtocol
	ErrInvalidMethod
	ErrUnsupportedVersion
)

var parseErrorMessages = [...]string{
	ErrInvalidRequest:     "Invalid Request",
	ErrInvalidEncoding:    "Invalid Encoding",
	ErrInvalidProtocol:    "Invalid Protocol",
	ErrInvalidMethod:      "Invalid Method",
	ErrUnsupportedVersion: "HTTP Version Not Supported",
}

func (e ParseError) Error() string {
	if e < ErrInvalidRequest || e > ErrUnsupportedVersion {
		return "Unknown Parse Error"
	}
	return parseErrorMessages[e]
}

// Kind is a stable lower-case identifier used as a metric attribute.
func (e ParseError) Kind() string {
	switch e {
	case ErrInvalidRequest:
		return "invalid_request"
	case ErrInvalidEncoding:
		return "invalid_encoding"
	case ErrInvalidProtocol:
		return "invalid_protocol"
	case ErrInvalidMethod:
		return "invalid_method"
	case ErrUnsupportedVersion:
		return "unsupported_version"
	default:
		return "unknown"
	}
}

var (
	ErrServerClosed    = errors.New("http: server closed")
	ErrRequestTooLarge = errors.New("http: request too large")
)

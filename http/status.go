// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package http

import "strconv"

// StatusCode is one of the response codes the server emits.
type StatusCode uint16

const (
	StatusOK        StatusCode = 200 // RFC 7231, 6.3.1
	StatusCreated   StatusCode = 201 // RFC 7231, 6.3.2
	StatusNoContent StatusCode = 204 // RFC 7231, 6.3.5

	StatusBadRequest       StatusCode = 400 // RFC 7231, 6.5.1
	StatusUnauthorized     StatusCode = 401 // RFC 7235, 3.1
	StatusForbidden        StatusCode = 403 // RFC 7231, 6.5.3
	StatusNotFound         StatusCode = 404 // RFC 7231, 6.5.4
	StatusMethodNotAllowed StatusCode = 405 // RFC 7231, 6.5.5
	StatusNotAcceptable    StatusCode = 406 // RFC 7231, 6.5.6

	StatusInternalServerError StatusCode = 500 // RFC 7231, 6.6.1
	StatusNotImplemented      StatusCode = 501 // RFC 7231, 6.6.2
	StatusBadGateway          StatusCode = 502 // RFC 7231, 6.6.3
	StatusServiceUnavailable  StatusCode = 503 // RFC 7231, 6.6.4
)

var (
	unknownStatusCode = "Unknown Status Code"

	statusMessages = [...]string{
		StatusOK:        "OK",
		StatusCreated:   "Created",
		StatusNoContent: "No Content",

		StatusBadRequest:       "Bad Request",
		StatusUnauthorized:     "Unauthorized",
		StatusForbidden:        "Forbidden",
		StatusNotFound:         "Not Found",
		StatusMethodNotAllowed: "Method Not Allowed",
		StatusNotAcceptable:    "Not Acceptable",

		StatusInternalServerError: "Internal Server Error",
		StatusNotImplemented:      "Not Implemented",
		StatusBadGateway:          "Bad Gateway",
		StatusServiceUnavailable:  "Service Unavailable",
	}
)

// ReasonPhrase returns the canonical text for the code.
func (code StatusCode) ReasonPhrase() string {
	if int(code) >= len(statusMessages) || statusMessages[code] == "" {
		return unknownStatusCode
	}
	return statusMessages[code]
}

// Valid reports whether code belongs to the status table.
func (code StatusCode) Valid() bool {
	return int(code) < len(statusMessages) && statusMessages[code] != ""
}

func (code StatusCode) Code() uint16 {
	return uint16(code)
}

func (code StatusCode) String() string {
	return strconv.Itoa(int(code))
}

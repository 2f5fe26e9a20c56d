// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package keychain

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"aead.dev/mem"
	"github.com/minio/keychain/internal/headers"
)

// Kind classifies an Error.
type Kind int

// Error kinds.
const (
	// KeyBoundary indicates that the asymmetric key pair is
	// not usable. For example, because it does not exist or
	// the entry under its alias holds no private key.
	KeyBoundary Kind = iota + 1

	// Wrap indicates that wrapping or unwrapping the
	// symmetric key failed. For example, because the user
	// refused to confirm their presence or the key algorithm
	// is not supported.
	Wrap

	// Format indicates a malformed encrypted record or
	// wrapped key.
	Format

	// Init indicates that the store could not be initialized
	// or is no longer usable.
	Init

	// Usage indicates an invalid argument.
	Usage
)

func (k Kind) String() string {
	switch k {
	case KeyBoundary:
		return "key boundary"
	case Wrap:
		return "key wrapping"
	case Format:
		return "format"
	case Init:
		return "initialization"
	case Usage:
		return "usage"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind. errors.Is reports whether
// an error is of the sentinel's kind.
var (
	ErrKeyBoundary = &Error{kind: KeyBoundary}
	ErrWrap        = &Error{kind: Wrap}
	ErrFormat      = &Error{kind: Format}
	ErrInit        = &Error{kind: Init}
	ErrUsage       = &Error{kind: Usage}
)

// Specific errors. errors.Is reports whether an error
// has the same kind and message.
var (
	// ErrNoKeyPair is returned when the key pair does not exist
	// within the key boundary.
	ErrNoKeyPair = NewError(KeyBoundary, "keychain: key pair does not exist")

	// ErrNotPrivateKey is returned when the entry under the key
	// alias does not contain a private key.
	ErrNotPrivateKey = NewError(KeyBoundary, "keychain: key entry is not a private key entry")

	// ErrPresence is returned when a private key operation
	// requires user presence that has not been confirmed.
	ErrPresence = NewError(Wrap, "keychain: user presence required")

	// ErrReservedKey is returned when an application key
	// collides with the name of the wrapped key entry.
	ErrReservedKey = NewError(Usage, "keychain: key name is reserved")

	// ErrValueTooLarge is returned when a value, or its
	// encrypted record, exceeds the size limit.
	ErrValueTooLarge = NewError(Usage, "keychain: value is too large")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = NewError(Init, "keychain: store is closed")
)

// Error is a keychain error with a Kind and, optionally,
// an underlying cause.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// NewError returns a new Error with the given kind and message.
func NewError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// WrapError returns a new Error with the given kind and message
// that wraps err.
func WrapError(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Kind returns the kind of the error.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	msg := e.msg
	if msg == "" {
		msg = "keychain: " + e.kind.String() + " error"
	}
	if e.err != nil {
		return msg + ": " + e.err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error of the same
// kind. If target has a message, the messages must
// match as well.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.kind != t.kind {
		return false
	}
	return t.msg == "" || t.msg == e.msg
}

// Status returns the HTTP status code corresponding
// to the error kind.
func (e *Error) Status() int {
	switch e.kind {
	case Usage:
		return http.StatusBadRequest
	case Format:
		return http.StatusUnprocessableEntity
	case KeyBoundary:
		return http.StatusForbidden
	case Init:
		return http.StatusServiceUnavailable
	case Wrap:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the Kind of err if err is or wraps
// an *Error. Otherwise, it returns 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

// StatusError is an error response of a keychain server
// that does not correspond to an error kind. For example,
// a 401 Unauthorized response.
type StatusError struct {
	Code    int    // The HTTP status code
	Message string // The error message sent by the server
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "keychain: " + strings.ToLower(http.StatusText(e.Code))
	}
	return e.Message
}

// Status returns the HTTP status code.
func (e *StatusError) Status() int { return e.Code }

// ConnError is a network connection error. It is returned
// by a Client if the server is not reachable.
type ConnError struct {
	Host string // The host that couldn't be reached
	Err  error  // The underlying network error
}

func (c *ConnError) Error() string {
	return "keychain: connection error: " + c.Err.Error()
}

// Unwrap returns the underlying network error.
func (c *ConnError) Unwrap() error { return c.Err }

// Timeout reports whether the error is caused by a timeout.
func (c *ConnError) Timeout() bool {
	var netErr interface{ Timeout() bool }
	return errors.As(c.Err, &netErr) && netErr.Timeout()
}

// parseErrorResponse returns an error containing the
// response status code and error message. It returns
// an *Error if the status code corresponds to an error
// kind. Otherwise, it returns a *StatusError.
func parseErrorResponse(resp *http.Response) error {
	if resp == nil || resp.StatusCode < 400 {
		return nil
	}
	if resp.Body == nil {
		return errorFromStatus(resp.StatusCode, "")
	}
	defer resp.Body.Close()

	const MaxBodySize = 1 * mem.MiB
	body := limitBody(resp, MaxBodySize)

	contentType := strings.TrimSpace(resp.Header.Get(headers.ContentType))
	if strings.HasPrefix(contentType, headers.ContentTypeJSON) {
		type Response struct {
			Message string `json:"message"`
		}
		var response Response
		if err := json.NewDecoder(body).Decode(&response); err != nil {
			return err
		}
		return errorFromStatus(resp.StatusCode, response.Message)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, body); err != nil {
		return err
	}
	return errorFromStatus(resp.StatusCode, strings.TrimSpace(sb.String()))
}

// errorFromStatus is the inverse of Error.Status.
func errorFromStatus(code int, msg string) error {
	var kind Kind
	switch code {
	case http.StatusBadRequest:
		kind = Usage
	case http.StatusUnprocessableEntity:
		kind = Format
	case http.StatusForbidden:
		kind = KeyBoundary
	case http.StatusServiceUnavailable:
		kind = Init
	case http.StatusBadGateway:
		kind = Wrap
	default:
		return &StatusError{Code: code, Message: msg}
	}
	return NewError(kind, msg)
}

// Copyright 2026 - MinIO, Inc. All rights reserved.
// Use of this source code is governed by the AGPLv3
// license that can be found in the LICENSE file.

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"aead.dev/mem"
	"github.com/minio/keychain/internal/headers"
)

// Failf responds to the client with the given status code
// and formatted error message. Handlers should return after
// calling Failf.
func Failf(w http.ResponseWriter, code int, format string, a ...any) error {
	return fail(w, code, fmt.Sprintf(format, a...))
}

// Fail responds to the client with err. If err is or wraps
// an Error, the response status code is set to its Status.
// Otherwise, it is set to 500 Internal Server Error.
// Handlers should return after calling Fail.
//
// A keychain.Error implements Error. Hence, store errors
// are reported with the status of their kind.
func Fail(w http.ResponseWriter, err error) error {
	if e, ok := IsError(err); ok {
		return fail(w, e.Status(), err.Error())
	}
	return fail(w, http.StatusInternalServerError, err.Error())
}

func fail(w http.ResponseWriter, code int, msg string) error {
	var buf bytes.Buffer
	buf.WriteString(`{"message":`)
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	buf.WriteByte('}')

	w.Header().Set(headers.ContentType, headers.ContentTypeJSON)
	w.Header().Set(headers.ContentLength, strconv.Itoa(buf.Len()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, err := w.Write(buf.Bytes())
	return err
}

// Error is an API error.
//
// Status codes should be within 400 (inclusive) and 600 (exclusive).
// HTTP clients treat status codes between 400 and 499 as client
// errors and status codes between 500 and 599 as server errors.
type Error interface {
	error

	// Status returns the Error's HTTP status code.
	Status() int
}

// NewError returns a new Error from the given status code
// and error message.
func NewError(code int, msg string) Error {
	return &codeError{
		code: code,
		msg:  msg,
	}
}

// IsError reports whether any error in err's tree is an
// Error. It returns the first error that implements Error,
// if any.
//
// The tree consists of err itself, followed by the errors
// obtained by repeatedly unwrapping the error. When err
// wraps multiple errors, IsError examines err followed by
// a depth-first traversal of its children.
func IsError(err error) (Error, bool) {
	if err == nil {
		return nil, false
	}

	for {
		switch e := err.(type) {
		case Error:
			return e, true
		case interface{ Unwrap() error }:
			if err = e.Unwrap(); err == nil {
				return nil, false
			}
		case interface{ Unwrap() []error }:
			for _, err := range e.Unwrap() {
				if err, ok := IsError(err); ok {
					return err, true
				}
			}
			return nil, false
		default:
			return nil, false
		}
	}
}

// ReadError reads the response body into an Error using
// the response content encoding. It limits the response
// body to a reasonable size for typical error messages.
func ReadError(resp *http.Response) Error {
	const MaxSize = 5 * mem.KB // An error message should not exceed 5 KB.

	msg, err := readErrorMessage(resp, MaxSize)
	if err != nil {
		return NewError(resp.StatusCode, err.Error())
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return NewError(resp.StatusCode, msg)
}

func readErrorMessage(resp *http.Response, maxSize mem.Size) (string, error) {
	size := mem.Size(resp.ContentLength)
	if size <= 0 || size > maxSize {
		size = maxSize
	}
	body := mem.LimitReader(resp.Body, size)

	switch resp.Header.Get(headers.ContentType) {
	case headers.ContentTypeHTML, headers.ContentTypeText:
		var sb strings.Builder
		if _, err := io.Copy(&sb, body); err != nil {
			return "", err
		}
		return strings.TrimSpace(sb.String()), nil
	default:
		type ErrResponse struct {
			Message string `json:"message"`
		}
		var response ErrResponse
		if err := json.NewDecoder(body).Decode(&response); err != nil {
			return "", err
		}
		return response.Message, nil
	}
}

type codeError struct {
	code int
	msg  string
}

func (e *codeError) Error() string { return e.msg }

func (e *codeError) Status() int { return e.code }

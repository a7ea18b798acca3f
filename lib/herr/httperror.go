//
// See the file COPYRIGHT for copyright information.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package herr carries an HTTP status and a user-safe message alongside an
// internal error, and writes them out as RFC 9457 problem documents.
package herr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// ApplicationProblemMediaType is described by RFC 9457.
// https://www.rfc-editor.org/rfc/rfc9457.html
const ApplicationProblemMediaType = "application/problem+json"

// RequestIDHeader names the response header holding the request id, which
// problem documents echo as their instance.
const RequestIDHeader = "X-Request-Id"

type HTTPError struct {
	Code            int
	ResponseMessage string
	InternalErr     error
	// ExpectedError indicates that this error should happen in normal operation,
	// such as a malformed code from a client. It is not logged as an error.
	ExpectedError bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(
		"HTTP %v: ResponseMessage:'%v', InternalError:'%v'",
		e.Code, e.ResponseMessage, e.InternalErr,
	)
}

func New(code int, message string, internalErr error) *HTTPError {
	if internalErr == nil {
		internalErr = errors.New(message)
	}
	return &HTTPError{
		Code:            code,
		ResponseMessage: message,
		InternalErr:     internalErr,
	}
}

// InternalServerError returns an http.StatusInternalServerError HTTPError.
func InternalServerError(userMessage string, err error) *HTTPError {
	return New(http.StatusInternalServerError, userMessage, err)
}

// BadRequest returns an http.StatusBadRequest HTTPError.
func BadRequest(userMessage string, err error) *HTTPError {
	return New(http.StatusBadRequest, userMessage, err)
}

// From wraps the InternalErr with the name of the function that returned it,
// e.g. err.From("[Resolve]").
func (e *HTTPError) From(source string) *HTTPError {
	return &HTTPError{
		InternalErr:     fmt.Errorf("%v: %w", source, e.InternalErr),
		Code:            e.Code,
		ResponseMessage: e.ResponseMessage,
		ExpectedError:   e.ExpectedError,
	}
}

func (e *HTTPError) SetExpectedError() *HTTPError {
	e.ExpectedError = true
	return e
}

func (e *HTTPError) Unwrap() error {
	return e.InternalErr
}

// WriteResponse logs the error, unless it is expected, and writes it as a
// problem document. Only the ResponseMessage reaches the client.
func (e *HTTPError) WriteResponse(w http.ResponseWriter) {
	requestID := w.Header().Get(RequestIDHeader)
	if !e.ExpectedError {
		slog.Error("Writing error HTTP response",
			"code", e.Code,
			"message", e.ResponseMessage,
			"internalError", e.InternalErr,
			"requestID", requestID,
		)
	}

	p := Problem{
		Title:     http.StatusText(e.Code),
		Status:    e.Code,
		Detail:    e.ResponseMessage,
		Timestamp: time.Now(),
	}
	if requestID != "" {
		p.Instance = "urn:uuid:" + requestID
	}

	// Write headers, write status, write body
	w.Header().Set("Content-Type", ApplicationProblemMediaType)
	w.WriteHeader(e.Code)

	marshalled, err := json.Marshal(p)
	if err != nil {
		slog.Error("Failed to marshal problem response", "err", err)
		marshalled = []byte(`{"detail":"Failed to marshal problem response"}`)
	}
	_, _ = w.Write(marshalled)
}

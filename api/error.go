// MIT License
//
// Copyright (c) 2023 Lack
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	json "github.com/json-iterator/go"
)

type StatusCode int32

func (c StatusCode) String() string {
	switch c {
	case StatusClientException:
		return "Custom Client Exception"
	case StatusServerException:
		return "Custom Server Exception"
	}
	return http.StatusText(int(c))
}

const (
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusCancel              StatusCode = 408
	StatusConflict            StatusCode = 409
	StatusRequestTooLarge     StatusCode = 413
	StatusUnsupportedMedia    StatusCode = 415
	StatusTooManyRequests     StatusCode = 429
	StatusClientException     StatusCode = 499
	StatusInternalServerError StatusCode = 500
	StatusServerException     StatusCode = 599
)

// Error is the body of every failed HTTP response.
type Error struct {
	Code   int32  `json:"code"`
	Detail string `json:"detail,omitempty"`
	Status string `json:"status,omitempty"`
	Caller string `json:"caller,omitempty"`
}

// New generates a custom error.
func New(detail string, code StatusCode) *Error {
	e := &Error{
		Code:   int32(code),
		Detail: detail,
		Status: code.String(),
	}
	return e
}

func (e *Error) WithCode(code StatusCode) *Error {
	e.Code = int32(code)
	e.Status = code.String()
	return e
}

// WithCaller fills Error.Caller
func (e *Error) WithCaller() *Error {
	_, file, line, _ := runtime.Caller(1)
	if index := strings.Index(file, "/src/"); index != -1 {
		file = file[index+5:]
	}
	file = strings.Replace(file, string(filepath.Separator), "/", -1)
	e.Caller = fmt.Sprintf("%s:%d", file, line)
	return e
}

func (e Error) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// HTTPStatus is the status line code for e. Custom exceptions map to the
// nearest standard code.
func (e *Error) HTTPStatus() int {
	switch StatusCode(e.Code) {
	case StatusClientException:
		return http.StatusBadRequest
	case StatusServerException:
		return http.StatusInternalServerError
	case 0:
		return http.StatusOK
	}
	if http.StatusText(int(e.Code)) == "" {
		return http.StatusInternalServerError
	}
	return int(e.Code)
}

// Parse tries to parse a JSON string into an error. If that
// fails, it will set the given string as the error detail.
func Parse(err string) *Error {
	e := new(Error)
	errr := json.Unmarshal([]byte(err), e)
	if errr != nil {
		e.Detail = err
	}
	return e
}

// BadRequest generates a 400 error.
func BadRequest(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusBadRequest)
}

// NotFound generates a 404 error.
func NotFound(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusNotFound)
}

// MethodNotAllowed generates a 405 error.
func MethodNotAllowed(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusMethodNotAllowed)
}

// Cancel generates a 408 error.
func Cancel(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusCancel)
}

// Conflict generates a 409 error.
func Conflict(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusConflict)
}

// RequestTooLarge generates a 413 error.
func RequestTooLarge(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusRequestTooLarge)
}

// UnsupportedMedia generates a 415 error.
func UnsupportedMedia(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusUnsupportedMedia)
}

// TooManyRequests generates a 429 error.
func TooManyRequests(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusTooManyRequests)
}

// ClientException generates a custom client exception.
func ClientException(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusClientException)
}

// InternalServerError generates a 500 error.
func InternalServerError(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusInternalServerError)
}

// ServerException generates a custom server exception
func ServerException(format string, a ...interface{}) *Error {
	return New(fmt.Sprintf(format, a...), StatusServerException)
}

// Equal tries to compare errors
func Equal(err1 error, err2 error) bool {
	verr1, ok1 := err1.(*Error)
	verr2, ok2 := err2.(*Error)

	if ok1 != ok2 {
		return false
	}

	if !ok1 {
		return err1 == err2
	}

	if verr1.Code != verr2.Code {
		return false
	}

	return true
}

// FromErr try to convert go error go *Error
func FromErr(err error) *Error {
	if err == nil {
		return nil
	}

	var verr *Error
	if errors.As(err, &verr) && verr != nil {
		return verr
	}

	e := Parse(err.Error())
	if e.Code == 0 {
		e.WithCode(StatusInternalServerError)
	}
	return e
}

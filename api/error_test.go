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
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorJSON(t *testing.T) {
	e := BadRequest("invalid zoom %d", 30)
	assert.Equal(t, int32(400), e.Code)
	assert.Equal(t, "Bad Request", e.Status)
	assert.JSONEq(t, `{"code":400,"detail":"invalid zoom 30","status":"Bad Request"}`, e.Error())

	parsed := Parse(e.Error())
	assert.Equal(t, e, parsed)
	assert.True(t, Equal(e, parsed))
	assert.False(t, Equal(e, NotFound("x")))
}

func TestWithCaller(t *testing.T) {
	e := InternalServerError("boom").WithCaller()
	assert.True(t, strings.Contains(e.Caller, "error_test.go:"), e.Caller)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("session"), http.StatusNotFound},
		{ClientException("x"), http.StatusBadRequest},
		{ServerException("x"), http.StatusInternalServerError},
		{New("x", StatusCode(777)), http.StatusInternalServerError},
		{RequestTooLarge("x"), http.StatusRequestEntityTooLarge},
		{UnsupportedMedia("x"), http.StatusUnsupportedMediaType},
		{Cancel("x"), http.StatusRequestTimeout},
	}

	for i, tt := range tests {
		assert.Equalf(t, tt.want, tt.err.HTTPStatus(), "#%d", i)
	}
}

func TestFromErr(t *testing.T) {
	assert.Nil(t, FromErr(nil))

	e := Conflict("exists")
	assert.Same(t, e, FromErr(fmt.Errorf("wrapped: %w", e)))

	plain := FromErr(fmt.Errorf("disk full"))
	assert.Equal(t, int32(StatusInternalServerError), plain.Code)
	assert.Equal(t, "disk full", plain.Detail)
}

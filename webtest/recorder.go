// Copyright 2024 The statichost authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

/*
Package webtest supports testing the serving layer: a response recorder that
fails the test on superfluous WriteHeader calls, plus a one-shot GET helper
for driving a handler through it.
*/
package webtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Recorder wraps httptest.ResponseRecorder in order to fail tests doing
// superfluous WriteHeader calls.
type Recorder struct {
	*httptest.ResponseRecorder
	wroteHeader bool
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *Recorder {
	return &Recorder{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do
// superfluous WriteHeader calls.
func (w *Recorder) WriteHeader(code int) {
	GinkgoHelper()
	Expect(w.wroteHeader).To(BeFalse(), "superfluous response.WriteHeader call")
	w.wroteHeader = true
	w.ResponseRecorder.WriteHeader(code)
}

// Get drives the handler with a GET request for the given path, carrying the
// optional headers, and returns the recorded response.
func Get(h http.Handler, reqPath string, header http.Header) *Recorder {
	GinkgoHelper()
	u, err := url.Parse("http://statichost.test" + reqPath)
	Expect(err).NotTo(HaveOccurred())
	r := &http.Request{
		Method: http.MethodGet,
		URL:    u,
		Header: header,
	}
	w := NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// Package models provides the core data structures for handling webhook requests and responses.
package models

import "strings"

// Request represents an incoming client request. Header keys are lower-cased.
type Request struct {
	Method  string
	Path    string
	Body    []byte
	Headers map[string]string
}

// Header returns the value of a header, looked up case-insensitively.
func (r Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// NormaliseHeaders lower-cases header keys, keeping the first value of repeated headers.
func NormaliseHeaders[V string | []string](in map[string]V) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch vt := any(v).(type) {
		case string:
			out[strings.ToLower(k)] = vt
		case []string:
			if len(vt) > 0 {
				out[strings.ToLower(k)] = vt[0]
			}
		}
	}
	return out
}

// Response defines the structure for an HTTP response containing a body, headers, and a status code.
type Response struct {
	Body       string
	Outcome    string
	Headers    map[string]string
	StatusCode int
}

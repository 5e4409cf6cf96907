package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/isometry/netbox-catalyst-bridge/internal/models"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

type httpResponse struct {
	Message string `json:"message"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Envelope renders response and err as the JSON body returned to webhook senders.
// A zero status code becomes 200 and a JSON content type is set unless one is present.
func Envelope(response models.Response, err error) models.Response {
	hR := httpResponse{
		Message: response.Body,
		Outcome: response.Outcome,
	}
	if err != nil {
		hR.Error = err.Error()
	}
	respBody, _ := json.Marshal(hR)

	out := models.Response{
		Body:       string(respBody),
		Outcome:    response.Outcome,
		StatusCode: response.StatusCode,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
	}
	if out.StatusCode == 0 {
		out.StatusCode = http.StatusOK
	}
	for k, v := range response.Headers {
		out.Headers[http.CanonicalHeaderKey(k)] = v
	}
	return out
}

// Text returns a plain-text response.
func Text(statusCode int, body string) models.Response {
	return models.Response{
		Body:       body,
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": contentTypeText},
	}
}

// Write sends a wire-ready response.
func Write(rw http.ResponseWriter, response models.Response) {
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(response.Body))
}

// RespondHTTP writes the JSON envelope of response and err.
func RespondHTTP(response models.Response, err error, rw http.ResponseWriter) {
	Write(rw, Envelope(response, err))
}

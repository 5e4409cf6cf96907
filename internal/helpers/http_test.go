package helpers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isometry/netbox-catalyst-bridge/internal/helpers"
	"github.com/isometry/netbox-catalyst-bridge/internal/models"
	"github.com/stretchr/testify/assert"
)

type testCase struct {
	Name     string
	Response models.Response
	Error    error
	Expected expectedResponse
}

type expectedResponse struct {
	StatusCode int
	Body       string
	Header     string
}

func TestRespondHTTP(t *testing.T) {
	testCases := []testCase{
		{
			Name: "with_valid_response_and_no_error",
			Response: models.Response{
				StatusCode: http.StatusOK,
				Body:       "interface updated",
				Outcome:    "Updated",
			},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       `"outcome":"Updated"`,
				Header:     "application/json",
			},
		},
		{
			Name: "with_custom_content_type",
			Response: models.Response{
				StatusCode: http.StatusAccepted,
				Body:       "accepted",
				Headers:    map[string]string{"Content-Type": "application/vnd.test+json"},
			},
			Expected: expectedResponse{
				StatusCode: http.StatusAccepted,
				Body:       "accepted",
				Header:     "application/vnd.test+json",
			},
		},
		{
			Name: "with_valid_response_and_error",
			Response: models.Response{
				StatusCode: http.StatusBadGateway,
				Body:       "controller unavailable",
			},
			Error: errors.New("connection refused"),
			Expected: expectedResponse{
				StatusCode: http.StatusBadGateway,
				Body:       "controller unavailable",
				Header:     "application/json",
			},
		},
		{
			Name:     "with_empty_response_and_no_error",
			Response: models.Response{},
			Expected: expectedResponse{
				StatusCode: http.StatusOK,
				Body:       `"message":""`,
				Header:     "application/json",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rw := httptest.NewRecorder()

			helpers.RespondHTTP(tc.Response, tc.Error, rw)

			assert.Equal(t, tc.Expected.StatusCode, rw.Code)
			assert.Equal(t, tc.Expected.Header, rw.Header().Get("Content-Type"))
			assert.Contains(t, rw.Body.String(), tc.Expected.Body)
			if tc.Error != nil {
				assert.Contains(t, rw.Body.String(), tc.Error.Error())
			} else {
				assert.NotContains(t, rw.Body.String(), `"error"`)
			}
		})
	}
}

func TestText(t *testing.T) {
	rw := httptest.NewRecorder()
	helpers.Write(rw, helpers.Text(http.StatusOK, "ok"))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "ok", rw.Body.String())
	assert.Contains(t, rw.Header().Get("Content-Type"), "text/plain")
}

func TestEnvelope(t *testing.T) {
	out := helpers.Envelope(models.Response{Body: "no-op", Outcome: "NoOp"}, nil)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.JSONEq(t, `{"message":"no-op","outcome":"NoOp"}`, out.Body)
	assert.Equal(t, "application/json", out.Headers["Content-Type"])
}

package catalyst_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isometry/netbox-catalyst-bridge/internal/bridge"
	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIntent = &bridge.UpdateIntent{ResourceID: "3f0e5c1e-8d5b-4a56-9f4b-1b2c3d4e5f60", Description: "uplink to core-1"}

func TestNewController(t *testing.T) {
	testCases := []struct {
		Name    string
		Options []catalyst.Option
	}{
		{Name: "missing_host"},
		{Name: "host_without_scheme", Options: []catalyst.Option{catalyst.WithHost("dnac.example.net")}},
		{Name: "unknown_variant", Options: []catalyst.Option{catalyst.WithHost("https://dnac.example.net"), catalyst.WithInterfacePath("physical")}},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := catalyst.NewController(tc.Options...)
			assert.Error(t, err)
		})
	}
}

func TestInterfaceURL(t *testing.T) {
	testCases := []struct {
		Name     string
		Host     string
		Options  []catalyst.Option
		ID       string
		Expected string
	}{
		{
			Name:     "generic_deploy",
			Host:     "https://dnac.example.net/",
			ID:       "u-1",
			Expected: "https://dnac.example.net/dna/intent/api/v1/interface/u-1?deploymentMode=Deploy",
		},
		{
			Name:     "wireless_preview",
			Host:     "https://dnac.example.net",
			Options:  []catalyst.Option{catalyst.WithInterfacePath("wireless"), catalyst.WithDeploymentMode("Preview")},
			ID:       "u-1",
			Expected: "https://dnac.example.net/dna/intent/api/v1/wirelessSettings/interfaces/u-1?deploymentMode=Preview",
		},
		{
			Name:     "escaped_identifier",
			Host:     "https://dnac.example.net",
			ID:       "a/b",
			Expected: "https://dnac.example.net/dna/intent/api/v1/interface/a%2Fb?deploymentMode=Deploy",
		},
		{
			Name:     "no_deployment_mode",
			Host:     "https://dnac.example.net",
			Options:  []catalyst.Option{catalyst.WithDeploymentMode("")},
			ID:       "u-1",
			Expected: "https://dnac.example.net/dna/intent/api/v1/interface/u-1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctl := newTestController(t, tc.Host, tc.Options...)
			assert.Equal(t, tc.Expected, ctl.InterfaceURL(tc.ID))
		})
	}
}

func TestUpdateInterface(t *testing.T) {
	testCases := []struct {
		Name             string
		Statuses         []int
		ExpectedOutcome  bridge.Outcome
		ExpectedUpdates  int32
		ExpectedLogins   int32
		ExpectedHTTPCode int
	}{
		{
			Name:             "accepted",
			Statuses:         []int{http.StatusAccepted},
			ExpectedOutcome:  bridge.Updated,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusOK,
		},
		{
			Name:             "ok",
			Statuses:         []int{http.StatusOK},
			ExpectedOutcome:  bridge.Updated,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusOK,
		},
		{
			Name:             "not_modified",
			Statuses:         []int{http.StatusNotModified},
			ExpectedOutcome:  bridge.NoOp,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusOK,
		},
		{
			Name:             "expired_token_is_renewed_once",
			Statuses:         []int{http.StatusUnauthorized, http.StatusAccepted},
			ExpectedOutcome:  bridge.Updated,
			ExpectedUpdates:  2,
			ExpectedLogins:   2,
			ExpectedHTTPCode: http.StatusOK,
		},
		{
			Name:             "second_unauthorized_is_fatal",
			Statuses:         []int{http.StatusUnauthorized, http.StatusUnauthorized},
			ExpectedOutcome:  bridge.AuthError,
			ExpectedUpdates:  2,
			ExpectedLogins:   2,
			ExpectedHTTPCode: http.StatusUnprocessableEntity,
		},
		{
			Name:             "second_forbidden_is_fatal",
			Statuses:         []int{http.StatusForbidden, http.StatusForbidden},
			ExpectedOutcome:  bridge.AuthError,
			ExpectedUpdates:  2,
			ExpectedLogins:   2,
			ExpectedHTTPCode: http.StatusUnprocessableEntity,
		},
		{
			Name:             "not_found_is_not_retried",
			Statuses:         []int{http.StatusNotFound},
			ExpectedOutcome:  bridge.NotFound,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusUnprocessableEntity,
		},
		{
			Name:             "server_error_is_retryable",
			Statuses:         []int{http.StatusServiceUnavailable},
			ExpectedOutcome:  bridge.Retryable,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusBadGateway,
		},
		{
			Name:             "throttled_is_retryable",
			Statuses:         []int{http.StatusTooManyRequests},
			ExpectedOutcome:  bridge.Retryable,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusBadGateway,
		},
		{
			Name:             "bad_request_is_rejected",
			Statuses:         []int{http.StatusBadRequest},
			ExpectedOutcome:  bridge.Rejected,
			ExpectedUpdates:  1,
			ExpectedLogins:   1,
			ExpectedHTTPCode: http.StatusUnprocessableEntity,
		},
		{
			Name:             "renewal_then_not_found",
			Statuses:         []int{http.StatusUnauthorized, http.StatusNotFound},
			ExpectedOutcome:  bridge.NotFound,
			ExpectedUpdates:  2,
			ExpectedLogins:   2,
			ExpectedHTTPCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			mock := &mockCatalyst{UpdateStatuses: tc.Statuses}
			ctl := newTestController(t, mock.Start(t).URL)

			token, err := ctl.Token(context.Background(), false)
			require.NoError(t, err)

			res, err := ctl.UpdateInterface(context.Background(), testIntent, token)
			require.NotNil(t, res)
			assert.Equal(t, tc.ExpectedOutcome, res.Outcome)
			assert.EqualValues(t, tc.ExpectedUpdates, res.Attempts)
			assert.Equal(t, tc.ExpectedUpdates, mock.updates.Load())
			assert.Equal(t, tc.ExpectedLogins, mock.logins.Load())

			outcome, stage := bridge.Classify(err)
			if tc.ExpectedOutcome == bridge.Updated || tc.ExpectedOutcome == bridge.NoOp {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tc.ExpectedOutcome, outcome)
				assert.Equal(t, bridge.StageUpdate, stage)
			}
			assert.Equal(t, tc.ExpectedHTTPCode, tc.ExpectedOutcome.StatusCode(bridge.StageUpdate))
		})
	}
}

func TestUpdateInterface_Request(t *testing.T) {
	testCases := []struct {
		Name          string
		Options       []catalyst.Option
		ExpectedPath  string
		ExpectedQuery string
	}{
		{
			Name:          "generic",
			ExpectedPath:  catalyst.GenericInterfacePath + testIntent.ResourceID,
			ExpectedQuery: "deploymentMode=Deploy",
		},
		{
			Name:          "wireless_preview",
			Options:       []catalyst.Option{catalyst.WithInterfacePath("wireless"), catalyst.WithDeploymentMode("Preview")},
			ExpectedPath:  catalyst.WirelessInterfacePath + testIntent.ResourceID,
			ExpectedQuery: "deploymentMode=Preview",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			mock := &mockCatalyst{}
			ctl := newTestController(t, mock.Start(t).URL, tc.Options...)

			token, err := ctl.Token(context.Background(), false)
			require.NoError(t, err)
			res, err := ctl.UpdateInterface(context.Background(), testIntent, token)
			require.NoError(t, err)
			assert.Equal(t, "task-1", res.TaskID)
			assert.Equal(t, http.StatusAccepted, res.StatusCode)

			records := mock.Records()
			require.Len(t, records, 1)
			assert.Equal(t, tc.ExpectedPath, records[0].Path)
			assert.Equal(t, tc.ExpectedQuery, records[0].Query)
			assert.Equal(t, "token-1", records[0].Token)
			assert.Equal(t, testIntent.Description, records[0].Description)
		})
	}
}

func TestUpdateInterface_RenewedTokenIsUsed(t *testing.T) {
	mock := &mockCatalyst{UpdateStatuses: []int{http.StatusUnauthorized, http.StatusAccepted}}
	ctl := newTestController(t, mock.Start(t).URL)

	token, err := ctl.Token(context.Background(), false)
	require.NoError(t, err)
	_, err = ctl.UpdateInterface(context.Background(), testIntent, token)
	require.NoError(t, err)

	records := mock.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "token-1", records[0].Token)
	assert.Equal(t, "token-2", records[1].Token)

	session, ok := ctl.CurrentSession()
	require.True(t, ok)
	assert.Equal(t, "token-2", session.Token)
}

func TestUpdateInterface_RenewalFailure(t *testing.T) {
	mock := &mockCatalyst{UpdateStatuses: []int{http.StatusUnauthorized}}
	ctl := newTestController(t, mock.Start(t).URL)

	token, err := ctl.Token(context.Background(), false)
	require.NoError(t, err)

	ctl.SetCredentials(catalyst.Credentials{Username: testUser, Password: "rotated-elsewhere"})
	res, err := ctl.UpdateInterface(context.Background(), testIntent, token)
	outcome, stage := bridge.Classify(err)
	assert.Equal(t, bridge.AuthError, outcome)
	assert.Equal(t, bridge.StageUpdate, stage)
	assert.Equal(t, 1, res.Attempts)
}

func TestUpdateInterface_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	ctl := newTestController(t, host)
	res, err := ctl.UpdateInterface(context.Background(), testIntent, "token")
	outcome, stage := bridge.Classify(err)
	assert.Equal(t, bridge.Retryable, outcome)
	assert.Equal(t, bridge.StageUpdate, stage)
	assert.Equal(t, bridge.Retryable, res.Outcome)
}

func TestUpdateInterface_DetachedFromCallerCancellation(t *testing.T) {
	mock := &mockCatalyst{}
	ctl := newTestController(t, mock.Start(t).URL)

	token, err := ctl.Token(context.Background(), false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := ctl.UpdateInterface(ctx, testIntent, token)
	require.NoError(t, err)
	assert.Equal(t, bridge.Updated, res.Outcome)
}

package catalyst_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/isometry/netbox-catalyst-bridge/internal/controllers/catalyst"
)

const (
	testUser = "admin"
	testPass = "secret"
)

type recordedUpdate struct {
	Path        string
	Query       string
	Token       string
	Description string
}

// mockCatalyst is a minimal Catalyst Center serving the login and interface update routes.
type mockCatalyst struct {
	LoginStatus    int
	LoginBody      string
	LoginDelay     time.Duration
	UpdateStatuses []int

	logins  atomic.Int32
	updates atomic.Int32

	mu      sync.Mutex
	records []recordedUpdate
}

func (m *mockCatalyst) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+catalyst.AuthPath, func(w http.ResponseWriter, r *http.Request) {
		n := m.logins.Add(1)
		if m.LoginDelay > 0 {
			time.Sleep(m.LoginDelay)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != testUser || pass != testPass {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if m.LoginStatus != 0 {
			w.WriteHeader(m.LoginStatus)
		}
		if m.LoginBody != "" {
			_, _ = io.WriteString(w, m.LoginBody)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"Token": fmt.Sprintf("token-%d", n)})
	})
	update := func(w http.ResponseWriter, r *http.Request) {
		n := int(m.updates.Add(1))
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		m.mu.Lock()
		m.records = append(m.records, recordedUpdate{
			Path:        r.URL.Path,
			Query:       r.URL.RawQuery,
			Token:       r.Header.Get(catalyst.AuthTokenHeader),
			Description: body.Description,
		})
		m.mu.Unlock()

		status := http.StatusAccepted
		if len(m.UpdateStatuses) > 0 {
			status = m.UpdateStatuses[min(n, len(m.UpdateStatuses))-1]
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 200 && status <= 299 {
			_, _ = io.WriteString(w, `{"response":{"taskId":"task-1","url":"/api/v1/task/task-1"},"version":"1.0"}`)
		}
	}
	mux.HandleFunc("PUT "+catalyst.GenericInterfacePath+"{id}", update)
	mux.HandleFunc("PUT "+catalyst.WirelessInterfacePath+"{id}", update)
	return mux
}

func (m *mockCatalyst) Records() []recordedUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedUpdate(nil), m.records...)
}

func (m *mockCatalyst) Start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(m.handler())
	t.Cleanup(srv.Close)
	return srv
}

func newTestController(t *testing.T, host string, opts ...catalyst.Option) *catalyst.Controller {
	t.Helper()
	ctl, err := catalyst.NewController(append([]catalyst.Option{
		catalyst.WithHost(host),
		catalyst.WithCredentials(testUser, testPass),
		catalyst.WithTimeouts(2*time.Second, 2*time.Second),
	}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create controller: %v", err)
	}
	return ctl
}


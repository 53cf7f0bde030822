package runner

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rflorenc/devops-auth-check/internal/config"
	"github.com/rflorenc/devops-auth-check/internal/console"
	"github.com/rflorenc/devops-auth-check/internal/credential"
)

type okPinger struct{ hosts []string }

func (p *okPinger) Ping(ctx context.Context, host string) error {
	p.hosts = append(p.hosts, host)
	return nil
}

type stubProvider struct{ token string }

func (s stubProvider) Name() string { return "Stub CLI" }
func (s stubProvider) LoginHint() string { return "run 'stub login'" }
func (s stubProvider) IsAvailable(ctx context.Context) error { return nil }
func (s stubProvider) IsAuthenticated(ctx context.Context) (*credential.Session, error) {
	return &credential.Session{User: "dev@example.com"}, nil
}
func (s stubProvider) AcquireToken(ctx context.Context, resource string) (string, error) {
	return s.token, nil
}

type apiServer struct {
	*httptest.Server
	calls      int
	authHeader string

	accountsStatus int
}

func newAPIServer(t *testing.T, profileStatus int, profileBody, accountsBody string) *apiServer {
	t.Helper()
	s := &apiServer{accountsStatus: http.StatusOK}
	r := chi.NewRouter()
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.authHeader = r.Header.Get("Authorization")
		w.WriteHeader(profileStatus)
		w.Write([]byte(profileBody))
	})
	r.Get("/accounts", func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		w.WriteHeader(s.accountsStatus)
		w.Write([]byte(accountsBody))
	})
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func newRunner(srv *apiServer, input string, snap config.Snapshot) (*Runner, *observer.ObservedLogs, *okPinger) {
	core, logs := observer.New(zap.DebugLevel)
	pinger := &okPinger{}
	cfg := &config.Config{
		IdentityURL:  srv.URL + "/me",
		AccountsURL:  srv.URL + "/accounts",
		APIVersion:   "6.0",
		Timeout:      5 * time.Second,
		ProbeHosts:   []string{"dev.azure.com", "app.vssps.visualstudio.com"},
		ProbeTimeout: time.Second,
		Resource:     config.DefaultResource,
	}
	return &Runner{
		Config:   cfg,
		Snapshot: snap,
		Console:  console.New(strings.NewReader(input), &bytes.Buffer{}),
		Pinger:   pinger,
		Provider: stubProvider{token: "delegated-token"},
		Logger:   zap.New(core),
	}, logs, pinger
}

const accountsBody = `{"value":[{"accountName":"org1"},{"accountName":"org2"}]}`

func TestRun_StaticToken(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	snap := config.NewSnapshot(map[string]string{config.KeyOrgURL: "https://dev.azure.com/org2"})
	r, logs, pinger := newRunner(srv, "1\nabc123\n", snap)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, srv.calls)
	assert.Equal(t, credential.BasicAuthHeader("abc123"), srv.authHeader)
	assert.Equal(t, []string{"dev.azure.com", "app.vssps.visualstudio.com"}, pinger.hosts)
	assert.Equal(t, 1, logs.FilterMessage("Organizations").Len())
	assert.Equal(t, 1, logs.FilterMessage("Configured organization is accessible").Len())
}

func TestRun_DelegatedToken(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	r, _, _ := newRunner(srv, "2\n", config.NewSnapshot(nil))

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, "Bearer delegated-token", srv.authHeader)
}

func TestRun_InvalidChoiceMakesNoCalls(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	r, logs, _ := newRunner(srv, "3\n", config.NewSnapshot(nil))

	err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, 0, srv.calls)
	assert.Equal(t, 1, logs.FilterMessage("Invalid choice").Len())
}

func TestRun_MissingCredential(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	r, _, _ := newRunner(srv, "1\n\n", config.NewSnapshot(nil))

	assert.ErrorIs(t, r.Run(context.Background()), credential.ErrMissingCredential)
	assert.Equal(t, 0, srv.calls)
}

func TestRun_IdentityFailureSkipsAccounts(t *testing.T) {
	srv := newAPIServer(t, http.StatusUnauthorized, `{"message":"denied"}`, accountsBody)
	r, logs, _ := newRunner(srv, "1\nabc123\n", config.NewSnapshot(nil))

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, srv.calls, "only the identity call is made")
	assert.Equal(t, 1, logs.FilterMessageSnippet("Cannot test account listing").Len())
}

func TestRun_OrganizationNotFound(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	snap := config.NewSnapshot(map[string]string{config.KeyOrgURL: "https://tailspin.visualstudio.com"})
	r, logs, _ := newRunner(srv, "1\nabc123\n", snap)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Configured organization not in account list").Len())
}

func TestRun_AccountsFailureSkipsOrganizationReport(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, `{"message":"denied"}`)
	srv.accountsStatus = http.StatusUnauthorized
	snap := config.NewSnapshot(map[string]string{config.KeyOrgURL: "https://dev.azure.com/org2"})
	r, logs, _ := newRunner(srv, "1\nabc123\n", snap)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, srv.calls)
	assert.Equal(t, 0, logs.FilterMessage("Configured organization not in account list").Len())
	assert.Equal(t, 0, logs.FilterMessage("Configured organization is accessible").Len())
}

func TestRun_EnvironmentSummary(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)

	t.Run("all set", func(t *testing.T) {
		snap := config.NewSnapshot(map[string]string{
			config.KeyOrgURL:         "https://dev.azure.com/org1",
			config.KeyAuthMethod:     "pat",
			config.KeyToken:          strings.Repeat("a", 52),
			config.KeyDefaultProject: "web",
		})
		r, logs, _ := newRunner(srv, "\n\n", snap)
		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, 1, logs.FilterMessage("All configuration keys are set").Len())
		assert.Equal(t, 0, logs.FilterMessage("Some configuration keys are not set").Len())
	})

	t.Run("missing keys", func(t *testing.T) {
		r, logs, _ := newRunner(srv, "3\n", config.NewSnapshot(nil))
		assert.ErrorIs(t, r.Run(context.Background()), ErrStopped)
		assert.Equal(t, 0, logs.FilterMessage("All configuration keys are set").Len())
		assert.Equal(t, 1, logs.FilterMessage("Some configuration keys are not set").Len())
	})
}

func TestRun_CancelDuringPrompt(t *testing.T) {
	srv := newAPIServer(t, http.StatusOK, `{"publicAlias":"xyz"}`, accountsBody)
	r, _, _ := newRunner(srv, "", config.NewSnapshot(nil))
	pr, pw := io.Pipe()
	defer pw.Close()
	r.Console = console.New(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the context was cancelled")
	}
	assert.Equal(t, 0, srv.calls)
}

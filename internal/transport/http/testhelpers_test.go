package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
	"hiring-contest-service/internal/infra/memory"
	"hiring-contest-service/internal/logging"
	"hiring-contest-service/internal/metrics"
	"hiring-contest-service/internal/suggest"
)

type testEnv struct {
	server *httptest.Server
	tokens *TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logging.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	jobs := memory.NewJobStore()
	users := memory.NewUserStore()
	contests := app.NewContestService(
		memory.NewJobCache(jobs, jobs, time.Minute),
		memory.NewSubmissionStore(),
		users,
		memory.NewAttemptStore(),
		app.WithLogger(log),
		app.WithMetrics(m),
	)
	accounts := app.NewAccountService(users, log, app.WithPasswordCost(bcrypt.MinCost))
	suggestions := app.NewSuggestionService(suggest.Offline{}, time.Second, log, m)
	tokens := NewTokenIssuer("test-secret", time.Hour)

	handler := NewHandler(contests, accounts, suggestions, tokens, log)
	ws := NewWSHandler(contests, 20*time.Millisecond, log)
	server := httptest.NewServer(NewRouter(handler, ws, reg))
	t.Cleanup(server.Close)
	return &testEnv{server: server, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func (e *testEnv) signUp(t *testing.T, email string, role domain.Role) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/signup", "", credentialsRequest{Email: email, Password: "pw", Role: role})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d", email, resp.StatusCode)
	}
	return decode[authResponse](t, resp).Token
}

func (e *testEnv) createJob(t *testing.T, token string) domain.Job {
	t.Helper()
	now := time.Now()
	resp := e.do(t, http.MethodPost, "/api/jobs", token, jobRequest{
		Title:       "Backend Engineer",
		CompanyName: "Acme",
		Trials: []domain.Trial{
			{ID: "q1", Type: domain.TrialMCQ, Points: 10, QuestionText: "2 + 2?", Options: []string{"3", "4"}, CorrectAnswerIndex: 1},
			{ID: "essay", Type: domain.TrialTextResponse, Points: 10, Prompt: "Why us?"},
		},
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create job: status %d", resp.StatusCode)
	}
	return decode[domain.Job](t, resp)
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
)

// Handler serves the REST surface over the contest use cases.
type Handler struct {
	contests    *app.ContestService
	accounts    *app.AccountService
	suggestions *app.SuggestionService
	tokens      *TokenIssuer
	log         logrus.FieldLogger
}

func NewHandler(contests *app.ContestService, accounts *app.AccountService, suggestions *app.SuggestionService, tokens *TokenIssuer, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		contests:    contests,
		accounts:    accounts,
		suggestions: suggestions,
		tokens:      tokens,
		log:         log,
	}
}

// NewRouter wires the REST routes, the attempt websocket, /healthz and /metrics.
// A nil gatherer leaves /metrics out.
func NewRouter(h *Handler, ws *WSHandler, gatherer prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// public
	api.HandleFunc("/auth/signup", h.SignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/anonymous", h.Anonymous).Methods(http.MethodPost)

	// any authenticated user
	users := api.NewRoute().Subrouter()
	users.Use(h.tokens.RequireUser)
	users.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)

	employers := api.NewRoute().Subrouter()
	employers.Use(h.tokens.RequireRole(domain.RoleEmployer))
	employers.HandleFunc("/jobs", h.CreateJob).Methods(http.MethodPost)
	employers.HandleFunc("/jobs/{jobID}/leaderboard", h.Leaderboard).Methods(http.MethodGet)
	employers.HandleFunc("/jobs/{jobID}/results", h.JobResults).Methods(http.MethodGet)
	employers.HandleFunc("/suggestions", h.Suggest).Methods(http.MethodPost)

	candidates := api.NewRoute().Subrouter()
	candidates.Use(h.tokens.RequireRole(domain.RoleCandidate))
	candidates.HandleFunc("/jobs/{jobID}/attempt", h.StartAttempt).Methods(http.MethodPost)
	candidates.HandleFunc("/jobs/{jobID}/attempt", h.AttemptStatus).Methods(http.MethodGet)
	candidates.HandleFunc("/jobs/{jobID}/attempt", h.AbandonAttempt).Methods(http.MethodDelete)
	candidates.HandleFunc("/jobs/{jobID}/attempt/answers", h.RecordAnswer).Methods(http.MethodPut)
	candidates.HandleFunc("/jobs/{jobID}/attempt/submit", h.SubmitAttempt).Methods(http.MethodPost)

	if ws != nil {
		live := r.PathPrefix("/ws").Subrouter()
		live.Use(h.tokens.RequireRole(domain.RoleCandidate))
		live.HandleFunc("/jobs/{jobID}/attempt", ws.ServeWS).Methods(http.MethodGet)
	}
	return r
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/domain"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *Handler) Anonymous(w http.ResponseWriter, r *http.Request) {
	var req anonymousRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	user, err := h.accounts.AnonymousLogin(req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user domain.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: user})
}

// ListJobs returns the caller's view: available jobs for candidates, owned jobs for employers.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if user.Role == domain.RoleEmployer {
		jobs, err := h.contests.ListEmployerJobs(r.Context(), user.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, jobs)
		return
	}

	listings, err := h.contests.ListCandidateJobs(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]candidateListing, 0, len(listings))
	for _, l := range listings {
		out = append(out, candidateListing{Job: toCandidateJob(l.Job), Available: l.Available, Completed: l.Completed})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	var req jobRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	draft, err := domain.RestoreJobDraft(req.Title, req.CompanyName, req.Description, req.Trials)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created, err := h.contests.CreateJobFromDraft(r.Context(), user, draft, req.StartDate, req.EndDate, req.ContestDurationMinutes)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	lb, err := h.contests.Leaderboard(r.Context(), user.ID, mux.Vars(r)["jobID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) JobResults(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	results, err := h.contests.JobResults(r.Context(), user.ID, mux.Vars(r)["jobID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Suggest fills one trial of the employer's draft. With no trialId a new trial of
// trialType is appended first. The draft is echoed back only when the suggestion landed.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	draft, err := domain.RestoreJobDraft(req.Title, req.CompanyName, req.Description, req.Trials)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	trialID := req.TrialID
	if trialID == "" {
		trial, err := draft.AddTrial(req.TrialType)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		trialID = trial.ID
	}
	if err := h.suggestions.SuggestInto(r.Context(), draft, trialID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionResponse{TrialID: trialID, Trials: draft.Trials()})
}

func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	jobID := mux.Vars(r)["jobID"]
	status, err := h.contests.StartAttempt(r.Context(), user.ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	attempt, err := h.contests.Attempt(user.ID, jobID)
	if err != nil {
		// an instant expiry may already have released it
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attemptResponse{Job: toCandidateJob(attempt.Job()), Status: status})
}

func (h *Handler) AttemptStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	status, err := h.contests.AttemptStatus(r.Context(), user.ID, mux.Vars(r)["jobID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	var answer domain.Answer
	if err := decodeJSON(r, &answer); err != nil {
		h.fail(w, r, err)
		return
	}
	status, err := h.contests.RecordAnswer(r.Context(), user.ID, mux.Vars(r)["jobID"], answer)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	jobID := mux.Vars(r)["jobID"]
	sub, err := h.contests.SubmitAttempt(r.Context(), user.ID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.WithFields(logrus.Fields{"job_id": jobID, "candidate_id": user.ID}).Debug("attempt submitted over http")
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) AbandonAttempt(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := h.contests.AbandonAttempt(r.Context(), user.ID, mux.Vars(r)["jobID"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
}

// statusFor maps domain sentinels to HTTP statuses. Unknown errors are 500s.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrTrialNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrJobNotAvailable),
		errors.Is(err, domain.ErrAttemptFinalized),
		errors.Is(err, domain.ErrAttemptInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrTooManyTrials),
		errors.Is(err, domain.ErrInvalidTrial),
		errors.Is(err, domain.ErrInvalidJob),
		errors.Is(err, domain.ErrInvalidWindow),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSuggestionUnavailable),
		errors.Is(err, domain.ErrInvalidSuggestion):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		msg = "internal error"
	case http.StatusBadGateway:
		// upstream detail stays in the logs
		msg = domain.ErrSuggestionUnavailable.Error()
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(errBadRequest, err.Error())
	}
	return nil
}

var errBadRequest = errors.New("malformed request body")

// fail logs server-side failures and writes the mapped error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if statusFor(err) >= http.StatusInternalServerError {
		h.log.WithFields(logrus.Fields{"path": r.URL.Path, "method": r.Method}).WithError(err).Error("request failed")
	}
	writeError(w, err)
}

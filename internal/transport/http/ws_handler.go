package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"hiring-contest-service/internal/app"
	"hiring-contest-service/internal/domain"
)

const defaultStatusInterval = time.Second

// WSHandler streams a candidate's live attempt: a status frame every interval and a
// "submitted" frame once the attempt is finalized by either trigger.
type WSHandler struct {
	contests *app.ContestService
	interval time.Duration
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(contests *app.ContestService, interval time.Duration, log logrus.FieldLogger) *WSHandler {
	if interval <= 0 {
		interval = defaultStatusInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		contests: contests,
		interval: interval,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type submittedPayload struct {
	Submission domain.Submission `json:"submission"`
	Error      string            `json:"error,omitempty"`
}

// ServeWS starts or resumes the caller's attempt on the job, then upgrades.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	jobID := mux.Vars(r)["jobID"]

	status, err := h.contests.StartAttempt(r.Context(), user.ID, jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	attempt, err := h.contests.Attempt(user.ID, jobID)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"job_id": jobID, "candidate_id": user.ID})
	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	pumpDone := make(chan struct{})

	// single writer; gorilla connections allow one concurrent writer
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	push := func(msg outboundMessage) bool {
		select {
		case send <- msg:
			return true
		case <-closeSignals:
			return false
		case <-writerDone:
			return false
		}
	}

	send <- outboundMessage{Type: "started", Payload: attemptResponse{Job: toCandidateJob(attempt.Job()), Status: status}}

	go func() {
		defer close(pumpDone)
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !push(outboundMessage{Type: "status", Payload: attempt.Status()}) {
					return
				}
			case <-attempt.Done():
				sub, ok, err := attempt.Result()
				if !ok {
					push(outboundMessage{Type: "abandoned", Payload: attempt.Status()})
					return
				}
				payload := submittedPayload{Submission: sub}
				if err != nil {
					payload.Error = err.Error()
				}
				push(outboundMessage{Type: "submitted", Payload: payload})
				return
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var answer domain.Answer
			if err := json.Unmarshal(inbound.Payload, &answer); err != nil {
				push(errorMessage("invalid answer payload"))
				continue
			}
			st, err := h.contests.RecordAnswer(r.Context(), user.ID, jobID, answer)
			if err != nil {
				push(errorMessage(err.Error()))
				continue
			}
			push(outboundMessage{Type: "status", Payload: st})
		case "submit":
			// the pump reports the submission once the attempt is done
			if _, err := h.contests.SubmitAttempt(r.Context(), user.ID, jobID); err != nil {
				push(errorMessage(err.Error()))
			}
		case "status":
			push(outboundMessage{Type: "status", Payload: attempt.Status()})
		default:
			push(errorMessage("unsupported message type"))
		}
	}

	close(closeSignals)
	<-pumpDone
	close(send)
	<-writerDone
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}

package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"hiring-contest-service/internal/domain"
)

func TestWebSocketAttemptFlow(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signUp(t, "boss@example.com", domain.RoleEmployer)
	candidate := env.signUp(t, "alice@example.com", domain.RoleCandidate)
	job := env.createJob(t, employer)

	u := "ws" + env.server.URL[len("http"):] + "/ws/jobs/" + job.ID + "/attempt?token=" + candidate
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect started event first.
	_, payload := readNext(conn, t, "started")
	if payload["job"] == nil || payload["status"] == nil {
		t.Fatalf("expected job and status in started payload, got %v", payload)
	}

	answer := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"trialId": "q1", "kind": "CHOICE", "choice": 1},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	answered := false
	for i := 0; i < 20 && !answered; i++ {
		typ, p := readNext(conn, t, "")
		if typ == "status" && p["answered"] == float64(1) {
			answered = true
		}
	}
	if !answered {
		t.Fatalf("expected a status frame with one answer")
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	for i := 0; i < 50; i++ {
		typ, p := readNext(conn, t, "")
		if typ != "submitted" {
			continue
		}
		sub, _ := p["submission"].(map[string]any)
		if sub["score"] != float64(10) || sub["total"] != float64(10) {
			t.Fatalf("unexpected submission %v", sub)
		}
		return
	}
	t.Fatalf("expected submitted frame")
}

func TestWebSocketRejectsSecondAttempt(t *testing.T) {
	env := newTestEnv(t)
	employer := env.signUp(t, "boss@example.com", domain.RoleEmployer)
	candidate := env.signUp(t, "alice@example.com", domain.RoleCandidate)
	job := env.createJob(t, employer)

	env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/attempt", candidate, nil)
	env.do(t, http.MethodPost, "/api/jobs/"+job.ID+"/attempt/submit", candidate, nil)

	u := "ws" + env.server.URL[len("http"):] + "/ws/jobs/" + job.ID + "/attempt?token=" + candidate
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

package http

import (
	"encoding/json"
	stdhttp "net/http"
	"testing"

	"github.com/pairchat/pairchat-server/internal/proto"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := postJSON(t, env, "/api/register", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, body)
	}
	if token, _ := body["token"].(string); token == "" {
		t.Fatalf("expected token in response")
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice")

	resp, _ := postJSON(t, env, "/api/register", map[string]string{
		"username": "alice",
		"password": "secret456",
	})
	if resp.StatusCode != stdhttp.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRegisterEndpointInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"username": "ab", "password": "secret123"},        // too short
		{"username": "has space", "password": "secret123"}, // bad charset
		{"username": "alice", "password": "short"},         // weak password
		{"username": "alice"},                              // missing password
	}
	for _, body := range cases {
		resp, _ := postJSON(t, env, "/api/register", body)
		if resp.StatusCode != stdhttp.StatusBadRequest {
			t.Fatalf("body %v: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice")

	resp, body := postJSON(t, env, "/api/login", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if token, _ := body["token"].(string); token == "" {
		t.Fatalf("expected token in response")
	}

	resp, _ = postJSON(t, env, "/api/login", map[string]string{
		"username": "alice",
		"password": "wrongpass",
	})
	if resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", resp.StatusCode)
	}
}

func TestListUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := registerUser(t, env, "alice")
	registerUser(t, env, "bob")
	registerUser(t, env, "carol")

	resp := getAuthed(t, env, "/api/users", aliceToken)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var users []UserResponse
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.ID == aliceID {
			t.Fatalf("caller must be excluded from listing")
		}
	}
}

func TestListUsersEndpointRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	if resp := getAuthed(t, env, "/api/users", ""); resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", resp.StatusCode)
	}
	if resp := getAuthed(t, env, "/api/users", "bogus"); resp.StatusCode != stdhttp.StatusUnauthorized {
		t.Fatalf("invalid token: expected 401, got %d", resp.StatusCode)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := registerUser(t, env, "alice")
	bobToken, bobID := registerUser(t, env, "bob")

	aliceConn := dialWS(t, env, aliceToken)
	sendIntent(t, aliceConn, proto.InboundTypeJoinChat, joinData(aliceID, bobID, "alice"))
	for _, text := range []string{"one", "two"} {
		sendIntent(t, aliceConn, proto.InboundTypeSendMessage, messageData(aliceID, bobID, "alice", text))
		readEvent(t, aliceConn, proto.EventNameNewMessage)
	}

	// Either side of the pair sees the same ordered history.
	resp := getAuthed(t, env, "/api/chats/"+itoa(aliceID)+"/messages", bobToken)
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var messages []MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Text != "one" || messages[1].Text != "two" {
		t.Fatalf("history out of order: %q, %q", messages[0].Text, messages[1].Text)
	}
	for _, msg := range messages {
		assertWireTimestamp(t, msg.Timestamp)
	}
}

func TestHistoryEndpointRejectsBadTargets(t *testing.T) {
	env := newTestEnv(t)

	aliceToken, aliceID := registerUser(t, env, "alice")

	if resp := getAuthed(t, env, "/api/chats/abc/messages", aliceToken); resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("non-numeric id: expected 400, got %d", resp.StatusCode)
	}
	if resp := getAuthed(t, env, "/api/chats/"+itoa(aliceID)+"/messages", aliceToken); resp.StatusCode != stdhttp.StatusBadRequest {
		t.Fatalf("self target: expected 400, got %d", resp.StatusCode)
	}
	if resp := getAuthed(t, env, "/api/chats/999/messages", aliceToken); resp.StatusCode != stdhttp.StatusNotFound {
		t.Fatalf("unknown user: expected 404, got %d", resp.StatusCode)
	}
}

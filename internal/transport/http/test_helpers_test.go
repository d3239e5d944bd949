package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/pairchat/pairchat-server/internal/auth"
	"github.com/pairchat/pairchat-server/internal/config"
	"github.com/pairchat/pairchat-server/internal/core"
	"github.com/pairchat/pairchat-server/internal/proto"
	"github.com/pairchat/pairchat-server/internal/store/sqlite"
)

type testEnv struct {
	ts *httptest.Server
	st *sqlite.SQLiteStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	logger := zerolog.New(nil)
	cfg := config.Default()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	})

	hub := core.NewHub(st, core.NewRegistry(), &logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := NewServer(hub, authService, st, &cfg, &logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		st.Close()
	})

	return &testEnv{ts: ts, st: st}
}

func postJSON(t *testing.T, env *testEnv, path string, body any) (*stdhttp.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := stdhttp.Post(env.ts.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func getAuthed(t *testing.T, env *testEnv, path, token string) *stdhttp.Response {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, env.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// registerUser creates a user over the REST API and returns its token and ID.
func registerUser(t *testing.T, env *testEnv, username string) (string, int64) {
	t.Helper()

	resp, body := postJSON(t, env, "/api/register", map[string]string{
		"username": username,
		"password": "secret123",
	})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register %q: status %d (%v)", username, resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register %q: empty token", username)
	}

	u, err := env.st.GetUserByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("look up %q: %v", username, err)
	}
	return token, u.ID
}

func dialWS(t *testing.T, env *testEnv, token string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	url := env.ts.URL + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "test done") })
	return conn
}

func sendIntent(t *testing.T, conn *websocket.Conn, intentType string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal intent data: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: intentType, Data: raw}); err != nil {
		t.Fatalf("write intent %q: %v", intentType, err)
	}
}

// wireOutbound mirrors proto.Outbound with raw event data for assertions.
type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// readOutbound reads frames until one matches the predicate.
func readOutbound(t *testing.T, conn *websocket.Conn, match func(wireOutbound) bool) wireOutbound {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		var out wireOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read ws frame: %v", err)
		}
		if match(out) {
			return out
		}
	}
}

func readEvent(t *testing.T, conn *websocket.Conn, eventName string) wireOutbound {
	t.Helper()
	return readOutbound(t, conn, func(out wireOutbound) bool {
		return out.Type == proto.OutboundTypeEvent && out.Event == eventName
	})
}

func readError(t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()
	out := readOutbound(t, conn, func(out wireOutbound) bool {
		return out.Type == proto.OutboundTypeError
	})
	if out.Error == nil {
		t.Fatalf("error frame without error payload")
	}
	return out.Error
}

func decodeEventData(t *testing.T, out wireOutbound, into any) {
	t.Helper()
	if err := json.Unmarshal(out.Data, into); err != nil {
		t.Fatalf("decode %s data: %v", out.Event, err)
	}
}

func assertWireTimestamp(t *testing.T, ts string) {
	t.Helper()
	if _, err := time.Parse(proto.TimestampFormat, ts); err != nil {
		t.Fatalf("timestamp %q does not match wire format: %v", ts, err)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func joinData(userID, receiverID int64, username string) map[string]any {
	return map[string]any{
		"receiver_id":      receiverID,
		"current_user_id":  userID,
		"current_username": username,
	}
}

func messageData(userID, receiverID int64, username, text string) map[string]any {
	return map[string]any{
		"receiver_id":      receiverID,
		"current_user_id":  userID,
		"current_username": username,
		"text":             text,
	}
}

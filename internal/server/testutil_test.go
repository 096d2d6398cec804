package server

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"nhooyr.io/websocket"

	"catanrig/internal/feed"
	"catanrig/internal/game"
	"catanrig/internal/storage"
)

// --- Test environment ---

type fakeState struct {
	state *game.State
	err   error
}

func (f *fakeState) Snapshot() (*game.State, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.state.Clone()
}

type testEnv struct {
	ts       *httptest.Server
	state    *fakeState
	queue    *ActionQueue
	broker   *feed.Broker
	recorder *storage.Recorder
}

func newTestGame() *game.State {
	return game.NewGame(game.Palette, game.DefaultRules(), rand.New(rand.NewPCG(5, 6)))
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	st := newTestGame()
	rec, err := storage.StartGame(context.Background(), store, st)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}

	env := &testEnv{
		state:    &fakeState{state: st},
		queue:    NewActionQueue(4),
		broker:   feed.NewBroker(),
		recorder: rec,
	}
	srv := New("", Options{
		State:   env.state,
		History: rec,
		Queue:   env.queue,
		Broker:  env.broker,
		Checks:  map[string]Checker{"sqlite": CheckFunc(store.Ping)},
		Web: fstest.MapFS{
			"index.html": &fstest.MapFile{Data: []byte("<html><body>viewer</body></html>")},
		},
	})
	env.ts = httptest.NewServer(srv)
	t.Cleanup(env.ts.Close)
	return env
}

// --- Context helpers ---

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/ws"
}

// wsConnect dials the state stream. The connection is closed on cleanup.
func wsConnect(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := timeoutCtx(t)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// wsSend marshals and writes a typed message, calling t.Fatal on error.
func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	var p json.RawMessage
	if payload != nil {
		var err error
		if p, err = json.Marshal(payload); err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: p})
	if err != nil {
		t.Fatalf("marshal ws message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

// wsRead reads one message and returns its type along with the raw bytes.
func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		t.Fatalf("unmarshal ws message: %v", err)
	}
	return head.Type, data
}

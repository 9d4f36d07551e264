package adapterwebsocket_test

import (
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Nzm15/battle-arena-main/client/adapter/headless"
	adapterwebsocket "github.com/Nzm15/battle-arena-main/client/adapter/websocket"
	"github.com/Nzm15/battle-arena-main/client/application"
	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

type envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// arenaServer は1人のクライアントに決まった手順でイベントを送る偽のゲームサーバーです。
type arenaServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu      sync.Mutex
	actions []envelope
	done    chan struct{}
}

func (s *arenaServer) recorded(action string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, env := range s.actions {
		if env.Action == action {
			n++
		}
	}
	return n
}

func (s *arenaServer) writeJSON(conn *websocket.Conn, v any) error {
	return conn.WriteJSON(v)
}

func (s *arenaServer) writeState(conn *websocket.Conn, delta clientdomain.StateDelta) error {
	data, err := clientdomain.EncodeState(delta)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

func (s *arenaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer close(s.done)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	var join envelope
	if err := conn.ReadJSON(&join); err != nil || join.Action != clientdomain.ActionJoin {
		s.t.Errorf("first frame = %+v, %v; want join", join, err)
		return
	}
	var joinData clientdomain.JoinAction
	if err := json.Unmarshal(join.Data, &joinData); err != nil || joinData.Room != "outdoor" {
		s.t.Errorf("join data = %s", join.Data)
		return
	}

	// 状態を参加通知より先に送っても、クライアントは joined を先に配送する
	steps := []func() error{
		func() error {
			return s.writeState(conn, clientdomain.Snapshot{Players: map[domain.SessionID]clientdomain.PlayerState{
				"A": {X: 100, Y: 100},
				"B": {X: 10, Y: 20},
			}})
		},
		func() error {
			return s.writeJSON(conn, map[string]any{"event": "joined", "session_id": "A", "room": "outdoor"})
		},
		func() error {
			return s.writeJSON(conn, map[string]any{"event": "start_position", "position": 1})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			s.t.Errorf("write: %v", err)
			return
		}
	}

	scripted := false
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		s.mu.Lock()
		s.actions = append(s.actions, env)
		s.mu.Unlock()

		if env.Action != clientdomain.ActionInitialPosition || scripted {
			continue
		}
		scripted = true
		script := []func() error{
			func() error {
				return s.writeState(conn, clientdomain.PlayerChanged{ID: "B", Changes: []clientdomain.FieldChange{{Field: "x", Value: 50}}})
			},
			func() error { return s.writeJSON(conn, map[string]any{"event": "taunt", "text": "hi"}) },
			func() error { return s.writeState(conn, clientdomain.PlayerRemoved{ID: "B"}) },
			func() error {
				return s.writeJSON(conn, map[string]any{"event": "hit", "punisher_id": "B", "punished_id": "A"})
			},
		}
		for _, step := range script {
			if err := step(); err != nil {
				s.t.Errorf("write: %v", err)
				return
			}
		}
	}
}

type stillInput struct{}

func (stillInput) Keys() application.KeyState        { return application.KeyState{} }
func (stillInput) Pointer() application.PointerState { return application.PointerState{} }

func TestSessionAndGame_EndToEnd(t *testing.T) {
	srv := &arenaServer{
		t:        t,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		done:     make(chan struct{}),
	}
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	sm, err := clientdomain.NewSessionManager(adapterwebsocket.NewDialer(), clientdomain.SessionConfig{
		URL:         "ws" + strings.TrimPrefix(hs.URL, "http"),
		JoinTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	renderer := headless.NewLogRenderer()
	ui := headless.NewConsoleUI(io.Discard)
	game, err := application.NewGame(application.GameConfig{
		Map:      application.NewMap(800, 600),
		Rand:     rand.New(rand.NewPCG(7, 7)),
		Sender:   sm,
		Renderer: renderer,
		Spawns:   headless.NewGridSpawnPoints(800, 600, 4),
		Input:    stillInput{},
		Audio:    headless.LogAudio{},
		UI:       ui,
	})
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}

	ctx := context.Background()
	var joins []domain.SessionID
	unsubJoin := sm.OnJoin(func(ev clientdomain.JoinedEvent) { joins = append(joins, ev.SessionID) })
	defer unsubJoin()
	unbind := game.Bind(ctx, sm)
	defer unbind()

	if err := sm.Connect(ctx, "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// テストのゴルーチンをフレームループとして回す
	frameUntil := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(3 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("timed out waiting for %s", what)
			}
			sm.Dispatch(ctx)
			game.Update(ctx, time.Second/60)
			time.Sleep(2 * time.Millisecond)
		}
	}

	frameUntil("local player hit", func() bool {
		return game.Status().Status() == application.StatusHit
	})

	if len(joins) != 1 || joins[0] != "A" || !sm.IsSelf("A") {
		t.Errorf("joins = %v", joins)
	}
	if game.Field().ActorCount() != 0 {
		t.Errorf("ActorCount = %d after B was removed", game.Field().ActorCount())
	}
	if n := renderer.Live(application.VisualRemotePlayer); n != 0 {
		t.Errorf("%d remote visuals alive after removal", n)
	}
	if n := renderer.Live(application.VisualLocalPlayer); n != 1 {
		t.Errorf("%d local visuals, want 1", n)
	}
	if !ui.HitMarker() {
		t.Errorf("hit marker not shown")
	}

	game.ChooseRevive(ctx)
	ch, ok := game.Status().Challenge()
	if !ok {
		t.Fatalf("no challenge after ChooseRevive")
	}
	game.SubmitAnswer(ctx, (ch.CorrectIndex+1)%len(ch.Options))
	if game.Status().Status() != application.StatusDead {
		t.Fatalf("Status = %s, want dead", game.Status().Status())
	}
	select {
	case <-game.Done():
	default:
		t.Errorf("game not done after death")
	}

	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sm.Close(closeCtx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	select {
	case <-srv.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("server handler did not finish")
	}

	if n := srv.recorded(clientdomain.ActionInitialPosition); n != 1 {
		t.Errorf("server saw %d initial_position actions, want 1", n)
	}
	if n := srv.recorded(clientdomain.ActionDead); n != 1 {
		t.Errorf("server saw %d dead actions, want 1", n)
	}
	if srv.recorded(clientdomain.ActionMove) == 0 {
		t.Errorf("server saw no move actions")
	}
	if renderer.Live(application.VisualLocalPlayer) != 0 {
		t.Errorf("local visual not released after death")
	}
	if len(ui.Alerts()) != 1 {
		t.Errorf("alerts = %v, want only the death notice", ui.Alerts())
	}
}

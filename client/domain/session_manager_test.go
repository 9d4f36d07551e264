package domain

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/Nzm15/battle-arena-main/domain"
	"github.com/Nzm15/battle-arena-main/domain/mocks"
)

var errTransportClosed = errors.New("transport closed")

// chanTransport はチャネルで送受信するテスト用トランスポートです。
type chanTransport struct {
	in     chan domain.Frame
	out    chan domain.Frame
	closed chan struct{}
	once   sync.Once
}

func newChanTransport() *chanTransport {
	return &chanTransport{
		in:     make(chan domain.Frame, 64),
		out:    make(chan domain.Frame, 64),
		closed: make(chan struct{}),
	}
}

func (c *chanTransport) Read(ctx context.Context) (domain.Frame, error) {
	select {
	case f := <-c.in:
		return f, nil
	case <-c.closed:
		return domain.Frame{}, errTransportClosed
	case <-ctx.Done():
		return domain.Frame{}, ctx.Err()
	}
}

func (c *chanTransport) Write(ctx context.Context, f domain.Frame) error {
	select {
	case <-c.closed:
		return errTransportClosed
	default:
	}
	select {
	case c.out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *chanTransport) Close(code int32, reason string) error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *chanTransport) sendText(t *testing.T, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.in <- domain.Frame{Kind: domain.FrameText, Data: data}
}

func (c *chanTransport) sendState(t *testing.T, d StateDelta) {
	t.Helper()
	data, err := EncodeState(d)
	if err != nil {
		t.Fatalf("encode state: %v", err)
	}
	c.in <- domain.Frame{Kind: domain.FrameBinary, Data: data}
}

// expectWrite はクライアントが書いた次のフレームを action 名と共に返します。
func (c *chanTransport) expectWrite(t *testing.T) (string, json.RawMessage) {
	t.Helper()
	select {
	case f := <-c.out:
		var env struct {
			Action string          `json:"action"`
			Data   json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(f.Data, &env); err != nil {
			t.Fatalf("unmarshal written frame: %v", err)
		}
		return env.Action, env.Data
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for client write")
		return "", nil
	}
}

func joined(id string) map[string]any {
	return map[string]any{"event": "joined", "session_id": id, "room": "outdoor"}
}

// dispatchUntil は cond が真になるまでループスレッドの代わりに Dispatch を回します。
func dispatchUntil(t *testing.T, sm *SessionManager, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sm.Dispatch(context.Background())
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func newTestManager(t *testing.T, cfg SessionConfig) (*SessionManager, *chanTransport) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tr := newChanTransport()
	dialer := mocks.NewMockDialer(ctrl)
	dialer.EXPECT().Dial(gomock.Any(), "ws://arena.test").Return(tr, nil).AnyTimes()

	if cfg.URL == "" {
		cfg.URL = "ws://arena.test"
	}
	sm, err := NewSessionManager(dialer, cfg)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sm.Close(ctx)
	})
	return sm, tr
}

func TestNewSessionManager_Validation(t *testing.T) {
	if _, err := NewSessionManager(nil, SessionConfig{URL: "ws://x"}); !errors.Is(err, ErrInitializationFailed) {
		t.Errorf("nil dialer: err = %v", err)
	}
	ctrl := gomock.NewController(t)
	if _, err := NewSessionManager(mocks.NewMockDialer(ctrl), SessionConfig{}); !errors.Is(err, ErrInitializationFailed) {
		t.Errorf("empty url: err = %v", err)
	}
}

func TestSessionManager_JoinThenMessagesAndState(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	var order []string
	var joinedEv JoinedEvent
	sm.OnJoin(func(ev JoinedEvent) {
		joinedEv = ev
		order = append(order, "join")
	})
	sm.OnMessage(func(m Inbound) { order = append(order, m.Event()) })
	sm.OnState(func(d StateDelta) { order = append(order, d.Op()) })

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	action, data := tr.expectWrite(t)
	if action != ActionJoin {
		t.Fatalf("first write = %s, want join", action)
	}
	var join JoinAction
	if err := json.Unmarshal(data, &join); err != nil || join.Room != "outdoor" {
		t.Fatalf("join payload = %s (%v)", data, err)
	}

	tr.sendText(t, joined("self"))
	tr.sendText(t, map[string]any{"event": "start_position", "position": 2})
	tr.sendState(t, PlayerAdded{ID: "other", Player: PlayerState{X: 1, Y: 2}})

	dispatchUntil(t, sm, func() bool { return len(order) == 3 })

	want := []string{"join", EventStartPosition, OpPlayerAdd}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
	if joinedEv.SessionID != "self" {
		t.Errorf("joined session = %s, want self", joinedEv.SessionID)
	}
	if sm.SessionID() != "self" || !sm.IsSelf("self") || sm.IsSelf("other") {
		t.Errorf("session id not assigned correctly: %s", sm.SessionID())
	}
}

func TestSessionManager_StateBeforeJoinIsHeld(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	var order []string
	sm.OnJoin(func(JoinedEvent) { order = append(order, "join") })
	sm.OnState(func(d StateDelta) { order = append(order, d.Op()) })

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)

	tr.sendState(t, Snapshot{Players: map[domain.SessionID]PlayerState{"other": {X: 5}}})
	tr.sendText(t, joined("self"))

	dispatchUntil(t, sm, func() bool { return len(order) == 2 })
	if order[0] != "join" || order[1] != OpSnapshot {
		t.Errorf("order = %v, want [join snapshot]", order)
	}
}

func TestSessionManager_SnapshotDeliveredOnce(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	snapshots := 0
	removed := 0
	sm.OnState(func(d StateDelta) {
		switch d.(type) {
		case Snapshot:
			snapshots++
		case PlayerRemoved:
			removed++
		}
	})

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, joined("self"))
	tr.sendState(t, Snapshot{})
	tr.sendState(t, Snapshot{})
	tr.sendState(t, PlayerRemoved{ID: "gone"})

	dispatchUntil(t, sm, func() bool { return removed == 1 })
	if snapshots != 1 {
		t.Errorf("snapshots delivered = %d, want 1", snapshots)
	}
}

func TestSessionManager_UnknownEventIsIgnored(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	var events []string
	sm.OnMessage(func(m Inbound) { events = append(events, m.Event()) })

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, joined("self"))
	tr.sendText(t, map[string]any{"event": "emote", "id": "x"})
	tr.sendText(t, map[string]any{"event": "hit", "punisher_id": "a", "punished_id": "b"})

	dispatchUntil(t, sm, func() bool { return len(events) == 1 })
	if events[0] != EventHit {
		t.Errorf("events = %v, want [hit]", events)
	}
}

func TestSessionManager_JoinRejected(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	var got error
	sm.OnError(func(err error) { got = err })
	joins := 0
	sm.OnJoin(func(JoinedEvent) { joins++ })

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, map[string]any{"event": "join_error", "reason": "room full"})

	dispatchUntil(t, sm, func() bool { return got != nil })

	var ce *ConnectionError
	if !errors.As(got, &ce) {
		t.Fatalf("error = %T, want *ConnectionError", got)
	}
	if ce.Room != "outdoor" || !errors.Is(got, ErrJoinRejected) {
		t.Errorf("ConnectionError = %v", ce)
	}
	if joins != 0 {
		t.Errorf("join handlers called %d times", joins)
	}
	if err := sm.Send(context.Background(), MoveAction{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Send after failure: err = %v, want ErrSessionClosed", err)
	}

	// エラーは一度だけ配送される
	got = nil
	sm.Dispatch(context.Background())
	if got != nil {
		t.Errorf("error delivered twice")
	}
}

func TestSessionManager_JoinTimeout(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{JoinTimeout: 50 * time.Millisecond})

	var got error
	sm.OnError(func(err error) { got = err })
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)

	dispatchUntil(t, sm, func() bool { return got != nil })
	if !errors.Is(got, ErrJoinTimeout) {
		t.Errorf("error = %v, want ErrJoinTimeout", got)
	}
}

func TestSessionManager_DialError(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mocks.NewMockDialer(ctrl)
	dialErr := errors.New("connection refused")
	dialer.EXPECT().Dial(gomock.Any(), "ws://arena.test").Return(nil, dialErr)

	sm, err := NewSessionManager(dialer, SessionConfig{URL: "ws://arena.test"})
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	var got error
	sm.OnError(func(err error) { got = err })
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	dispatchUntil(t, sm, func() bool { return got != nil })

	var ce *ConnectionError
	if !errors.As(got, &ce) || !errors.Is(got, dialErr) {
		t.Errorf("error = %v, want ConnectionError wrapping dial error", got)
	}
	<-sm.Done()
}

func TestSessionManager_ConnectMisuse(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	if err := sm.Connect(context.Background(), ""); !errors.Is(err, ErrEmptyRoom) {
		t.Errorf("empty room: err = %v, want ErrEmptyRoom", err)
	}
	if err := sm.Send(context.Background(), MoveAction{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send before connect: err = %v, want ErrNotConnected", err)
	}
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	if err := sm.Connect(context.Background(), "outdoor"); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second connect: err = %v, want ErrAlreadyConnected", err)
	}
}

func TestSessionManager_ExpiredCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	dialer := mocks.NewMockDialer(ctrl)

	sm, err := NewSessionManager(dialer, SessionConfig{
		URL:   "ws://arena.test",
		Token: signedToken(t, time.Now().Add(-time.Hour)),
	})
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	err = sm.Connect(context.Background(), "outdoor")
	var ce *ConnectionError
	if !errors.As(err, &ce) || !errors.Is(err, ErrCredentialExpired) {
		t.Errorf("Connect err = %v, want ConnectionError wrapping ErrCredentialExpired", err)
	}
}

func TestSessionManager_SendBackpressure(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{WriteQueue: 1})

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)

	// 参加完了まで書き込みループは動かないのでキューは溜まったまま
	if err := sm.Send(context.Background(), MoveAction{X: 1}); err != nil {
		t.Fatalf("first Send failed: %v", err)
	}
	if err := sm.Send(context.Background(), MoveAction{X: 2}); !errors.Is(err, ErrBackpressure) {
		t.Errorf("second Send: err = %v, want ErrBackpressure", err)
	}
}

func TestSessionManager_CloseFlushesQueuedWrites(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	errs := 0
	sm.OnError(func(error) { errs++ })
	joins := 0
	sm.OnJoin(func(JoinedEvent) { joins++ })
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	if err := sm.Send(context.Background(), DeadAction{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	tr.sendText(t, joined("self"))
	dispatchUntil(t, sm, func() bool { return joins == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sm.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	action, _ := tr.expectWrite(t)
	if action != ActionDead {
		t.Errorf("flushed action = %s, want dead", action)
	}
	if err := sm.Send(context.Background(), MoveAction{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Send after Close: err = %v, want ErrSessionClosed", err)
	}
	sm.Dispatch(context.Background())
	if errs != 0 {
		t.Errorf("local close reported %d errors", errs)
	}
}

func TestSessionManager_IdleWatchdog(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{IdleTimeout: 60 * time.Millisecond})

	var got error
	sm.OnError(func(err error) { got = err })
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, joined("self"))

	dispatchUntil(t, sm, func() bool { return got != nil })
	if !errors.Is(got, ErrConnectionLost) {
		t.Errorf("error = %v, want ErrConnectionLost", got)
	}
	if !strings.Contains(got.Error(), "read") {
		t.Errorf("error = %v, want idle reason read", got)
	}
}

func TestSessionManager_CheckIdle(t *testing.T) {
	sm := &SessionManager{cfg: SessionConfig{IdleTimeout: 20 * time.Millisecond}}
	session := domain.NewSession("outdoor")
	if err := sm.checkIdle(session); err != nil {
		t.Fatalf("fresh session: err = %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	session.TouchRead()
	if err := sm.checkIdle(session); err != nil {
		t.Errorf("write-only idle: err = %v, want nil", err)
	}

	time.Sleep(40 * time.Millisecond)
	err := sm.checkIdle(session)
	if !errors.Is(err, ErrConnectionLost) || !strings.Contains(err.Error(), "read|write") {
		t.Errorf("err = %v, want ErrConnectionLost with read|write", err)
	}

	sm.cfg.IdleTimeout = 0
	if err := sm.checkIdle(session); err != nil {
		t.Errorf("disabled watchdog: err = %v", err)
	}
}

func TestSessionManager_ReadErrorAfterJoin(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	var got error
	sm.OnError(func(err error) { got = err })
	joins := 0
	sm.OnJoin(func(JoinedEvent) { joins++ })
	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, joined("self"))
	dispatchUntil(t, sm, func() bool { return joins == 1 })

	_ = tr.Close(1006, "server went away")
	dispatchUntil(t, sm, func() bool { return got != nil })
	if !errors.Is(got, ErrConnectionLost) {
		t.Errorf("error = %v, want ErrConnectionLost", got)
	}
	if sm.Err() == nil {
		t.Errorf("Err() = nil after failure")
	}
}

func TestSessionManager_Unsubscribe(t *testing.T) {
	sm, tr := newTestManager(t, SessionConfig{})

	calls := 0
	unsub := sm.OnMessage(func(Inbound) { calls++ })
	seen := 0
	sm.OnMessage(func(Inbound) { seen++ })

	if err := sm.Connect(context.Background(), "outdoor"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.expectWrite(t)
	tr.sendText(t, joined("self"))
	tr.sendText(t, map[string]any{"event": "start_position", "position": 1})
	dispatchUntil(t, sm, func() bool { return seen == 1 })

	unsub()
	tr.sendText(t, map[string]any{"event": "start_position", "position": 2})
	dispatchUntil(t, sm, func() bool { return seen == 2 })
	if calls != 1 {
		t.Errorf("unsubscribed handler called %d times, want 1", calls)
	}
}

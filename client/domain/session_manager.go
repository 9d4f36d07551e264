package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Nzm15/battle-arena-main/domain"
)

const (
	defaultJoinTimeout  = 5 * time.Second
	defaultWriteQueue   = 1024
	defaultInboundQueue = 1024

	// 参加完了前に届いたフレームの保留上限
	maxPendingFrames = 256
)

// SessionConfig は SessionManager の接続設定です。
type SessionConfig struct {
	URL         string
	Token       string
	Options     map[string]any
	JoinTimeout time.Duration
	// IdleTimeout の間なにも受信しなければ接続断として扱います。0以下で無効です。
	IdleTimeout  time.Duration
	WriteQueue   int
	InboundQueue int
}

// SessionManager はゲームサーバーとの1つの論理セッションを管理します。
//
// 送受信は内部のゴルーチンで行い、受信したイベントはキューに積まれます。
// 購読者への配送はフレームループから呼ばれる Dispatch の中だけで行われるため、
// ハンドラがフレーム処理と並行して走ることはありません。
type SessionManager struct {
	dialer domain.Dialer
	cfg    SessionConfig
	tracer trace.Tracer
	now    func() time.Time

	mu      sync.Mutex
	session *domain.Session
	cancel  context.CancelFunc

	ctrlCh    chan endpointEvent
	writeCh   chan domain.Frame
	inboundCh chan inboundItem
	flushReq  chan struct{}
	flushOnce sync.Once
	done      chan struct{}

	closeRequested   atomic.Bool
	failure          atomic.Pointer[ConnectionError]
	failureDelivered atomic.Bool

	// ループスレッドからのみ触る
	snapshotDelivered bool

	joinHandlers    handlerSet[JoinedEvent]
	messageHandlers handlerSet[Inbound]
	stateHandlers   handlerSet[StateDelta]
	errorHandlers   handlerSet[error]
}

func NewSessionManager(dialer domain.Dialer, cfg SessionConfig) (*SessionManager, error) {
	if dialer == nil {
		return nil, ErrInitializationFailed
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: empty server url", ErrInitializationFailed)
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = defaultJoinTimeout
	}
	if cfg.WriteQueue <= 0 {
		cfg.WriteQueue = defaultWriteQueue
	}
	if cfg.InboundQueue <= 0 {
		cfg.InboundQueue = defaultInboundQueue
	}
	return &SessionManager{
		dialer:    dialer,
		cfg:       cfg,
		tracer:    otel.Tracer("github.com/Nzm15/battle-arena-main/client/domain"),
		now:       time.Now,
		ctrlCh:    make(chan endpointEvent, 16),
		writeCh:   make(chan domain.Frame, cfg.WriteQueue),
		inboundCh: make(chan inboundItem, cfg.InboundQueue),
		flushReq:  make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Connect はバックグラウンドで接続と参加ハンドシェイクを開始します。
// 結果は Dispatch を通じて OnJoin または OnError の購読者に届きます。
func (sm *SessionManager) Connect(ctx context.Context, room string) error {
	if room == "" {
		return ErrEmptyRoom
	}
	if err := CheckCredential(sm.cfg.Token, sm.now()); err != nil {
		return &ConnectionError{Room: room, Err: err}
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session != nil {
		return ErrAlreadyConnected
	}
	if sm.closeRequested.Load() {
		return ErrSessionClosed
	}
	session := domain.NewSession(room)
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sm.session = session
	sm.cancel = cancel

	slog.InfoContext(ctx, "connecting to room", "room", room, "localID", session.LocalID, "url", sm.cfg.URL)
	go sm.run(runCtx, session)
	return nil
}

// Send はアクションを書き込みキューに積みます。再送はしません。
func (sm *SessionManager) Send(ctx context.Context, msg Outbound) error {
	session := sm.currentSession()
	if session == nil {
		return ErrNotConnected
	}
	if sm.closeRequested.Load() || session.IsClosed() {
		return ErrSessionClosed
	}
	data, err := EncodeOutbound(msg)
	if err != nil {
		return err
	}
	select {
	case sm.writeCh <- domain.Frame{Kind: domain.FrameText, Data: data}:
		return nil
	default:
		slog.WarnContext(ctx, "write queue full, action dropped", "action", msg.Action(), "sessionID", session.ID())
		return ErrBackpressure
	}
}

// Close は以降の送信を拒否し、キュー済みの書き込みを流してから接続を閉じます。
func (sm *SessionManager) Close(ctx context.Context) error {
	sm.closeRequested.Store(true)
	session := sm.currentSession()
	if session == nil {
		return nil
	}
	sm.flushOnce.Do(func() { close(sm.flushReq) })
	select {
	case <-sm.done:
		return nil
	case <-ctx.Done():
		sm.cancel()
		return ctx.Err()
	}
}

// Dispatch は受信キューを空になるまで取り出し、購読者を同期的に呼び出します。
// フレームの合間にループスレッドから呼びます。配送した件数を返します。
func (sm *SessionManager) Dispatch(ctx context.Context) int {
	n := 0
loop:
	for {
		select {
		case item := <-sm.inboundCh:
			if sm.deliver(ctx, item) {
				n++
			}
		default:
			break loop
		}
	}
	if ce := sm.failure.Load(); ce != nil && sm.failureDelivered.CompareAndSwap(false, true) {
		slog.ErrorContext(ctx, "session failed", "room", ce.Room, "err", ce.Err)
		sm.errorHandlers.emit(ce)
		n++
	}
	return n
}

// OnJoin は参加完了の購読者を登録します。
func (sm *SessionManager) OnJoin(fn func(JoinedEvent)) Unsubscribe {
	return sm.joinHandlers.add(fn)
}

// OnMessage はメッセージチャネルの購読者を登録します。
func (sm *SessionManager) OnMessage(fn func(Inbound)) Unsubscribe {
	return sm.messageHandlers.add(fn)
}

// OnState はエンティティ状態チャネルの購読者を登録します。
func (sm *SessionManager) OnState(fn func(StateDelta)) Unsubscribe {
	return sm.stateHandlers.add(fn)
}

// OnError は接続エラーの購読者を登録します。渡されるのは *ConnectionError です。
func (sm *SessionManager) OnError(fn func(error)) Unsubscribe {
	return sm.errorHandlers.add(fn)
}

// SessionID はサーバーに割り当てられた自分のセッションIDです。参加前は空です。
func (sm *SessionManager) SessionID() domain.SessionID {
	if session := sm.currentSession(); session != nil {
		return session.ID()
	}
	return ""
}

func (sm *SessionManager) IsSelf(id domain.SessionID) bool {
	session := sm.currentSession()
	return session != nil && session.IsSelf(id)
}

// Done はセッションのゴルーチンがすべて終了すると close されます。
func (sm *SessionManager) Done() <-chan struct{} {
	return sm.done
}

// Err はセッションが失敗していればその *ConnectionError を返します。
func (sm *SessionManager) Err() error {
	if ce := sm.failure.Load(); ce != nil {
		return ce
	}
	return nil
}

func (sm *SessionManager) currentSession() *domain.Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.session
}

func (sm *SessionManager) run(ctx context.Context, session *domain.Session) {
	defer close(sm.done)

	conn, err := sm.handshake(ctx, session)
	if err != nil {
		sm.fail(ctx, session, domain.CloseJoinFailed, err)
		return
	}
	defer func() {
		conn.Close(session.CloseReason().String())
	}()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		sm.ownerLoop(ctx, session)
		return nil
	})
	eg.Go(func() error {
		sm.readLoop(ctx, conn)
		return nil
	})
	eg.Go(func() error {
		sm.writeLoop(ctx, session, conn)
		return nil
	})
	_ = eg.Wait()
	slog.DebugContext(ctx, "session loops stopped", "sessionID", session.ID(), "reason", session.CloseReason())
}

// handshake はダイアルして join を送り、joined か join_error を待ちます。
// 参加前に届いた他のフレームは保留し、joined の配送後に順に処理します。
func (sm *SessionManager) handshake(ctx context.Context, session *domain.Session) (*Connection, error) {
	ctx, span := sm.tracer.Start(ctx, "session.join", trace.WithAttributes(
		attribute.String("room", session.Room),
		attribute.String("session.local_id", session.LocalID),
	))
	defer span.End()

	joinCtx, cancel := context.WithTimeout(ctx, sm.cfg.JoinTimeout)
	defer cancel()
	go func() {
		select {
		case <-sm.flushReq:
			cancel()
		case <-joinCtx.Done():
		}
	}()

	conn, joined, pending, err := sm.join(joinCtx, session)
	if err != nil {
		if errors.Is(joinCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %v", ErrJoinTimeout, sm.cfg.JoinTimeout, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	session.Assign(joined.SessionID)
	span.SetAttributes(attribute.String("session.id", joined.SessionID.String()))
	slog.InfoContext(ctx, "session joined room", "sessionID", joined.SessionID, "room", joined.Room, "localID", session.LocalID)

	sm.enqueue(ctx, inboundItem{kind: inJoined, joined: joined})
	for _, frame := range pending {
		sm.handleFrame(ctx, frame)
	}
	return conn, nil
}

func (sm *SessionManager) join(ctx context.Context, session *domain.Session) (*Connection, JoinedEvent, []domain.Frame, error) {
	transport, err := sm.dialer.Dial(ctx, sm.cfg.URL)
	if err != nil {
		return nil, JoinedEvent{}, nil, fmt.Errorf("dial %s: %w", sm.cfg.URL, err)
	}
	conn := NewConnection(session, transport)

	data, err := EncodeOutbound(JoinAction{Room: session.Room, Options: sm.cfg.Options})
	if err != nil {
		conn.Close("join failed")
		return nil, JoinedEvent{}, nil, err
	}
	if err := conn.Write(ctx, domain.Frame{Kind: domain.FrameText, Data: data}); err != nil {
		conn.Close("join failed")
		return nil, JoinedEvent{}, nil, fmt.Errorf("send join: %w", err)
	}

	var pending []domain.Frame
	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			conn.Close("join failed")
			return nil, JoinedEvent{}, nil, fmt.Errorf("await joined: %w", err)
		}
		if frame.Kind == domain.FrameText {
			msg, err := DecodeInbound(frame.Data)
			if err != nil {
				slog.WarnContext(ctx, "failed to decode message during join", "err", err)
				continue
			}
			switch m := msg.(type) {
			case JoinedEvent:
				if m.SessionID.IsEmpty() {
					conn.Close("join failed")
					return nil, JoinedEvent{}, nil, fmt.Errorf("%w: empty session id", ErrJoinRejected)
				}
				if m.Room == "" {
					m.Room = session.Room
				}
				return conn, m, pending, nil
			case JoinErrorEvent:
				conn.Close("join failed")
				return nil, JoinedEvent{}, nil, fmt.Errorf("%w: %s", ErrJoinRejected, m.Reason)
			}
		}
		if len(pending) >= maxPendingFrames {
			slog.WarnContext(ctx, "dropping frame received before join", "kind", frame.Kind)
			continue
		}
		pending = append(pending, frame)
	}
}

// ownerLoop はセッションの状態を監視し、接続断と無通信を検出します。
func (sm *SessionManager) ownerLoop(ctx context.Context, session *domain.Session) {
	ticker := time.NewTicker(sm.watchInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sm.ctrlCh:
			sm.handleControlEvent(ctx, session, ev)
		case <-ticker.C:
			if err := sm.checkIdle(session); err != nil {
				sm.handleControlEvent(ctx, session, endpointEvent{kind: evIdle, err: err})
			}
		}
	}
}

// checkIdle は受信が途絶えていれば接続断のエラーを返します。送信だけの無通信は死亡後などに起こるので切断しません。
func (sm *SessionManager) checkIdle(session *domain.Session) error {
	idle, reason := session.IsIdle(sm.cfg.IdleTimeout)
	if !idle || !reason.Has(domain.IdleRead) {
		return nil
	}
	return fmt.Errorf("%w: idle (%s) for %s", ErrConnectionLost, reason, sm.cfg.IdleTimeout)
}

func (sm *SessionManager) readLoop(ctx context.Context, conn *Connection) {
	for {
		frame, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			sm.sendCtrlEvent(ctx, endpointEvent{kind: evReadError, err: err})
			return
		}
		sm.handleFrame(ctx, frame)
	}
}

func (sm *SessionManager) writeLoop(ctx context.Context, session *domain.Session, conn *Connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-sm.writeCh:
			if err := conn.Write(ctx, frame); err != nil {
				sm.sendCtrlEvent(ctx, endpointEvent{kind: evWriteError, err: err})
				return
			}
		case <-sm.flushReq:
			sm.flush(ctx, conn)
			session.Close(domain.CloseLocal)
			slog.InfoContext(ctx, "session closed", "sessionID", session.ID())
			sm.cancel()
			return
		}
	}
}

func (sm *SessionManager) flush(ctx context.Context, conn *Connection) {
	for {
		select {
		case frame := <-sm.writeCh:
			if err := conn.Write(ctx, frame); err != nil {
				slog.WarnContext(ctx, "failed to flush queued write", "err", err)
				return
			}
		default:
			return
		}
	}
}

func (sm *SessionManager) handleFrame(ctx context.Context, frame domain.Frame) {
	switch frame.Kind {
	case domain.FrameText:
		msg, err := DecodeInbound(frame.Data)
		if err != nil {
			slog.WarnContext(ctx, "failed to decode message", "err", err)
			return
		}
		switch m := msg.(type) {
		case UnknownEvent:
			slog.WarnContext(ctx, "ignoring inbound message", "err", &UnknownEventError{Event: m.Name})
			return
		case JoinedEvent, JoinErrorEvent:
			slog.DebugContext(ctx, "ignoring session event after join", "event", m.Event())
			return
		}
		sm.enqueue(ctx, inboundItem{kind: inMessage, message: msg})
	case domain.FrameBinary:
		delta, err := DecodeState(frame.Data)
		if err != nil {
			slog.WarnContext(ctx, "failed to decode state frame", "err", err)
			return
		}
		sm.enqueue(ctx, inboundItem{kind: inState, state: delta})
	default:
		slog.WarnContext(ctx, "unknown frame kind", "kind", frame.Kind)
	}
}

func (sm *SessionManager) enqueue(ctx context.Context, item inboundItem) {
	select {
	case sm.inboundCh <- item:
	case <-ctx.Done():
	}
}

func (sm *SessionManager) deliver(ctx context.Context, item inboundItem) bool {
	switch item.kind {
	case inJoined:
		sm.joinHandlers.emit(item.joined)
	case inMessage:
		sm.messageHandlers.emit(item.message)
	case inState:
		if _, ok := item.state.(Snapshot); ok {
			if sm.snapshotDelivered {
				slog.DebugContext(ctx, "dropping repeated snapshot")
				return false
			}
			sm.snapshotDelivered = true
		}
		sm.stateHandlers.emit(item.state)
	default:
		return false
	}
	return true
}

// handleControlEvent は制御チャネルからのイベントを処理しセッションの状態を更新する唯一の関数です。
func (sm *SessionManager) handleControlEvent(ctx context.Context, session *domain.Session, ev endpointEvent) {
	switch ev.kind {
	case evReadError, evWriteError:
		sm.fail(ctx, session, domain.CloseConnectionLost, fmt.Errorf("%w: %s: %v", ErrConnectionLost, ev.kind, ev.err))
	case evIdle:
		sm.fail(ctx, session, domain.CloseIdle, ev.err)
	default:
		slog.WarnContext(ctx, "unknown endpoint event kind", "kind", ev.kind)
	}
}

// fail はセッションを終了し、ローカルからの終了でなければエラーを配送待ちにします。
func (sm *SessionManager) fail(ctx context.Context, session *domain.Session, reason domain.CloseReason, err error) {
	defer sm.cancel()
	if sm.closeRequested.Load() {
		session.Close(domain.CloseLocal)
		return
	}
	if !session.Close(reason) {
		return
	}
	slog.WarnContext(ctx, "session terminated", "sessionID", session.ID(), "reason", reason, "err", err)
	sm.failure.Store(&ConnectionError{Room: session.Room, Err: err})
}

func (sm *SessionManager) sendCtrlEvent(ctx context.Context, ev endpointEvent) {
	select {
	case sm.ctrlCh <- ev:
	case <-ctx.Done():
	}
}

func (sm *SessionManager) watchInterval() time.Duration {
	interval := time.Second
	if sm.cfg.IdleTimeout > 0 && sm.cfg.IdleTimeout/4 < interval {
		interval = sm.cfg.IdleTimeout / 4
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}

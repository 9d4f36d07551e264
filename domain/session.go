package domain

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SessionID はサーバーがルーム参加時に割り当てるセッション識別子です。
type SessionID string

func (id SessionID) String() string { return string(id) }

func (id SessionID) IsEmpty() bool { return id == "" }

// Session はクライアント側から見た1接続の論理的な状態を表す構造体です。
// LocalID は接続ごとにクライアントが採番し、ログの突き合わせに使います。
type Session struct {
	LocalID string
	Room    string

	id atomic.Value // SessionID

	// activity
	lastRead  atomic.Int64
	lastWrite atomic.Int64

	// lifecycle
	closed      atomic.Bool
	closeReason atomic.Uint32
}

func NewSession(room string) *Session {
	s := &Session{
		LocalID: uuid.NewString(),
		Room:    room,
	}
	now := time.Now().UnixNano()
	s.lastRead.Store(now)
	s.lastWrite.Store(now)
	return s
}

// Assign はサーバーから通知されたセッションIDを記録します。2回目以降の割り当ては無視されます。
func (s *Session) Assign(id SessionID) bool {
	return s.id.CompareAndSwap(nil, id)
}

// ID は割り当て済みのセッションIDを返します。参加前は空です。
func (s *Session) ID() SessionID {
	if v, ok := s.id.Load().(SessionID); ok {
		return v
	}
	return ""
}

// IsSelf は id が自分自身のセッションを指すかを返します。
func (s *Session) IsSelf(id SessionID) bool {
	self := s.ID()
	return !self.IsEmpty() && self == id
}

func (s *Session) TouchRead() {
	s.lastRead.Store(time.Now().UnixNano())
}

func (s *Session) TouchWrite() {
	s.lastWrite.Store(time.Now().UnixNano())
}

func (s *Session) Close(reason CloseReason) bool {
	if s.closed.CompareAndSwap(false, true) {
		s.closeReason.Store(uint32(reason))
		return true
	}
	return false
}

func (s *Session) CloseReason() CloseReason {
	return CloseReason(s.closeReason.Load())
}

func (s *Session) IsIdle(timeout time.Duration) (bool, IdleReason) {
	if timeout <= 0 {
		return false, IdleDisabled
	}
	var reason IdleReason
	if s.IsReadIdle(timeout) {
		reason |= IdleRead
	}
	if s.IsWriteIdle(timeout) {
		reason |= IdleWrite
	}
	return reason != IdleNone, reason
}

func (s *Session) IsReadIdle(timeout time.Duration) bool {
	return isIdleSince(unixNanoToTime(s.lastRead.Load()), timeout)
}

func (s *Session) IsWriteIdle(timeout time.Duration) bool {
	return isIdleSince(unixNanoToTime(s.lastWrite.Load()), timeout)
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func isIdleSince(last time.Time, timeout time.Duration) bool {
	return time.Since(last) > timeout
}

func unixNanoToTime(nano int64) time.Time {
	return time.Unix(0, nano)
}

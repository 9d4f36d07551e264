package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackpressure は書き込みキューが満杯の場合に返されるエラーです。
	ErrBackpressure = errors.New("write queue is full, apply backpressure")
	// ErrSessionClosed は終了済みのセッションに対する操作で返されるエラーです。
	ErrSessionClosed = errors.New("session is closed")
	// ErrNotConnected は接続前に送信しようとした場合に返されるエラーです。
	ErrNotConnected = errors.New("session is not connected")
	// ErrAlreadyConnected は同じ SessionManager で二度目の Connect を呼んだ場合のエラーです。
	ErrAlreadyConnected     = errors.New("session manager already connected")
	ErrEmptyRoom            = errors.New("room name is empty")
	ErrInitializationFailed = errors.New("failed to initialize session manager")

	ErrJoinTimeout    = errors.New("join handshake timed out")
	ErrJoinRejected   = errors.New("join rejected by server")
	ErrConnectionLost = errors.New("connection lost")
)

// ConnectionError は参加ハンドシェイクの失敗、または参加後の接続断を表します。
// OnError の購読者に配送され、セッションはそれ以降使用できません。
type ConnectionError struct {
	Room string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to room %q failed: %v", e.Room, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// UnknownEventError は認識できない event 名を持つ受信メッセージを表します。
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown inbound event %q", e.Event)
}

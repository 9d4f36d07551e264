package domain

import (
	"context"
)

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport,Dialer

// FrameKind はトランスポート上のフレーム種別です。
// テキストはメッセージチャネル、バイナリはエンティティ状態チャネルに使います。
type FrameKind uint8

const (
	FrameText FrameKind = iota + 1
	FrameBinary
)

func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Frame はトランスポートで送受信する1メッセージです。
type Frame struct {
	Kind FrameKind
	Data []byte
}

// Transport は Connection（物理接続）が依存するI/O境界です。
type Transport interface {
	Read(ctx context.Context) (Frame, error)
	Write(ctx context.Context, frame Frame) error
	Close(code int32, reason string) error
}

// Dialer はゲームサーバーへの物理接続を確立します。
type Dialer interface {
	Dial(ctx context.Context, url string) (Transport, error)
}

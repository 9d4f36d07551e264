package domain

import "fmt"

type IdleReason uint8

const (
	IdleNone     IdleReason = 0
	IdleRead     IdleReason = 1 << 0
	IdleWrite    IdleReason = 1 << 1
	IdleDisabled IdleReason = 1 << 7 // timeout<=0 のとき
)

func (r IdleReason) Has(x IdleReason) bool { return r&x != 0 }

func (r IdleReason) String() string {
	if r == IdleNone {
		return "none"
	}
	if r == IdleDisabled {
		return "disabled"
	}
	out := ""
	add := func(s string) {
		if out == "" {
			out = s
			return
		}
		out += "|" + s
	}
	if r.Has(IdleRead) {
		add("read")
	}
	if r.Has(IdleWrite) {
		add("write")
	}
	if out == "" {
		return fmt.Sprintf("unknown(%d)", r)
	}
	return out
}

// CloseReason はセッションが終了した理由です。
type CloseReason uint32

const (
	CloseNone  CloseReason = iota
	CloseLocal             // クライアント側からの終了（死亡・シャットダウン）
	CloseJoinFailed
	CloseConnectionLost
	CloseIdle
)

func (r CloseReason) String() string {
	switch r {
	case CloseNone:
		return "none"
	case CloseLocal:
		return "local"
	case CloseJoinFailed:
		return "join_failed"
	case CloseConnectionLost:
		return "connection_lost"
	case CloseIdle:
		return "idle"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(r))
	}
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Nzm15/battle-arena-main/domain"
)

// アクション名（クライアント -> サーバー）
const (
	ActionJoin            = "join"
	ActionInitialPosition = "initial_position"
	ActionMove            = "move"
	ActionShootBullet     = "shoot_bullet"
	ActionPlayerRevived   = "player_revived"
	ActionRevived         = "revived"
	ActionDead            = "dead"
)

// イベント名（サーバー -> クライアント）
const (
	EventJoined        = "joined"
	EventJoinError     = "join_error"
	EventStartPosition = "start_position"
	EventNewPlayer     = "new_player"
	EventHit           = "hit"
	EventPlayerRevived = "player_revived"
)

var (
	ErrEmptyFrame        = errors.New("empty frame")
	ErrMissingEvent      = errors.New("inbound message has no event")
	ErrNilOutboundAction = errors.New("nil outbound action")
)

// Outbound はクライアントからサーバーへ送るアクションの閉じた直和型です。
type Outbound interface {
	Action() string
	outbound()
}

// JoinAction はセッション層のルーム参加要求です。
type JoinAction struct {
	Room    string         `json:"room"`
	Options map[string]any `json:"options,omitempty"`
}

// InitialPositionAction はスポーン地点の座標をサーバーに通知します。
type InitialPositionAction struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MoveAction struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
}

type ShootBulletAction struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
	SpeedX float64 `json:"speed_x"`
	SpeedY float64 `json:"speed_y"`
}

type PlayerRevivedAction struct {
	ID       domain.SessionID `json:"id"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
	Rotation float64          `json:"rotation"`
}

// RevivedAction と DeadAction はデータを持たない終端通知です。
type RevivedAction struct{}

type DeadAction struct{}

func (JoinAction) Action() string            { return ActionJoin }
func (InitialPositionAction) Action() string { return ActionInitialPosition }
func (MoveAction) Action() string            { return ActionMove }
func (ShootBulletAction) Action() string     { return ActionShootBullet }
func (PlayerRevivedAction) Action() string   { return ActionPlayerRevived }
func (RevivedAction) Action() string         { return ActionRevived }
func (DeadAction) Action() string            { return ActionDead }

func (JoinAction) outbound()            {}
func (InitialPositionAction) outbound() {}
func (MoveAction) outbound()            {}
func (ShootBulletAction) outbound()     {}
func (PlayerRevivedAction) outbound()   {}
func (RevivedAction) outbound()         {}
func (DeadAction) outbound()            {}

type outboundEnvelope struct {
	Action string `json:"action"`
	Data   any    `json:"data,omitempty"`
}

// EncodeOutbound はアクションを {"action":..., "data":...} 形式のJSONにエンコードします。
// データを持たないアクションは data を省略します。
func EncodeOutbound(msg Outbound) ([]byte, error) {
	if msg == nil {
		return nil, ErrNilOutboundAction
	}
	env := outboundEnvelope{Action: msg.Action()}
	switch m := msg.(type) {
	case RevivedAction, DeadAction:
	case JoinAction:
		env.Data = m
	case InitialPositionAction:
		env.Data = m
	case MoveAction:
		env.Data = m
	case ShootBulletAction:
		env.Data = m
	case PlayerRevivedAction:
		env.Data = m
	default:
		return nil, fmt.Errorf("encode outbound: unsupported action %T", msg)
	}
	return json.Marshal(env)
}

// Inbound はサーバーから届くメッセージイベントの閉じた直和型です。
// 未知のイベントは UnknownEvent として表現され、呼び出し側で明示的に扱います。
type Inbound interface {
	Event() string
	inbound()
}

// JoinedEvent はルーム参加ハンドシェイクの完了通知です。
type JoinedEvent struct {
	SessionID domain.SessionID `json:"session_id"`
	Room      string           `json:"room"`
}

// JoinErrorEvent はサーバーが参加を拒否したことを表します。
type JoinErrorEvent struct {
	Reason string `json:"reason"`
}

// StartPositionEvent は自分のスポーン地点番号の割り当てです。
type StartPositionEvent struct {
	Position int `json:"position"`
}

type NewPlayerEvent struct {
	ID       domain.SessionID `json:"id"`
	Position int              `json:"position"`
	Rotation float64          `json:"rotation"`
}

type HitEvent struct {
	PunisherID domain.SessionID `json:"punisher_id"`
	PunishedID domain.SessionID `json:"punished_id"`
}

type PlayerRevivedEvent struct {
	ID       domain.SessionID `json:"id"`
	Position int              `json:"position"`
}

// UnknownEvent は認識できない event を持つメッセージです。
type UnknownEvent struct {
	Name string
	Raw  json.RawMessage
}

func (JoinedEvent) Event() string        { return EventJoined }
func (JoinErrorEvent) Event() string     { return EventJoinError }
func (StartPositionEvent) Event() string { return EventStartPosition }
func (NewPlayerEvent) Event() string     { return EventNewPlayer }
func (HitEvent) Event() string           { return EventHit }
func (PlayerRevivedEvent) Event() string { return EventPlayerRevived }
func (e UnknownEvent) Event() string     { return e.Name }

func (JoinedEvent) inbound()        {}
func (JoinErrorEvent) inbound()     {}
func (StartPositionEvent) inbound() {}
func (NewPlayerEvent) inbound()     {}
func (HitEvent) inbound()           {}
func (PlayerRevivedEvent) inbound() {}
func (UnknownEvent) inbound()       {}

type inboundHeader struct {
	Event string `json:"event"`
}

// DecodeInbound は {event, ...fields} 形式のJSONを対応するイベント型にデコードします。
func DecodeInbound(data []byte) (Inbound, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	var header inboundHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode inbound header: %w", err)
	}
	switch header.Event {
	case "":
		return nil, ErrMissingEvent
	case EventJoined:
		return decodeAs[JoinedEvent](data)
	case EventJoinError:
		return decodeAs[JoinErrorEvent](data)
	case EventStartPosition:
		return decodeAs[StartPositionEvent](data)
	case EventNewPlayer:
		return decodeAs[NewPlayerEvent](data)
	case EventHit:
		return decodeAs[HitEvent](data)
	case EventPlayerRevived:
		return decodeAs[PlayerRevivedEvent](data)
	default:
		return UnknownEvent{Name: header.Event, Raw: json.RawMessage(data)}, nil
	}
}

func decodeAs[T Inbound](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", out.Event(), err)
	}
	return out, nil
}

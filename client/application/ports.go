package application

import (
	"context"

	"github.com/yohamta/donburi"

	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

//go:generate go tool mockgen -destination=./mocks/ports_mock.go -package=mocks . Renderer,SpawnPoints,Input,Audio,UI,Sender

// Handle はアリーナ上のエンティティへのハンドルです。破棄後は Field.Valid が false を返します。
type Handle = donburi.Entity

// VisualKind は描画側で作るビジュアルの種類です。
type VisualKind uint8

const (
	VisualLocalPlayer VisualKind = iota + 1
	VisualRemotePlayer
	VisualBullet
	VisualNPC
)

func (k VisualKind) String() string {
	switch k {
	case VisualLocalPlayer:
		return "local_player"
	case VisualRemotePlayer:
		return "remote_player"
	case VisualBullet:
		return "bullet"
	case VisualNPC:
		return "npc"
	default:
		return "unknown"
	}
}

// Renderer はエンティティの生成・破棄に合わせてビジュアルを作成・解放します。
// ローカルプレイヤーはアリーナに載らないので donburi.Null を渡します。
type Renderer interface {
	CreateVisual(kind VisualKind, h Handle, t domain.Transform)
	DestroyVisual(kind VisualKind, h Handle)
}

// SpawnPoints はマップ上の名前付きスポーン地点（"player<N>"）を提供します。
type SpawnPoints interface {
	SpawnPoint(name string) (domain.Position2D, bool)
	SpawnPoints() []domain.Position2D
}

// KeyState はフレーム開始時点のキー入力です。
type KeyState struct {
	Left, Right, Up, Down bool
	Interact              bool
}

// PointerState はワールド座標でのポインタ位置とボタン状態です。
type PointerState struct {
	X, Y float64
	Down bool
}

// Input は入力状態を返すポーリング型のポートです。Game の生成時に一度だけ渡します。
type Input interface {
	Keys() KeyState
	Pointer() PointerState
}

type Sound uint8

const (
	SoundBackgroundMusic Sound = iota + 1
	SoundBullet
)

func (s Sound) String() string {
	switch s {
	case SoundBackgroundMusic:
		return "background_music"
	case SoundBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

type Audio interface {
	Play(sound Sound, loop bool)
}

// UI は状態機械やメッセージに応じた画面表示の要求を受け取ります。
// 利用者の応答（復活する・しない、解答）は Game のメソッドでループスレッドから返します。
type UI interface {
	Alert(message string)
	ShowDialog(lines []string)
	ShowRevivalPrompt()
	ShowChallenge(c MathChallenge)
	HideChallenge()
	SetHitMarker(visible bool)
	SetScore(text string)
	SetInteractionPrompt(visible bool)
}

// Sender はサーバーへのアクション送信口です。*clientdomain.SessionManager が満たします。
type Sender interface {
	Send(ctx context.Context, msg clientdomain.Outbound) error
}

// EventSource はセッションの購読口です。*clientdomain.SessionManager が満たします。
type EventSource interface {
	OnJoin(fn func(clientdomain.JoinedEvent)) clientdomain.Unsubscribe
	OnMessage(fn func(clientdomain.Inbound)) clientdomain.Unsubscribe
	OnState(fn func(clientdomain.StateDelta)) clientdomain.Unsubscribe
	OnError(fn func(error)) clientdomain.Unsubscribe
}

package application

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/yohamta/donburi"

	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

// PlayerStatus はローカルプレイヤーの状態です。初期状態は StatusAlive、終端は StatusDead です。
type PlayerStatus uint8

const (
	StatusAlive PlayerStatus = iota
	StatusHit
	StatusAwaitingRevivalChoice
	StatusAnsweringChallenge
	StatusDead
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusHit:
		return "hit"
	case StatusAwaitingRevivalChoice:
		return "awaiting_revival_choice"
	case StatusAnsweringChallenge:
		return "answering_challenge"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// StatusEvent は状態機械への入力です。
type StatusEvent uint8

const (
	EventHitNotification StatusEvent = iota + 1
	EventPromptShown
	EventChooseRevive
	EventDeclineRevive
	EventAnswerCorrect
	EventAnswerIncorrect
)

func (e StatusEvent) String() string {
	switch e {
	case EventHitNotification:
		return "hit_notification"
	case EventPromptShown:
		return "prompt_shown"
	case EventChooseRevive:
		return "choose_revive"
	case EventDeclineRevive:
		return "decline_revive"
	case EventAnswerCorrect:
		return "answer_correct"
	case EventAnswerIncorrect:
		return "answer_incorrect"
	default:
		return "unknown"
	}
}

// Transition は1回の入力の結果です。Changed が false なら状態は変わっていません。
type Transition struct {
	From    PlayerStatus
	To      PlayerStatus
	Event   StatusEvent
	Changed bool
}

// LocalPlayer は自分自身のプレイヤーです。リモートアクターのアリーナには載りません。
type LocalPlayer struct {
	domain.Transform
	Status    PlayerStatus
	Spawned   bool
	Frozen    bool
	HitMarked bool
}

const killedMessage = "You have been killed.\nTo restart, reload the page"

// StatusMachine はローカルプレイヤーの被弾から復活・死亡までの遷移を管理します。
// 終端への遷移ごとに送信するアクション列はちょうど1回だけです。
type StatusMachine struct {
	player    LocalPlayer
	self      domain.SessionID
	challenge *MathChallenge

	sender   Sender
	ui       UI
	renderer Renderer
	spawns   SpawnPoints
	rng      *rand.Rand
	bank     *QuestionBank

	onDead func(ctx context.Context)
}

func NewStatusMachine(sender Sender, ui UI, renderer Renderer, spawns SpawnPoints, rng *rand.Rand, bank *QuestionBank) *StatusMachine {
	return &StatusMachine{
		sender:   sender,
		ui:       ui,
		renderer: renderer,
		spawns:   spawns,
		rng:      rng,
		bank:     bank,
	}
}

// OnDead は StatusDead に遷移した直後に呼ばれる関数を設定します。
func (m *StatusMachine) OnDead(fn func(ctx context.Context)) {
	m.onDead = fn
}

func (m *StatusMachine) SetSelf(id domain.SessionID) { m.self = id }

func (m *StatusMachine) Status() PlayerStatus { return m.player.Status }

func (m *StatusMachine) Player() LocalPlayer { return m.player }

// Challenge は解答中の問題を返します。
func (m *StatusMachine) Challenge() (MathChallenge, bool) {
	if m.challenge == nil {
		return MathChallenge{}, false
	}
	return *m.challenge, true
}

// Spawn はローカルプレイヤーを t に出現させます。既に出現済み、または死亡後は何もしません。
func (m *StatusMachine) Spawn(ctx context.Context, t domain.Transform) bool {
	if m.player.Spawned || m.player.Status == StatusDead {
		slog.DebugContext(ctx, "local player already spawned", "status", m.player.Status)
		return false
	}
	m.player.Transform = t
	m.player.Spawned = true
	m.renderer.CreateVisual(VisualLocalPlayer, donburi.Null, t)
	slog.InfoContext(ctx, "local player spawned", "sessionID", m.self, "x", t.X, "y", t.Y)
	return true
}

// Move は生存中のローカルプレイヤーの位置と向きを更新します。
func (m *StatusMachine) Move(t domain.Transform) bool {
	if !m.player.Spawned || m.player.Status != StatusAlive || m.player.Frozen {
		return false
	}
	m.player.Transform = t
	return true
}

// Release はローカルプレイヤーのビジュアルを解放します。
func (m *StatusMachine) Release(ctx context.Context) {
	if !m.player.Spawned {
		return
	}
	m.player.Spawned = false
	m.renderer.DestroyVisual(VisualLocalPlayer, donburi.Null)
	slog.DebugContext(ctx, "local player released", "sessionID", m.self)
}

func (m *StatusMachine) HitNotification(ctx context.Context) Transition {
	return m.Fire(ctx, EventHitNotification)
}

func (m *StatusMachine) PromptShown(ctx context.Context) Transition {
	return m.Fire(ctx, EventPromptShown)
}

func (m *StatusMachine) ChooseRevive(ctx context.Context) Transition {
	return m.Fire(ctx, EventChooseRevive)
}

func (m *StatusMachine) DeclineRevive(ctx context.Context) Transition {
	return m.Fire(ctx, EventDeclineRevive)
}

// SubmitAnswer は選択肢の番号で解答し、正誤に応じて遷移します。
func (m *StatusMachine) SubmitAnswer(ctx context.Context, optionIndex int) Transition {
	if m.player.Status != StatusAnsweringChallenge || m.challenge == nil {
		return m.noop(ctx, EventAnswerIncorrect)
	}
	if optionIndex == m.challenge.CorrectIndex {
		return m.Fire(ctx, EventAnswerCorrect)
	}
	return m.Fire(ctx, EventAnswerIncorrect)
}

// Fire は状態遷移表に従って ev を処理します。表にない組み合わせは何もしません。
// 出現前の被弾通知も無視します。
func (m *StatusMachine) Fire(ctx context.Context, ev StatusEvent) Transition {
	from := m.player.Status
	switch {
	case from == StatusAlive && ev == EventHitNotification && m.player.Spawned:
		m.player.Frozen = true
		m.player.HitMarked = true
		m.ui.SetHitMarker(true)
		m.ui.ShowRevivalPrompt()
		return m.to(ctx, ev, StatusHit)

	case from == StatusHit && ev == EventPromptShown:
		return m.to(ctx, ev, StatusAwaitingRevivalChoice)

	case (from == StatusHit || from == StatusAwaitingRevivalChoice) && ev == EventChooseRevive:
		ch, err := GenerateChallenge(m.rng, m.bank)
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate challenge", "err", err)
			return m.noop(ctx, ev)
		}
		m.challenge = &ch
		m.ui.ShowChallenge(ch)
		return m.to(ctx, ev, StatusAnsweringChallenge)

	case (from == StatusHit || from == StatusAwaitingRevivalChoice) && ev == EventDeclineRevive,
		from == StatusAnsweringChallenge && ev == EventAnswerIncorrect:
		m.die(ctx)
		return m.to(ctx, ev, StatusDead)

	case from == StatusAnsweringChallenge && ev == EventAnswerCorrect:
		m.revive(ctx)
		return m.to(ctx, ev, StatusAlive)
	}
	return m.noop(ctx, ev)
}

func (m *StatusMachine) to(ctx context.Context, ev StatusEvent, status PlayerStatus) Transition {
	tr := Transition{From: m.player.Status, To: status, Event: ev, Changed: true}
	m.player.Status = status
	slog.InfoContext(ctx, "player status changed", "sessionID", m.self, "from", tr.From, "to", tr.To, "event", ev)
	if status == StatusDead && m.onDead != nil {
		m.onDead(ctx)
	}
	return tr
}

func (m *StatusMachine) noop(ctx context.Context, ev StatusEvent) Transition {
	slog.DebugContext(ctx, "status event ignored", "sessionID", m.self, "status", m.player.Status, "event", ev)
	return Transition{From: m.player.Status, To: m.player.Status, Event: ev}
}

// die は dead を1回だけ送信し、ローカルプレイヤーを解放します。
func (m *StatusMachine) die(ctx context.Context) {
	m.challenge = nil
	m.ui.HideChallenge()
	m.send(ctx, clientdomain.DeadAction{})
	m.Release(ctx)
	m.ui.Alert(killedMessage)
}

// revive はランダムなスポーン地点に戻り、player_revived, revived, move の順に送信します。
func (m *StatusMachine) revive(ctx context.Context) {
	t := m.player.Transform
	if points := m.spawns.SpawnPoints(); len(points) > 0 {
		p := points[m.rng.IntN(len(points))]
		t.X, t.Y = p.X, p.Y
	} else {
		slog.WarnContext(ctx, "no spawn points, reviving in place", "sessionID", m.self)
	}
	m.player.Transform = t
	m.player.Frozen = false
	m.player.HitMarked = false
	m.challenge = nil
	m.ui.HideChallenge()
	m.ui.SetHitMarker(false)

	m.send(ctx, clientdomain.PlayerRevivedAction{ID: m.self, X: t.X, Y: t.Y, Rotation: t.Rotation})
	m.send(ctx, clientdomain.RevivedAction{})
	m.send(ctx, clientdomain.MoveAction{X: t.X, Y: t.Y, Rotation: t.Rotation})
}

// send は結果をログに残すだけで再送はしません。
func (m *StatusMachine) send(ctx context.Context, msg clientdomain.Outbound) {
	if err := m.sender.Send(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to send action", "action", msg.Action(), "err", err)
	}
}

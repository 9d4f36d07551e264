package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

const (
	// PlayerSpeed はローカルプレイヤーの移動速度（ワールド単位/秒）です。
	PlayerSpeed = 300.0

	disconnectedMessage = "You have been disconnected from the server"
)

var ErrMissingPort = errors.New("game port is nil")

// GameConfig は Game の構成です。
type GameConfig struct {
	Map      *Map
	Alpha    float64
	Rand     *rand.Rand
	Bank     *QuestionBank
	NPCStart domain.Position2D
	// NPCBounds が空なら Map 全体を使います。
	NPCBounds Rect

	Sender   Sender
	Renderer Renderer
	Spawns   SpawnPoints
	Input    Input
	Audio    Audio
	UI       UI
}

// Game はセッションからのイベントとローカル入力を結び付け、1フレームごとに状態を進めます。
// すべてのメソッドはループスレッドから呼びます。
type Game struct {
	field     *Field
	lifecycle *Lifecycle
	status    *StatusMachine
	npc       *NPC

	sender Sender
	spawns SpawnPoints
	input  Input
	audio  Audio
	ui     UI

	joined     bool
	score      int
	nearNPC    bool
	prevKeys   KeyState
	prevPoint  PointerState
	terminated bool
	done       chan struct{}
}

// FrameSnapshot は描画側に渡す1フレーム分の状態です。
type FrameSnapshot struct {
	Local   LocalPlayer
	Remotes []RemoteActor
	Bullets []Bullet
	NPC     domain.Position2D
	Score   int
}

func NewGame(cfg GameConfig) (*Game, error) {
	if cfg.Sender == nil || cfg.Renderer == nil || cfg.Spawns == nil || cfg.Input == nil || cfg.Audio == nil || cfg.UI == nil {
		return nil, ErrMissingPort
	}
	if cfg.Map == nil {
		cfg.Map = NewMap(800, 600)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Bank == nil {
		cfg.Bank = DefaultQuestionBank()
	}
	if cfg.NPCBounds == (Rect{}) {
		cfg.NPCBounds = cfg.Map.Bounds()
	}

	field := NewField(cfg.Map, cfg.Alpha)
	status := NewStatusMachine(cfg.Sender, cfg.UI, cfg.Renderer, cfg.Spawns, cfg.Rand, cfg.Bank)
	g := &Game{
		field:     field,
		lifecycle: NewLifecycle(field, status, cfg.Renderer),
		status:    status,
		npc:       NewNPC(cfg.NPCStart, cfg.NPCBounds, cfg.Rand),
		sender:    cfg.Sender,
		spawns:    cfg.Spawns,
		input:     cfg.Input,
		audio:     cfg.Audio,
		ui:        cfg.UI,
		done:      make(chan struct{}),
	}
	status.OnDead(func(ctx context.Context) {
		g.terminate(ctx)
	})
	return g, nil
}

// Bind はセッションの購読を登録し、まとめて解除する関数を返します。
func (g *Game) Bind(ctx context.Context, src EventSource) func() {
	unsubs := []clientdomain.Unsubscribe{
		src.OnJoin(func(ev clientdomain.JoinedEvent) { g.HandleJoin(ctx, ev) }),
		src.OnMessage(func(msg clientdomain.Inbound) { g.HandleMessage(ctx, msg) }),
		src.OnState(func(d clientdomain.StateDelta) { g.HandleState(ctx, d) }),
		src.OnError(func(err error) { g.HandleError(ctx, err) }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Start はゲーム開始時の演出を行います。
func (g *Game) Start(ctx context.Context) {
	g.audio.Play(SoundBackgroundMusic, true)
	g.ui.SetScore(scoreText(g.score))
	slog.DebugContext(ctx, "game started")
}

// Done はローカルプレイヤーの死亡または接続エラーでセッションが終わると close されます。
func (g *Game) Done() <-chan struct{} { return g.done }

func (g *Game) Field() *Field { return g.field }

func (g *Game) Status() *StatusMachine { return g.status }

func (g *Game) Lifecycle() *Lifecycle { return g.lifecycle }

func (g *Game) NPC() *NPC { return g.npc }

func (g *Game) Score() int { return g.score }

func (g *Game) HandleJoin(ctx context.Context, ev clientdomain.JoinedEvent) {
	if h, ok := g.field.SetSelf(ev.SessionID); ok {
		g.lifecycle.renderer.DestroyVisual(VisualRemotePlayer, h)
	}
	g.status.SetSelf(ev.SessionID)
	g.joined = true
	slog.InfoContext(ctx, "joined room", "sessionID", ev.SessionID, "room", ev.Room)
}

func (g *Game) HandleMessage(ctx context.Context, msg clientdomain.Inbound) {
	if g.terminated {
		return
	}
	switch m := msg.(type) {
	case clientdomain.StartPositionEvent:
		if !g.joined {
			slog.WarnContext(ctx, "start position before join", "position", m.Position)
			return
		}
		p, ok := g.spawnPoint(ctx, m.Position)
		if !ok {
			return
		}
		g.send(ctx, clientdomain.InitialPositionAction{X: p.X, Y: p.Y})
		g.lifecycle.SpawnLocal(ctx, domain.Transform{X: p.X, Y: p.Y})
	case clientdomain.NewPlayerEvent:
		p, ok := g.spawnPoint(ctx, m.Position)
		if !ok {
			return
		}
		g.lifecycle.AddRemotePlayer(ctx, m.ID, domain.Transform{X: p.X, Y: p.Y, Rotation: m.Rotation})
	case clientdomain.HitEvent:
		if g.field.IsSelf(m.PunisherID) {
			g.score++
			g.ui.SetScore(scoreText(g.score))
		}
		if g.field.IsSelf(m.PunishedID) {
			g.status.HitNotification(ctx)
		}
	case clientdomain.PlayerRevivedEvent:
		p, ok := g.spawnPoint(ctx, m.Position)
		if !ok {
			return
		}
		g.lifecycle.ReviveRemotePlayer(ctx, m.ID, domain.Transform{X: p.X, Y: p.Y})
	default:
		slog.WarnContext(ctx, "unhandled message", "err", &clientdomain.UnknownEventError{Event: msg.Event()})
	}
}

func (g *Game) HandleState(ctx context.Context, delta clientdomain.StateDelta) {
	if g.terminated {
		return
	}
	switch d := delta.(type) {
	case clientdomain.Snapshot:
		g.lifecycle.ApplySnapshot(ctx, d)
	case clientdomain.PlayerAdded:
		g.lifecycle.AddRemotePlayer(ctx, d.ID, d.Player.Transform())
	case clientdomain.PlayerChanged:
		for _, c := range d.Changes {
			g.lifecycle.UpdatePlayerField(ctx, d.ID, c.Field, c.Value)
		}
	case clientdomain.PlayerRemoved:
		g.lifecycle.RemoveRemotePlayer(ctx, d.ID)
	case clientdomain.BulletAdded:
		g.lifecycle.AddBullet(ctx, Bullet{Index: d.Bullet.Index, X: d.Bullet.X, Y: d.Bullet.Y, Angle: d.Bullet.Angle})
	case clientdomain.BulletChanged:
		for _, c := range d.Changes {
			g.lifecycle.UpdateBulletField(ctx, d.Index, c.Field, c.Value)
		}
	case clientdomain.BulletRemoved:
		g.lifecycle.RemoveBullet(ctx, d.Index)
	default:
		slog.WarnContext(ctx, "unhandled state delta", "op", delta.Op())
	}
}

// HandleError は接続エラーを表示し、全エンティティを解放します。
func (g *Game) HandleError(ctx context.Context, err error) {
	if g.terminated {
		slog.DebugContext(ctx, "session error after termination", "err", err)
		return
	}
	var ce *clientdomain.ConnectionError
	switch {
	case errors.Is(err, clientdomain.ErrConnectionLost):
		g.ui.Alert(disconnectedMessage)
	case errors.As(err, &ce):
		g.ui.Alert(fmt.Sprintf("couldn't join %s", ce.Room))
	default:
		g.ui.Alert(err.Error())
	}
	g.terminate(ctx)
}

// ChooseRevive などは UI からの応答をループスレッドで状態機械に渡します。
func (g *Game) ChooseRevive(ctx context.Context) Transition  { return g.status.ChooseRevive(ctx) }
func (g *Game) DeclineRevive(ctx context.Context) Transition { return g.status.DeclineRevive(ctx) }
func (g *Game) PromptShown(ctx context.Context) Transition   { return g.status.PromptShown(ctx) }

func (g *Game) SubmitAnswer(ctx context.Context, optionIndex int) Transition {
	return g.status.SubmitAnswer(ctx, optionIndex)
}

// Update は1フレーム分ゲームを進めます。
func (g *Game) Update(ctx context.Context, dt time.Duration) {
	g.field.Interpolate()
	g.npc.Update(dt)
	if g.terminated {
		return
	}

	keys := g.input.Keys()
	pointer := g.input.Pointer()
	defer func() {
		g.prevKeys = keys
		g.prevPoint = pointer
	}()

	player := g.status.Player()
	if !player.Spawned {
		return
	}
	g.updateNPCInteraction(player.Position(), keys)

	if player.Status != StatusAlive {
		return
	}
	g.movePlayer(dt, player.Transform, keys, pointer)

	if pointer.Down && !g.prevPoint.Down {
		g.shoot(ctx)
	}
	if g.joined {
		t := g.status.Player().Transform
		g.send(ctx, clientdomain.MoveAction{X: t.X, Y: t.Y, Rotation: t.Rotation})
	}
}

func (g *Game) movePlayer(dt time.Duration, t domain.Transform, keys KeyState, pointer PointerState) {
	var vx, vy float64
	switch {
	case keys.Left:
		vx = -PlayerSpeed
	case keys.Right:
		vx = PlayerSpeed
	}
	switch {
	case keys.Up:
		vy = -PlayerSpeed
	case keys.Down:
		vy = PlayerSpeed
	}
	moving := vx != 0 || vy != 0
	pointerMoved := pointer.X != g.prevPoint.X || pointer.Y != g.prevPoint.Y

	p := g.field.Map.Clamp(domain.Position2D{
		X: t.X + vx*dt.Seconds(),
		Y: t.Y + vy*dt.Seconds(),
	})
	t.X, t.Y = p.X, p.Y
	if moving || pointerMoved {
		t.Rotation = aimRotation(t.Position(), pointer)
	}
	g.status.Move(t)
}

func (g *Game) shoot(ctx context.Context) {
	t := g.status.Player().Transform
	g.audio.Play(SoundBullet, false)
	g.send(ctx, clientdomain.ShootBulletAction{
		X:      t.X,
		Y:      t.Y,
		Angle:  t.Rotation,
		SpeedX: math.Cos(t.Rotation+math.Pi/2) * BulletSpeed,
		SpeedY: math.Sin(t.Rotation+math.Pi/2) * BulletSpeed,
	})
}

func (g *Game) updateNPCInteraction(p domain.Position2D, keys KeyState) {
	if g.npc.Near(p) {
		if !g.nearNPC {
			g.nearNPC = true
			g.ui.SetInteractionPrompt(true)
		}
		if keys.Interact && !g.prevKeys.Interact {
			g.ui.ShowDialog(g.npc.Lines)
		}
		return
	}
	if g.nearNPC {
		g.nearNPC = false
		g.ui.SetInteractionPrompt(false)
	}
}

// Snapshot は描画用に現在の状態を返します。
func (g *Game) Snapshot() FrameSnapshot {
	return FrameSnapshot{
		Local:   g.status.Player(),
		Remotes: g.field.Actors(),
		Bullets: g.field.Bullets(),
		NPC:     g.npc.Position,
		Score:   g.score,
	}
}

func (g *Game) spawnPoint(ctx context.Context, position int) (domain.Position2D, bool) {
	name := fmt.Sprintf("player%d", position)
	p, ok := g.spawns.SpawnPoint(name)
	if !ok {
		slog.WarnContext(ctx, "spawn point not found", "name", name)
	}
	return p, ok
}

func (g *Game) send(ctx context.Context, msg clientdomain.Outbound) {
	if err := g.sender.Send(ctx, msg); err != nil {
		slog.DebugContext(ctx, "action not sent", "action", msg.Action(), "err", err)
	}
}

func (g *Game) terminate(ctx context.Context) {
	if g.terminated {
		return
	}
	g.terminated = true
	g.lifecycle.ReleaseAll(ctx)
	close(g.done)
}

func scoreText(score int) string {
	return fmt.Sprintf("numbers of kills : %d", score)
}

// aimRotation はプレイヤーからポインタへの向きを返します。スプライトが上向きなので π/2 を足します。
func aimRotation(from domain.Position2D, pointer PointerState) float64 {
	return math.Atan2(pointer.Y-from.Y, pointer.X-from.X) + math.Pi/2
}

func distance(a, b domain.Position2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

package application

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yohamta/donburi"

	"github.com/Nzm15/battle-arena-main/domain"
)

var (
	// ErrSelfShadow は自分自身のセッションIDをリモートアクターとして登録しようとした場合のエラーです。
	ErrSelfShadow = errors.New("local session cannot be shadowed")
	// ErrStaleEntity は存在しないIDやインデックスへの操作で返されます。呼び出し側では無視して構いません。
	ErrStaleEntity = errors.New("stale entity")
	// ErrUnknownField は補間対象でないフィールドの変更通知で返されます。
	ErrUnknownField = errors.New("unknown field")
)

// 状態チャネルのフィールド名
const (
	FieldX        = "x"
	FieldY        = "y"
	FieldRotation = "rotation"
	FieldAngle    = "angle"
)

// RemoteActor は他プレイヤーのローカルな影です。
// Target はサーバーから届いた最新の値、Current は描画に使う補間中の値です。
type RemoteActor struct {
	ID      domain.SessionID
	Current domain.Transform
	Target  domain.Transform
}

var remoteActorComponent = donburi.NewComponentType[RemoteActor]()

// Field はリモートアクターと弾丸を保持するアリーナです。
// すべての操作はループスレッドから呼ばれる前提で、ロックを持ちません。
type Field struct {
	Map   *Map
	world donburi.World
	alpha float64

	self    domain.SessionID
	actors  map[domain.SessionID]Handle
	bullets map[int]Handle
}

// NewField は補間係数 alpha でフィールドを作成します。(0,1] の外の値は Alpha になります。
func NewField(m *Map, alpha float64) *Field {
	return &Field{
		Map:     m,
		world:   donburi.NewWorld(),
		alpha:   normalizeAlpha(alpha),
		actors:  make(map[domain.SessionID]Handle),
		bullets: make(map[int]Handle),
	}
}

func (f *Field) Alpha() float64 { return f.alpha }

// SetSelf は自分のセッションIDを記録します。
// 既にそのIDの影が存在していれば削除し、そのハンドルを返します。
func (f *Field) SetSelf(id domain.SessionID) (Handle, bool) {
	f.self = id
	h, ok := f.actors[id]
	if !ok {
		return donburi.Null, false
	}
	f.world.Remove(h)
	delete(f.actors, id)
	return h, true
}

func (f *Field) Self() domain.SessionID { return f.self }

// IsSelf は id が自分自身かを返します。参加前は常に false です。
func (f *Field) IsSelf(id domain.SessionID) bool {
	return !f.self.IsEmpty() && f.self == id
}

// UpsertTarget は初見のIDならアクターを作成し（Current = Target = t）、既存なら Target だけを更新します。
func (f *Field) UpsertTarget(id domain.SessionID, t domain.Transform) (Handle, bool, error) {
	if f.IsSelf(id) {
		return donburi.Null, false, fmt.Errorf("%w: %s", ErrSelfShadow, id)
	}
	if h, ok := f.actors[id]; ok {
		actor := remoteActorComponent.Get(f.world.Entry(h))
		actor.Target = t
		return h, false, nil
	}
	h := f.world.Create(remoteActorComponent)
	remoteActorComponent.SetValue(f.world.Entry(h), RemoteActor{ID: id, Current: t, Target: t})
	f.actors[id] = h
	return h, true, nil
}

// Teleport は補間を経ずに Current と Target を t に揃えます。
func (f *Field) Teleport(id domain.SessionID, t domain.Transform) error {
	h, ok := f.actors[id]
	if !ok {
		return fmt.Errorf("%w: player %s", ErrStaleEntity, id)
	}
	actor := remoteActorComponent.Get(f.world.Entry(h))
	actor.Current = t
	actor.Target = t
	return nil
}

// SetPlayerField は x, y, rotation の変更を Target に反映します。
// それ以外のフィールドは ErrUnknownField を返して無視します。
func (f *Field) SetPlayerField(id domain.SessionID, field string, value float64) error {
	h, ok := f.actors[id]
	if !ok {
		return fmt.Errorf("%w: player %s", ErrStaleEntity, id)
	}
	actor := remoteActorComponent.Get(f.world.Entry(h))
	switch field {
	case FieldX:
		actor.Target.X = value
	case FieldY:
		actor.Target.Y = value
	case FieldRotation:
		actor.Target.Rotation = value
	default:
		return fmt.Errorf("%w: player.%s", ErrUnknownField, field)
	}
	return nil
}

// Remove はアクターを削除し、描画側で解放するためのハンドルを返します。
func (f *Field) Remove(id domain.SessionID) (Handle, error) {
	h, ok := f.actors[id]
	if !ok {
		return donburi.Null, fmt.Errorf("%w: player %s", ErrStaleEntity, id)
	}
	f.world.Remove(h)
	delete(f.actors, id)
	return h, nil
}

// Valid はハンドルが生きているかを返します。削除済みのハンドルは false です。
func (f *Field) Valid(h Handle) bool {
	return f.world.Valid(h)
}

// Actor は指定IDのアクターのコピーを返します。
func (f *Field) Actor(id domain.SessionID) (RemoteActor, bool) {
	h, ok := f.actors[id]
	if !ok {
		return RemoteActor{}, false
	}
	return *remoteActorComponent.Get(f.world.Entry(h)), true
}

// Handle は指定IDのアクターのハンドルを返します。
func (f *Field) Handle(id domain.SessionID) (Handle, bool) {
	h, ok := f.actors[id]
	return h, ok
}

// Actors は全アクターをID順で返します。
func (f *Field) Actors() []RemoteActor {
	actors := make([]RemoteActor, 0, len(f.actors))
	for _, h := range f.actors {
		actors = append(actors, *remoteActorComponent.Get(f.world.Entry(h)))
	}
	slices.SortFunc(actors, func(a, b RemoteActor) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return actors
}

func (f *Field) ActorCount() int { return len(f.actors) }

// Interpolate は1フレーム分、全アクターの Current を Target に近づけます。
// 位置は残差の alpha 倍、回転は最短方向の差分をそのまま加えます。
func (f *Field) Interpolate() {
	for _, h := range f.actors {
		actor := remoteActorComponent.Get(f.world.Entry(h))
		actor.Current.X = lerp(actor.Current.X, actor.Target.X, f.alpha)
		actor.Current.Y = lerp(actor.Current.Y, actor.Target.Y, f.alpha)
		actor.Current.Rotation += shortestAngle(actor.Current.Rotation, actor.Target.Rotation)
	}
}

// Clear は全エンティティを削除し、削除したアクターと弾丸のハンドルを返します。
func (f *Field) Clear() (actors []Handle, bullets []Handle) {
	for id, h := range f.actors {
		f.world.Remove(h)
		delete(f.actors, id)
		actors = append(actors, h)
	}
	for index, h := range f.bullets {
		f.world.Remove(h)
		delete(f.bullets, index)
		bullets = append(bullets, h)
	}
	return actors, bullets
}

// EntityCount はアリーナ上の全エンティティ数です。
func (f *Field) EntityCount() int {
	return f.world.Len()
}

package domain

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Nzm15/battle-arena-main/domain"
	"github.com/Nzm15/battle-arena-main/utils"
)

// 状態チャネルの操作種別（バイナリフレームの op フィールド）
const (
	OpSnapshot     = "snapshot"
	OpPlayerAdd    = "player_add"
	OpPlayerChange = "player_change"
	OpPlayerRemove = "player_remove"
	OpBulletAdd    = "bullet_add"
	OpBulletChange = "bullet_change"
	OpBulletRemove = "bullet_remove"
)

var (
	ErrUnknownStateOp = errors.New("unknown state op")
	ErrMissingPayload = errors.New("state frame missing payload")
	ErrNonFinite      = errors.New("non-finite value in state frame")
)

// PlayerState はサーバーが保持するプレイヤーの権威的な状態です。
type PlayerState struct {
	X        float64 `msgpack:"x"`
	Y        float64 `msgpack:"y"`
	Rotation float64 `msgpack:"rotation"`
}

func (p PlayerState) Transform() domain.Transform {
	return domain.Transform{X: p.X, Y: p.Y, Rotation: p.Rotation}
}

// BulletState はサーバーが保持する弾丸の権威的な状態です。
type BulletState struct {
	Index int     `msgpack:"index"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
	Angle float64 `msgpack:"angle"`
}

// FieldChange は1フィールド分の差分です。
type FieldChange struct {
	Field string  `msgpack:"field"`
	Value float64 `msgpack:"value"`
}

// StateDelta は状態チャネルの通知の閉じた直和型です。
type StateDelta interface {
	Op() string
	stateDelta()
}

// Snapshot は参加直後に一度だけ適用される全体状態です。
type Snapshot struct {
	Players map[domain.SessionID]PlayerState
	Bullets map[int]BulletState
}

type PlayerAdded struct {
	ID     domain.SessionID
	Player PlayerState
}

type PlayerChanged struct {
	ID      domain.SessionID
	Changes []FieldChange
}

type PlayerRemoved struct {
	ID domain.SessionID
}

type BulletAdded struct {
	Bullet BulletState
}

type BulletChanged struct {
	Index   int
	Changes []FieldChange
}

type BulletRemoved struct {
	Index int
}

func (Snapshot) Op() string      { return OpSnapshot }
func (PlayerAdded) Op() string   { return OpPlayerAdd }
func (PlayerChanged) Op() string { return OpPlayerChange }
func (PlayerRemoved) Op() string { return OpPlayerRemove }
func (BulletAdded) Op() string   { return OpBulletAdd }
func (BulletChanged) Op() string { return OpBulletChange }
func (BulletRemoved) Op() string { return OpBulletRemove }

func (Snapshot) stateDelta()      {}
func (PlayerAdded) stateDelta()   {}
func (PlayerChanged) stateDelta() {}
func (PlayerRemoved) stateDelta() {}
func (BulletAdded) stateDelta()   {}
func (BulletChanged) stateDelta() {}
func (BulletRemoved) stateDelta() {}

// stateFrame はバイナリフレームのワイヤ表現です。
type stateFrame struct {
	Op      string                 `msgpack:"op"`
	ID      string                 `msgpack:"id,omitempty"`
	Index   int                    `msgpack:"index,omitempty"`
	Player  *PlayerState           `msgpack:"player,omitempty"`
	Bullet  *BulletState           `msgpack:"bullet,omitempty"`
	Players map[string]PlayerState `msgpack:"players,omitempty"`
	Bullets map[string]BulletState `msgpack:"bullets,omitempty"`
	Changes []FieldChange          `msgpack:"changes,omitempty"`
}

// DecodeState はmsgpackのバイナリフレームを StateDelta にデコードします。
func DecodeState(data []byte) (StateDelta, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	var f stateFrame
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode state frame: %w", err)
	}

	switch f.Op {
	case OpSnapshot:
		snap := Snapshot{
			Players: make(map[domain.SessionID]PlayerState, len(f.Players)),
			Bullets: make(map[int]BulletState, len(f.Bullets)),
		}
		for id, p := range f.Players {
			if !finitePlayer(p) {
				return nil, fmt.Errorf("snapshot player %q: %w", id, ErrNonFinite)
			}
			snap.Players[domain.SessionID(id)] = p
		}
		for _, b := range f.Bullets {
			if !finiteBullet(b) {
				return nil, fmt.Errorf("snapshot bullet %d: %w", b.Index, ErrNonFinite)
			}
			snap.Bullets[b.Index] = b
		}
		return snap, nil
	case OpPlayerAdd:
		if f.Player == nil {
			return nil, fmt.Errorf("%s: %w", f.Op, ErrMissingPayload)
		}
		if !finitePlayer(*f.Player) {
			return nil, fmt.Errorf("%s %q: %w", f.Op, f.ID, ErrNonFinite)
		}
		return PlayerAdded{ID: domain.SessionID(f.ID), Player: *f.Player}, nil
	case OpPlayerChange:
		if !finiteChanges(f.Changes) {
			return nil, fmt.Errorf("%s %q: %w", f.Op, f.ID, ErrNonFinite)
		}
		return PlayerChanged{ID: domain.SessionID(f.ID), Changes: f.Changes}, nil
	case OpPlayerRemove:
		return PlayerRemoved{ID: domain.SessionID(f.ID)}, nil
	case OpBulletAdd:
		if f.Bullet == nil {
			return nil, fmt.Errorf("%s: %w", f.Op, ErrMissingPayload)
		}
		if !finiteBullet(*f.Bullet) {
			return nil, fmt.Errorf("%s %d: %w", f.Op, f.Bullet.Index, ErrNonFinite)
		}
		return BulletAdded{Bullet: *f.Bullet}, nil
	case OpBulletChange:
		if !finiteChanges(f.Changes) {
			return nil, fmt.Errorf("%s %d: %w", f.Op, f.Index, ErrNonFinite)
		}
		return BulletChanged{Index: f.Index, Changes: f.Changes}, nil
	case OpBulletRemove:
		return BulletRemoved{Index: f.Index}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStateOp, f.Op)
	}
}

// EncodeState は StateDelta をバイナリフレームにエンコードします。
// 主にテスト用サーバーとリプレイ用途で使います。
func EncodeState(delta StateDelta) ([]byte, error) {
	f := stateFrame{Op: delta.Op()}
	switch d := delta.(type) {
	case Snapshot:
		f.Players = make(map[string]PlayerState, len(d.Players))
		for id, p := range d.Players {
			f.Players[id.String()] = p
		}
		f.Bullets = make(map[string]BulletState, len(d.Bullets))
		for index, b := range d.Bullets {
			b.Index = index
			f.Bullets[fmt.Sprint(index)] = b
		}
	case PlayerAdded:
		f.ID = d.ID.String()
		p := d.Player
		f.Player = &p
	case PlayerChanged:
		f.ID = d.ID.String()
		f.Changes = d.Changes
	case PlayerRemoved:
		f.ID = d.ID.String()
	case BulletAdded:
		b := d.Bullet
		f.Bullet = &b
	case BulletChanged:
		f.Index = d.Index
		f.Changes = d.Changes
	case BulletRemoved:
		f.Index = d.Index
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownStateOp, delta)
	}
	return msgpack.Marshal(&f)
}

func finitePlayer(p PlayerState) bool {
	return utils.FiniteVec(p.X, p.Y) && utils.IsFinite(p.Rotation)
}

func finiteBullet(b BulletState) bool {
	return utils.FiniteVec(b.X, b.Y) && utils.IsFinite(b.Angle)
}

func finiteChanges(changes []FieldChange) bool {
	for _, c := range changes {
		if !utils.IsFinite(c.Value) {
			return false
		}
	}
	return true
}

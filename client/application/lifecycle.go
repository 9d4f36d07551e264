package application

import (
	"context"
	"errors"
	"log/slog"

	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

// Lifecycle はネットワーク上のエンティティの追加・削除とビジュアルの生成・破棄を対応付けます。
// 自分自身のIDはアリーナに載せず、ローカルプレイヤーの出現として扱います。
type Lifecycle struct {
	field    *Field
	status   *StatusMachine
	renderer Renderer
}

func NewLifecycle(field *Field, status *StatusMachine, renderer Renderer) *Lifecycle {
	return &Lifecycle{
		field:    field,
		status:   status,
		renderer: renderer,
	}
}

// SpawnLocal はローカルプレイヤーを割り当てられたスポーン地点に出現させます。
func (l *Lifecycle) SpawnLocal(ctx context.Context, t domain.Transform) bool {
	return l.status.Spawn(ctx, t)
}

// AddRemotePlayer はリモートプレイヤーを追加します。既に存在する場合と自分自身の場合は何もしません。
func (l *Lifecycle) AddRemotePlayer(ctx context.Context, id domain.SessionID, t domain.Transform) {
	if l.field.IsSelf(id) {
		slog.DebugContext(ctx, "ignoring local player in room state", "id", id)
		return
	}
	if _, ok := l.field.Handle(id); ok {
		slog.DebugContext(ctx, "remote player already present", "id", id)
		return
	}
	h, created, err := l.field.UpsertTarget(id, t)
	if err != nil {
		slog.WarnContext(ctx, "failed to add remote player", "id", id, "err", err)
		return
	}
	if created {
		l.renderer.CreateVisual(VisualRemotePlayer, h, t)
		slog.DebugContext(ctx, "remote player added", "id", id, "x", t.X, "y", t.Y)
	}
}

// ReviveRemotePlayer は復活したリモートプレイヤーをスポーン地点へ瞬間移動させます。
func (l *Lifecycle) ReviveRemotePlayer(ctx context.Context, id domain.SessionID, t domain.Transform) {
	if l.field.IsSelf(id) {
		return
	}
	if err := l.field.Teleport(id, t); err != nil {
		l.AddRemotePlayer(ctx, id, t)
	}
}

func (l *Lifecycle) RemoveRemotePlayer(ctx context.Context, id domain.SessionID) {
	if l.field.IsSelf(id) {
		slog.DebugContext(ctx, "ignoring removal of local player", "id", id)
		return
	}
	h, err := l.field.Remove(id)
	if err != nil {
		logStale(ctx, err)
		return
	}
	l.renderer.DestroyVisual(VisualRemotePlayer, h)
	slog.DebugContext(ctx, "remote player removed", "id", id)
}

// UpdatePlayerField はフィールド単位の変更を Target に反映します。
// 自分自身への変更はローカルの予測と衝突するので無視します。
func (l *Lifecycle) UpdatePlayerField(ctx context.Context, id domain.SessionID, field string, value float64) {
	if l.field.IsSelf(id) {
		return
	}
	if err := l.field.SetPlayerField(id, field, value); err != nil {
		logStale(ctx, err)
	}
}

func (l *Lifecycle) AddBullet(ctx context.Context, b Bullet) {
	h, created := l.field.AddBullet(b)
	if !created {
		slog.DebugContext(ctx, "bullet already present", "index", b.Index)
		return
	}
	l.renderer.CreateVisual(VisualBullet, h, domain.Transform{X: b.X, Y: b.Y, Rotation: b.Angle})
}

func (l *Lifecycle) UpdateBulletField(ctx context.Context, index int, field string, value float64) {
	if err := l.field.UpdateBulletField(index, field, value); err != nil {
		logStale(ctx, err)
	}
}

func (l *Lifecycle) RemoveBullet(ctx context.Context, index int) {
	h, err := l.field.RemoveBullet(index)
	if err != nil {
		logStale(ctx, err)
		return
	}
	l.renderer.DestroyVisual(VisualBullet, h)
}

// ApplySnapshot は参加直後の全体状態を取り込みます。自分自身の項目は start_position を待つので取り込みません。
func (l *Lifecycle) ApplySnapshot(ctx context.Context, snap clientdomain.Snapshot) {
	for id, p := range snap.Players {
		if l.field.IsSelf(id) {
			continue
		}
		l.AddRemotePlayer(ctx, id, p.Transform())
	}
	for index, b := range snap.Bullets {
		l.AddBullet(ctx, Bullet{Index: index, X: b.X, Y: b.Y, Angle: b.Angle})
	}
}

// ReleaseAll は全エンティティとローカルプレイヤーのビジュアルを解放します。
func (l *Lifecycle) ReleaseAll(ctx context.Context) {
	actors, bullets := l.field.Clear()
	for _, h := range actors {
		l.renderer.DestroyVisual(VisualRemotePlayer, h)
	}
	for _, h := range bullets {
		l.renderer.DestroyVisual(VisualBullet, h)
	}
	l.status.Release(ctx)
	slog.InfoContext(ctx, "released all entities", "players", len(actors), "bullets", len(bullets))
}

func logStale(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ErrStaleEntity), errors.Is(err, ErrUnknownField):
		slog.DebugContext(ctx, "ignored entity update", "err", err)
	default:
		slog.WarnContext(ctx, "entity update failed", "err", err)
	}
}

package application_test

import (
	"context"
	"testing"

	"github.com/yohamta/donburi"
	"go.uber.org/mock/gomock"

	"github.com/Nzm15/battle-arena-main/client/application"
	clientdomain "github.com/Nzm15/battle-arena-main/client/domain"
	"github.com/Nzm15/battle-arena-main/domain"
)

func newTestLifecycle(p *testPorts) (*application.Lifecycle, *application.Field, *application.StatusMachine) {
	field := application.NewField(application.NewMap(800, 600), application.Alpha)
	status := application.NewStatusMachine(p.sender, p.ui, p.renderer, p.spawns, testRand(), fixedBank())
	return application.NewLifecycle(field, status, p.renderer), field, status
}

func TestLifecycle_AddRemovePairsVisuals(t *testing.T) {
	p := newTestPorts(t)
	l, field, _ := newTestLifecycle(p)
	ctx := context.Background()

	var created application.Handle
	p.renderer.EXPECT().CreateVisual(application.VisualRemotePlayer, gomock.Any(), domain.Transform{X: 1, Y: 2}).
		Do(func(_ application.VisualKind, h application.Handle, _ domain.Transform) { created = h }).
		Times(1)
	l.AddRemotePlayer(ctx, "B", domain.Transform{X: 1, Y: 2})
	// 2回目の追加は何もしない
	l.AddRemotePlayer(ctx, "B", domain.Transform{X: 9, Y: 9})

	h, ok := field.Handle("B")
	if !ok || h != created {
		t.Fatalf("Handle(B) = %v, %v; visual created for %v", h, ok, created)
	}

	p.renderer.EXPECT().DestroyVisual(application.VisualRemotePlayer, created).Times(1)
	l.RemoveRemotePlayer(ctx, "B")
	l.RemoveRemotePlayer(ctx, "B")
	if field.Valid(created) {
		t.Errorf("handle still valid after removal")
	}
}

func TestLifecycle_SelfIsNotARemotePlayer(t *testing.T) {
	p := newTestPorts(t)
	l, field, status := newTestLifecycle(p)
	ctx := context.Background()
	field.SetSelf("A")
	status.SetSelf("A")

	// 自分自身の追加はビジュアルもスポーンも生まない
	l.AddRemotePlayer(ctx, "A", domain.Transform{X: 5, Y: 5})
	if field.ActorCount() != 0 {
		t.Errorf("self stored as remote actor")
	}
	if status.Player().Spawned {
		t.Fatalf("local player spawned from room state")
	}

	p.renderer.EXPECT().CreateVisual(application.VisualLocalPlayer, donburi.Null, domain.Transform{X: 100, Y: 100}).Times(1)
	if !l.SpawnLocal(ctx, domain.Transform{X: 100, Y: 100}) {
		t.Fatalf("SpawnLocal returned false")
	}
	if l.SpawnLocal(ctx, domain.Transform{X: 6, Y: 6}) {
		t.Errorf("second SpawnLocal returned true")
	}

	// 自分への変更や削除は無視される
	l.UpdatePlayerField(ctx, "A", application.FieldX, 500)
	l.RemoveRemotePlayer(ctx, "A")
	if status.Player().X != 100 {
		t.Errorf("self field change applied: x = %f", status.Player().X)
	}
}

func TestLifecycle_ReviveTeleportsOrAdds(t *testing.T) {
	p := newTestPorts(t)
	l, field, _ := newTestLifecycle(p)
	ctx := context.Background()

	p.renderer.EXPECT().CreateVisual(application.VisualRemotePlayer, gomock.Any(), gomock.Any()).Times(2)
	l.AddRemotePlayer(ctx, "B", domain.Transform{X: 1, Y: 1})
	l.UpdatePlayerField(ctx, "B", application.FieldX, 40)

	l.ReviveRemotePlayer(ctx, "B", domain.Transform{X: 300, Y: 300})
	a, _ := field.Actor("B")
	if a.Current != a.Target || a.Current.X != 300 {
		t.Errorf("revived actor = %+v, want teleported to 300", a)
	}

	l.ReviveRemotePlayer(ctx, "C", domain.Transform{X: 10, Y: 10})
	if _, ok := field.Actor("C"); !ok {
		t.Errorf("revive of unknown player did not add it")
	}
}

func TestLifecycle_Bullets(t *testing.T) {
	p := newTestPorts(t)
	l, field, _ := newTestLifecycle(p)
	ctx := context.Background()

	p.renderer.EXPECT().CreateVisual(application.VisualBullet, gomock.Any(), domain.Transform{X: 3, Y: 4, Rotation: 1}).Times(1)
	l.AddBullet(ctx, application.Bullet{Index: 0, X: 3, Y: 4, Angle: 1})
	l.AddBullet(ctx, application.Bullet{Index: 0, X: 3, Y: 4, Angle: 1})
	l.UpdateBulletField(ctx, 0, application.FieldY, 8)
	l.UpdateBulletField(ctx, 7, application.FieldY, 8)

	if b, _ := field.Bullet(0); b.Y != 8 {
		t.Errorf("bullet y = %f, want 8", b.Y)
	}

	p.renderer.EXPECT().DestroyVisual(application.VisualBullet, gomock.Any()).Times(1)
	l.RemoveBullet(ctx, 0)
	l.RemoveBullet(ctx, 0)
	if field.BulletCount() != 0 {
		t.Errorf("BulletCount = %d", field.BulletCount())
	}
}

func TestLifecycle_SnapshotThenReleaseAll(t *testing.T) {
	p := newTestPorts(t)
	l, field, status := newTestLifecycle(p)
	ctx := context.Background()
	field.SetSelf("A")
	status.SetSelf("A")

	snap := clientdomain.Snapshot{
		Players: map[domain.SessionID]clientdomain.PlayerState{
			"A": {X: 1, Y: 1},
			"B": {X: 2, Y: 2},
			"C": {X: 3, Y: 3},
		},
		Bullets: map[int]clientdomain.BulletState{
			1: {Index: 1, X: 5, Y: 5},
		},
	}
	p.renderer.EXPECT().CreateVisual(application.VisualRemotePlayer, gomock.Any(), gomock.Any()).Times(2)
	p.renderer.EXPECT().CreateVisual(application.VisualBullet, gomock.Any(), gomock.Any()).Times(1)
	l.ApplySnapshot(ctx, snap)

	if field.ActorCount() != 2 || field.BulletCount() != 1 {
		t.Fatalf("after snapshot: %d actors, %d bullets", field.ActorCount(), field.BulletCount())
	}
	if status.Player().Spawned {
		t.Fatalf("local player spawned from snapshot")
	}
	p.renderer.EXPECT().CreateVisual(application.VisualLocalPlayer, donburi.Null, domain.Transform{X: 100, Y: 100}).Times(1)
	l.SpawnLocal(ctx, domain.Transform{X: 100, Y: 100})

	p.renderer.EXPECT().DestroyVisual(application.VisualRemotePlayer, gomock.Any()).Times(2)
	p.renderer.EXPECT().DestroyVisual(application.VisualBullet, gomock.Any()).Times(1)
	p.renderer.EXPECT().DestroyVisual(application.VisualLocalPlayer, donburi.Null).Times(1)
	l.ReleaseAll(ctx)

	if field.EntityCount() != 0 {
		t.Errorf("EntityCount = %d after ReleaseAll", field.EntityCount())
	}
}

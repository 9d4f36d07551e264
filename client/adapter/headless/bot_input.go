package headless

import (
	"math"
	"math/rand/v2"

	"github.com/Nzm15/battle-arena-main/client/application"
	"github.com/Nzm15/battle-arena-main/domain"
)

const (
	botDangerDist = 60.0 // 弾丸回避を始める距離
	botNoiseAngle = 0.52 // ±30度
	botKeyDead    = 0.3  // この成分未満のキーは押さない
	botFireEvery  = 30   // 何フレームごとに撃つか
)

// BotInput はルールベースで操作するヘッドレス用の Input です。
// 毎フレーム Observe で状態を渡し、その結果を Keys と Pointer で返します。
type BotInput struct {
	CloseRange float64 // 後退を始める距離
	MidRange   float64 // ストレイフを始める距離
	StrafeSign float64 // +1: 反時計回り, -1: 時計回り

	rng     *rand.Rand
	keys    application.KeyState
	pointer application.PointerState
	frame   int
}

// NewBotInput はランダムな個性を持つ BotInput を生成します。
func NewBotInput(rng *rand.Rand) *BotInput {
	strafe := 1.0
	if rng.Float64() < 0.5 {
		strafe = -1.0
	}
	return &BotInput{
		CloseRange: 80 + rng.Float64()*80,   // 80〜160
		MidRange:   200 + rng.Float64()*200, // 200〜400
		StrafeSign: strafe,
		rng:        rng,
	}
}

func (b *BotInput) Keys() application.KeyState { return b.keys }

func (b *BotInput) Pointer() application.PointerState { return b.pointer }

// Observe はフレームの状態から次の入力を決めます。
func (b *BotInput) Observe(snap application.FrameSnapshot) {
	b.frame++
	local := snap.Local
	if !local.Spawned || local.Status != application.StatusAlive {
		b.keys = application.KeyState{}
		b.pointer.Down = false
		return
	}
	self := local.Position()

	// 被弾回避を優先
	if dir, ok := b.evadeBullet(self, snap.Bullets); ok {
		b.keys = directionToKeys(b.addNoise(dir))
		b.pointer.Down = false
		return
	}

	nearest, ok := findNearest(self, snap.Remotes)
	if !ok {
		b.keys = application.KeyState{}
		b.pointer.Down = false
		return
	}
	target := nearest.Current.Position()
	b.pointer.X, b.pointer.Y = target.X, target.Y
	b.pointer.Down = b.frame%botFireEvery == 0

	dx, dy := target.X-self.X, target.Y-self.Y
	dist := math.Hypot(dx, dy)
	if dist < 0.001 {
		b.keys = application.KeyState{}
		return
	}
	nx, ny := dx/dist, dy/dist

	var dir domain.Position2D
	switch {
	case dist < b.CloseRange:
		dir = domain.Position2D{X: -nx, Y: -ny}
	case dist < b.MidRange:
		dir = domain.Position2D{X: -ny * b.StrafeSign, Y: nx * b.StrafeSign}
	default:
		dir = domain.Position2D{X: nx, Y: ny}
	}
	b.keys = directionToKeys(b.addNoise(dir))
}

// evadeBullet は自分に向かってくる弾丸の進行方向に垂直な回避方向を返します。
func (b *BotInput) evadeBullet(self domain.Position2D, bullets []application.Bullet) (domain.Position2D, bool) {
	closestDist := math.MaxFloat64
	var closest *application.Bullet
	for i := range bullets {
		bl := &bullets[i]
		dx, dy := self.X-bl.X, self.Y-bl.Y
		dist := math.Hypot(dx, dy)
		if dist > botDangerDist {
			continue
		}
		vx, vy := bulletDirection(bl.Angle)
		if dx*vx+dy*vy <= 0 {
			continue
		}
		if dist < closestDist {
			closestDist = dist
			closest = bl
		}
	}
	if closest == nil {
		return domain.Position2D{}, false
	}
	vx, vy := bulletDirection(closest.Angle)
	return domain.Position2D{X: -vy, Y: vx}, true
}

// bulletDirection は弾丸の向きの単位ベクトルです。スプライトが上向きなので π/2 ずらします。
func bulletDirection(angle float64) (float64, float64) {
	return math.Cos(angle + math.Pi/2), math.Sin(angle + math.Pi/2)
}

func findNearest(self domain.Position2D, remotes []application.RemoteActor) (application.RemoteActor, bool) {
	var nearest application.RemoteActor
	found := false
	best := math.MaxFloat64
	for _, r := range remotes {
		dx, dy := r.Current.X-self.X, r.Current.Y-self.Y
		if d := dx*dx + dy*dy; d < best {
			best = d
			nearest = r
			found = true
		}
	}
	return nearest, found
}

// addNoise は移動方向に ±30度 のランダムなぶれを加えます。
func (b *BotInput) addNoise(dir domain.Position2D) domain.Position2D {
	noise := (b.rng.Float64()*2 - 1) * botNoiseAngle
	cos, sin := math.Cos(noise), math.Sin(noise)
	return domain.Position2D{
		X: dir.X*cos - dir.Y*sin,
		Y: dir.X*sin + dir.Y*cos,
	}
}

func directionToKeys(dir domain.Position2D) application.KeyState {
	return application.KeyState{
		Left:  dir.X < -botKeyDead,
		Right: dir.X > botKeyDead,
		Up:    dir.Y < -botKeyDead,
		Down:  dir.Y > botKeyDead,
	}
}

package application

import (
	"math/rand/v2"
	"time"

	"github.com/Nzm15/battle-arena-main/domain"
)

const (
	NPCDirectionInterval = 2000 * time.Millisecond
	NPCSpeed             = 60.0
	// NPCInteractionRange 以内に近づくと会話できます。
	NPCInteractionRange = 100.0
)

// Direction は上下左右の4方向です。
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

func (d Direction) unit() domain.Position2D {
	switch d {
	case DirUp:
		return domain.Position2D{Y: -1}
	case DirDown:
		return domain.Position2D{Y: 1}
	case DirLeft:
		return domain.Position2D{X: -1}
	default:
		return domain.Position2D{X: 1}
	}
}

var defaultNPCLines = []string{
	"Hello There!!!",
	"I heard you want to challenge me in the Mathematics quiz.",
	"For your information, I've never been defeated.",
	"GOODLUCK!!!",
}

// NPC はネットワークと無関係に動き回るキャラクターです。
// 2秒ごと、または範囲の端に着いたときに4方向から一様に向きを選び直します。
type NPC struct {
	Position  domain.Position2D
	Velocity  domain.Position2D
	Direction Direction
	Elapsed   time.Duration
	Lines     []string

	bounds Rect
	speed  float64
	rng    *rand.Rand
}

func NewNPC(start domain.Position2D, bounds Rect, rng *rand.Rand) *NPC {
	n := &NPC{
		Position: bounds.Clamp(start),
		Lines:    defaultNPCLines,
		bounds:   bounds,
		speed:    NPCSpeed,
		rng:      rng,
	}
	n.turn()
	return n
}

// Update は dt だけ位置を進め、必要なら向きを変えます。
func (n *NPC) Update(dt time.Duration) {
	next := domain.Position2D{
		X: n.Position.X + n.Velocity.X*dt.Seconds(),
		Y: n.Position.Y + n.Velocity.Y*dt.Seconds(),
	}
	n.Position = n.bounds.Clamp(next)
	n.Elapsed += dt
	if n.Elapsed >= NPCDirectionInterval || n.bounds.OnEdge(n.Position) {
		n.turn()
	}
}

func (n *NPC) turn() {
	n.Direction = Direction(n.rng.IntN(4))
	u := n.Direction.unit()
	n.Velocity = domain.Position2D{X: u.X * n.speed, Y: u.Y * n.speed}
	n.Elapsed = 0
}

// Near は p が会話可能な距離にいるかを返します。
func (n *NPC) Near(p domain.Position2D) bool {
	return distance(n.Position, p) < NPCInteractionRange
}

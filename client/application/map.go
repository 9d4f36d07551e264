package application

import "github.com/Nzm15/battle-arena-main/domain"

// Map はワールドの大きさを表します。ローカルプレイヤーはこの範囲にクランプされます。
type Map struct {
	width  float64
	height float64
}

func NewMap(width, height float64) *Map {
	return &Map{width: width, height: height}
}

func (m *Map) WorldWidth() float64  { return m.width }
func (m *Map) WorldHeight() float64 { return m.height }

// Bounds はワールド全体を表す矩形を返します。
func (m *Map) Bounds() Rect {
	return Rect{MaxX: m.width, MaxY: m.height}
}

// Clamp は座標をワールドの範囲内に収めます。
func (m *Map) Clamp(p domain.Position2D) domain.Position2D {
	return m.Bounds().Clamp(p)
}

// Rect は軸に平行な矩形です。
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (r Rect) Clamp(p domain.Position2D) domain.Position2D {
	return domain.Position2D{
		X: clamp(p.X, r.MinX, r.MaxX),
		Y: clamp(p.Y, r.MinY, r.MaxY),
	}
}

// OnEdge は p が矩形の境界上（または外側）にあるかを返します。
func (r Rect) OnEdge(p domain.Position2D) bool {
	return p.X <= r.MinX || p.X >= r.MaxX || p.Y <= r.MinY || p.Y >= r.MaxY
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

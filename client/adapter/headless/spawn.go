package headless

import (
	"fmt"
	"math"

	"github.com/Nzm15/battle-arena-main/domain"
)

// GridSpawnPoints はワールドを格子状に分けた "player1".."playerN" のスポーン地点です。
type GridSpawnPoints struct {
	points []domain.Position2D
}

// NewGridSpawnPoints は width x height のワールドに n 個の地点を均等に並べます。
func NewGridSpawnPoints(width, height float64, n int) *GridSpawnPoints {
	if n <= 0 {
		return &GridSpawnPoints{}
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cellW, cellH := width/float64(cols), height/float64(rows)

	points := make([]domain.Position2D, 0, n)
	for i := range n {
		col, row := i%cols, i/cols
		points = append(points, domain.Position2D{
			X: cellW * (float64(col) + 0.5),
			Y: cellH * (float64(row) + 0.5),
		})
	}
	return &GridSpawnPoints{points: points}
}

func (g *GridSpawnPoints) SpawnPoint(name string) (domain.Position2D, bool) {
	var n int
	if _, err := fmt.Sscanf(name, "player%d", &n); err != nil || n < 1 || n > len(g.points) {
		return domain.Position2D{}, false
	}
	return g.points[n-1], true
}

func (g *GridSpawnPoints) SpawnPoints() []domain.Position2D {
	out := make([]domain.Position2D, len(g.points))
	copy(out, g.points)
	return out
}

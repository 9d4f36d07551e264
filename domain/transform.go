package domain

// Position2D はワールド座標上の2次元位置です。
type Position2D struct {
	X, Y float64
}

// Transform は描画に必要な位置と回転（ラジアン）です。
type Transform struct {
	X, Y     float64
	Rotation float64
}

func (t Transform) Position() Position2D {
	return Position2D{X: t.X, Y: t.Y}
}

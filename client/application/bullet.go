package application

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/yohamta/donburi"
)

const (
	// BulletSpeed は発射時の速度ベクトルの大きさです。
	BulletSpeed = 50.0
)

// Bullet は飛翔中の弾丸です。補間せずサーバーの値をそのまま使います。
type Bullet struct {
	Index int
	X, Y  float64
	Angle float64
}

var bulletComponent = donburi.NewComponentType[Bullet]()

// AddBullet は弾丸を追加します。同じインデックスが既にあれば何もせず既存のハンドルを返します。
func (f *Field) AddBullet(b Bullet) (Handle, bool) {
	if h, ok := f.bullets[b.Index]; ok {
		return h, false
	}
	h := f.world.Create(bulletComponent)
	bulletComponent.SetValue(f.world.Entry(h), b)
	f.bullets[b.Index] = h
	return h, true
}

// UpdateBulletField は x, y, angle の変更をそのまま反映します。
func (f *Field) UpdateBulletField(index int, field string, value float64) error {
	h, ok := f.bullets[index]
	if !ok {
		return fmt.Errorf("%w: bullet %d", ErrStaleEntity, index)
	}
	b := bulletComponent.Get(f.world.Entry(h))
	switch field {
	case FieldX:
		b.X = value
	case FieldY:
		b.Y = value
	case FieldAngle:
		b.Angle = value
	default:
		return fmt.Errorf("%w: bullet.%s", ErrUnknownField, field)
	}
	return nil
}

func (f *Field) RemoveBullet(index int) (Handle, error) {
	h, ok := f.bullets[index]
	if !ok {
		return donburi.Null, fmt.Errorf("%w: bullet %d", ErrStaleEntity, index)
	}
	f.world.Remove(h)
	delete(f.bullets, index)
	return h, nil
}

func (f *Field) Bullet(index int) (Bullet, bool) {
	h, ok := f.bullets[index]
	if !ok {
		return Bullet{}, false
	}
	return *bulletComponent.Get(f.world.Entry(h)), true
}

// Bullets は全弾丸をインデックス順で返します。
func (f *Field) Bullets() []Bullet {
	bullets := make([]Bullet, 0, len(f.bullets))
	for _, h := range f.bullets {
		bullets = append(bullets, *bulletComponent.Get(f.world.Entry(h)))
	}
	slices.SortFunc(bullets, func(a, b Bullet) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return bullets
}

func (f *Field) BulletCount() int { return len(f.bullets) }

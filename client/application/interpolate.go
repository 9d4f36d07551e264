package application

import "math"

// Alpha はリモートアクターの補間係数の既定値です。
// 1フレームごとに残差の Alpha 倍だけ目標へ寄せるため、収束の速さはフレームレートに依存します。
// 既存の挙動との互換のため固定値のまま残しています。
const Alpha = 0.5

// normalizeAlpha は (0,1] の外の値を Alpha に置き換えます。
func normalizeAlpha(alpha float64) float64 {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return Alpha
	}
	return alpha
}

func lerp(cur, target, alpha float64) float64 {
	return cur + (target-cur)*alpha
}

// shortestAngle は cur から target への最短の回転量を (-π, π] の範囲で返します。
func shortestAngle(cur, target float64) float64 {
	d := (target - cur) / (2 * math.Pi)
	d -= math.Ceil(d - 0.5)
	return d * 2 * math.Pi
}

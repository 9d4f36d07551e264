package utils

import (
	"math"
)

// FiniteVec は座標の両成分が有限値かを返します。
func FiniteVec(x, y float64) bool {
	return IsFinite(x) && IsFinite(y)
}

func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package bullet

import "math"

// Radians converts BulletML degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle maps deg into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// AngleTo returns the direction from (x, y) towards (tx, ty).
func AngleTo(x, y, tx, ty float64) float64 {
	return Degrees(math.Atan2(tx-x, y-ty))
}

// Heading returns the unit vector for direction deg.
func Heading(deg float64) (dx, dy float64) {
	r := Radians(deg)
	return math.Sin(r), -math.Cos(r)
}

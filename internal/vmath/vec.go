package vmath

import "math"

// Vec2 is a position or direction on the ground plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2             { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2             { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2        { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Len() float64                { return math.Hypot(v.X, v.Y) }
func (v Vec2) Dist(o Vec2) float64         { return v.Sub(o).Len() }
func (v Vec2) IsZero() bool                { return v.X == 0 && v.Y == 0 }
func (v Vec2) Angle() float64              { return math.Atan2(v.X, v.Y) }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Polar returns the offset at the given angle and distance. Angle 0 points
// along +Y, matching Angle.
func Polar(angle, dist float64) Vec2 {
	return Vec2{math.Sin(angle) * dist, math.Cos(angle) * dist}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Damp moves current toward target with frame-rate independent smoothing.
func Damp(current, target, lambda, dt float64) float64 {
	return current + (target-current)*(1-math.Exp(-lambda*dt))
}

// WrapAngle maps a radian angle into (-Pi, Pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

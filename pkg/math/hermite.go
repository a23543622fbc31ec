package math

// Hermite returns the cubic Hermite basis weights (h00, h10, h01, h11) at t.
func Hermite(t float32) (h00, h10, h01, h11 float32) {
	t2 := t * t
	t3 := t2 * t
	h00 = 2*t3 - 3*t2 + 1
	h10 = t3 - 2*t2 + t
	h01 = -2*t3 + 3*t2
	h11 = t3 - t2
	return
}

// HermiteFloat evaluates h00*p0 + h10*m0 + h01*p1 + h11*m1.
// The endpoints are returned verbatim so t=0 and t=1 reproduce p0 and p1 exactly.
func HermiteFloat(t, p0, m0, p1, m1 float32) float32 {
	switch t {
	case 0:
		return p0
	case 1:
		return p1
	}
	h00, h10, h01, h11 := Hermite(t)
	return h00*p0 + h10*m0 + h01*p1 + h11*m1
}

// HermiteVec3 applies HermiteFloat per component.
func HermiteVec3(t float32, p0, m0, p1, m1 Vec3) Vec3 {
	return Vec3{
		X: HermiteFloat(t, p0.X, m0.X, p1.X, m1.X),
		Y: HermiteFloat(t, p0.Y, m0.Y, p1.Y, m1.Y),
		Z: HermiteFloat(t, p0.Z, m0.Z, p1.Z, m1.Z),
	}
}

// HermiteQuat applies HermiteFloat per component and renormalizes the result.
// The endpoints are returned verbatim.
func HermiteQuat(t float32, p0, m0, p1, m1 Quat) Quat {
	switch t {
	case 0:
		return p0
	case 1:
		return p1
	}
	return Quat{
		X: HermiteFloat(t, p0.X, m0.X, p1.X, m1.X),
		Y: HermiteFloat(t, p0.Y, m0.Y, p1.Y, m1.Y),
		Z: HermiteFloat(t, p0.Z, m0.Z, p1.Z, m1.Z),
		W: HermiteFloat(t, p0.W, m0.W, p1.W, m1.W),
	}.Normalize()
}

// Package vec provides the 3-vector arithmetic used by the ring
// simulation.
package vec

// Vec3 is a point, momentum, or force in three dimensions.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

func (v Vec3) Scale(a float64) Vec3 {
	return Vec3{v[0] * a, v[1] * a, v[2] * a}
}

func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

func (v Vec3) NormSq() float64 { return v.Dot(v) }

// Axpy adds a*x to each element of dst in place. dst and x must have
// equal length.
func Axpy(a float64, x, dst []Vec3) {
	for i := range dst {
		dst[i][0] += a * x[i][0]
		dst[i][1] += a * x[i][1]
		dst[i][2] += a * x[i][2]
	}
}

// Zero clears dst in place.
func Zero(dst []Vec3) {
	for i := range dst {
		dst[i] = Vec3{}
	}
}

// Centroid returns the mean of vs. It returns the zero vector for an
// empty slice.
func Centroid(vs []Vec3) Vec3 {
	if len(vs) == 0 {
		return Vec3{}
	}
	var c Vec3
	for _, v := range vs {
		c = c.Add(v)
	}
	return c.Scale(1 / float64(len(vs)))
}

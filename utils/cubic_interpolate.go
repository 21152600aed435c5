// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates the Catmull-Rom curve through four consecutive
// samples at x in [0,1] between y1 and y2.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)

	return ((c3*x+c2)*x+c1)*x + y1
}

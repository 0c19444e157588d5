// Package f64 contains small vector helpers over float64 slices.
package f64

import "math"

// Max is
//
//	max := -Inf
//	for _, v := range x {
//		if v > max { max = v }
//	}
func Max(x []float64) float64 {
	max := math.Inf(-1)
	for _, v := range x {
		if v > max {
			max = v
		}
	}

	return max
}

// ArgMaxes appends to dst the indices i of x where x[i] == Max(x)
// and returns the extended slice.
func ArgMaxes(dst []int, x []float64) []int {
	max := Max(x)
	for i, v := range x {
		if v == max {
			dst = append(dst, i)
		}
	}

	return dst
}

// ArgMaxesOf is ArgMaxes restricted to the candidate indices idx.
// It returns dst unchanged if idx is empty.
func ArgMaxesOf(dst []int, x []float64, idx []int) []int {
	max := math.Inf(-1)
	for _, i := range idx {
		if x[i] > max {
			max = x[i]
		}
	}

	for _, i := range idx {
		if x[i] == max {
			dst = append(dst, i)
		}
	}

	return dst
}

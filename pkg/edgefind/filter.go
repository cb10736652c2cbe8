package edgefind

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// gaussianKernel builds a normalized 1D Gaussian kernel of the given sigma.
// The truncation radius matches the common 4-sigma convention, so results
// line up with the usual separable Gaussian filter implementations.
func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-0.5 * float64(i*i) / (sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// gaussianSmooth convolves the profile with a Gaussian kernel, reflecting
// the signal at both boundaries. Sigma <= 0 returns a plain copy.
func gaussianSmooth(profile []float64, sigma float64) []float64 {
	out := make([]float64, len(profile))
	if sigma <= 0 || len(profile) == 0 {
		copy(out, profile)
		return out
	}
	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2
	n := len(profile)
	for i := range profile {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			acc += kernel[k+radius] * profile[reflectIndex(i+k, n)]
		}
		out[i] = acc
	}
	return out
}

// reflectIndex maps an out-of-range index back into [0,n) by reflection
// about the array edges (…, 1, 0 | 0, 1, …, n-1 | n-1, n-2, …).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// sigmaClip iteratively rejects samples more than sigma standard deviations
// from the mean of the surviving set, for a fixed number of iterations.
// The returned mask is true for samples rejected by the final iteration.
// Rejection only grows between iterations; a zero spread stops early.
func sigmaClip(profile []float64, sigma float64, iters int) []bool {
	clipped := make([]bool, len(profile))
	kept := make([]float64, 0, len(profile))
	for iter := 0; iter < iters; iter++ {
		kept = kept[:0]
		for i, v := range profile {
			if !clipped[i] {
				kept = append(kept, v)
			}
		}
		if len(kept) < 2 {
			break
		}
		mean, std := stat.MeanStdDev(kept, nil)
		if std == 0 {
			break
		}
		changed := false
		for i, v := range profile {
			if !clipped[i] && math.Abs(v-mean) > sigma*std {
				clipped[i] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return clipped
}

// median returns the median of values without modifying the input.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	tmp := make([]float64, n)
	copy(tmp, values)
	sort.Float64s(tmp)
	if n%2 == 0 {
		return (tmp[n/2-1] + tmp[n/2]) / 2
	}
	return tmp[n/2]
}

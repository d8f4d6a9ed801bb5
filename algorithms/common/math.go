// Package common holds numeric helpers shared by the spectral, geometry and
// playagon packages. Statistics are delegated to gonum.
package common

import (
	"runtime"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a set of values.
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// Summarize computes min/max/mean/stddev using gonum. Empty input yields a zero Summary.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	s := Summary{
		Min:   floats.Min(data),
		Max:   floats.Max(data),
		Mean:  stat.Mean(data, nil),
		Count: len(data),
	}
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	return s
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of 2
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// WorkerCount picks a goroutine count for units of independent work.
// A positive override wins, capped at units.
func WorkerCount(units, override int) int {
	if units <= 0 {
		return 1
	}
	if override > 0 {
		return min(override, units)
	}

	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if units < 100 {
		return max(1, min(numCPU/2, units))
	}

	// For medium workloads, use most CPUs
	if units < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}

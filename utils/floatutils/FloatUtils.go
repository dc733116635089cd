// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip returns value limited to [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval clips value to within the interval
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// WrapInterval wraps value around the interval, so that e.g. angles
// leaving [-π, π] on one side re-enter on the other. Values already
// within the interval are returned unchanged.
func WrapInterval(value float64, interval r1.Interval) float64 {
	if value >= interval.Min && value <= interval.Max {
		return value
	}
	width := interval.Max - interval.Min
	wrapped := math.Mod(value-interval.Min, width)
	if wrapped < 0 {
		wrapped += width
	}
	return wrapped + interval.Min
}

package scale

import "math"

// Linear maps a continuous domain onto a continuous range.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// NewLinear returns a scale mapping [d0, d1] onto [r0, r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{d0: d0, d1: d1, r0: r0, r1: r1}
}

// Map returns the range value for v. Values outside the domain extrapolate.
// A collapsed domain maps everything to the middle of the range.
func (s Linear) Map(v float64) float64 {
	if s.d1 == s.d0 {
		return (s.r0 + s.r1) / 2
	}
	t := (v - s.d0) / (s.d1 - s.d0)
	return s.r0*(1-t) + s.r1*t
}

// Domain returns the domain endpoints.
func (s Linear) Domain() (float64, float64) {
	return s.d0, s.d1
}

// Range returns the range endpoints.
func (s Linear) Range() (float64, float64) {
	return s.r0, s.r1
}

// Ticks returns roughly count human-friendly values inside the domain,
// spaced by 1, 2 or 5 times a power of ten.
func (s Linear) Ticks(count int) []float64 {
	start, stop := s.d0, s.d1
	if count <= 0 || start == stop {
		if start == stop && count > 0 {
			return []float64{start}
		}
		return nil
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}

	i1, i2, inc := tickSpec(start, stop, float64(count))
	if i2 < i1 && count == 1 {
		i1, i2, inc = tickSpec(start, stop, 2)
	}
	if i2 < i1 {
		return nil
	}

	n := int(i2-i1) + 1
	ticks := make([]float64, n)
	for i := range ticks {
		if inc < 0 {
			ticks[i] = (i1 + float64(i)) / -inc
		} else {
			ticks[i] = (i1 + float64(i)) * inc
		}
	}
	if reverse {
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			ticks[l], ticks[r] = ticks[r], ticks[l]
		}
	}
	return ticks
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// tickSpec returns the first and last tick multipliers and the increment.
// A negative increment means "divide by -inc" to keep small steps exact.
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}

	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	return i1, i2, inc
}

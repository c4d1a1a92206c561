package scale

// LegendTickCount and LegendKeyCount are the fence posts and fence sections
// of the legend: every swatch sits between two consecutive ticks.
const (
	LegendTickCount = 10
	LegendKeyCount  = 9
)

// legendSpan returns the temperature span covered by the legend. A flat
// dataset still gets a readable legend one degree wide.
func legendSpan(base, minVariance, maxVariance float64) float64 {
	span := (maxVariance + base) - (minVariance + base)
	if span <= 0 {
		return 1
	}
	return span
}

// LegendTicks returns the ten ascending axis values of the legend, symmetric
// around base: base ± span/20, then four more span/10 steps on each side.
func LegendTicks(base, minVariance, maxVariance float64) []float64 {
	chunk := legendSpan(base, minVariance, maxVariance) / LegendTickCount
	half := chunk / 2

	ticks := make([]float64, 0, LegendTickCount)
	for i := 4; i >= 1; i-- {
		ticks = append(ticks, base-half-float64(i)*chunk)
	}
	ticks = append(ticks, base-half, base+half)
	for i := 1; i <= 4; i++ {
		ticks = append(ticks, base+half+float64(i)*chunk)
	}
	return ticks
}

// LegendKeys returns the nine ascending swatch values: base and four span/9
// steps on each side of it.
func LegendKeys(base, minVariance, maxVariance float64) []float64 {
	step := legendSpan(base, minVariance, maxVariance) / LegendKeyCount

	keys := make([]float64, 0, LegendKeyCount)
	for i := 4; i >= 1; i-- {
		keys = append(keys, base-float64(i)*step)
	}
	keys = append(keys, base)
	for i := 1; i <= 4; i++ {
		keys = append(keys, base+float64(i)*step)
	}
	return keys
}

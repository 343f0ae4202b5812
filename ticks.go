// Package detsmear provides shared plotting and flag helpers for the
// smearing tools in this repository.
package detsmear

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// PreciseTicks is a plot.Ticker that labels major ticks with just enough
// digits to distinguish them, instead of gonum's default truncation.
type PreciseTicks struct {
	NSuggestedTicks int
}

// Ticks implements plot.Ticker.
func (t PreciseTicks) Ticks(min, max float64) []plot.Tick {
	if t.NSuggestedTicks == 0 {
		t.NSuggestedTicks = 4
	}

	if max <= min {
		panic("illegal range")
	}

	tens := math.Pow10(int(math.Floor(math.Log10(max - min))))
	n := (max - min) / tens
	for n < float64(t.NSuggestedTicks)-1 {
		tens /= 10
		n = (max - min) / tens
	}

	majorMult := int(n / float64(t.NSuggestedTicks-1))
	switch majorMult {
	case 7:
		majorMult = 6
	case 9:
		majorMult = 8
	}
	majorDelta := float64(majorMult) * tens

	var labels []float64
	val := math.Floor(min/majorDelta) * majorDelta
	for ; val <= max; val += majorDelta {
		if val >= min {
			labels = append(labels, val)
		}
	}
	prec := int(math.Ceil(math.Log10(val)) - math.Floor(math.Log10(majorDelta)))

	var ticks []plot.Tick
	for _, v := range labels {
		v = round(v, prec)
		ticks = append(ticks, plot.Tick{Value: v, Label: formatFloatTick(v)})
	}

	minorDelta := majorDelta / 2
	switch majorMult {
	case 3, 6:
		minorDelta = majorDelta / 3
	case 5:
		minorDelta = majorDelta / 5
	}

	for val = math.Floor(min/minorDelta) * minorDelta; val <= max; val += minorDelta {
		if val < min {
			continue
		}
		found := false
		for _, t := range ticks {
			if t.Value == val {
				found = true
			}
		}
		if !found {
			ticks = append(ticks, plot.Tick{Value: val})
		}
	}
	return ticks
}

// LogTicks is a plot.Ticker for logarithmic axes: labeled ticks at powers
// of ten, unlabeled minor ticks at the intermediate integer multiples.
type LogTicks struct{}

// Ticks implements plot.Ticker.
func (LogTicks) Ticks(min, max float64) []plot.Tick {
	if min <= 0 || max <= min {
		panic("illegal range")
	}

	var ticks []plot.Tick
	val := math.Pow10(int(math.Floor(math.Log10(min))))
	for val < max*10 {
		if val >= min && val <= max {
			ticks = append(ticks, plot.Tick{Value: val, Label: formatFloatTick(val)})
		}
		for i := 2.0; i < 10; i++ {
			minor := val * i
			if minor >= min && minor <= max {
				ticks = append(ticks, plot.Tick{Value: minor})
			}
		}
		val *= 10
	}
	return ticks
}

// LogScale is a plot.Normalizer mapping positive data logarithmically onto
// the unit interval.
type LogScale struct{}

// Normalize implements plot.Normalizer.
func (LogScale) Normalize(min, max, x float64) float64 {
	logMin := math.Log(min)
	return (math.Log(x) - logMin) / (math.Log(max) - logMin)
}

func round(x float64, prec int) float64 {
	if x == 0 {
		// Keep zero free of the negative bit.
		return 0
	}
	if prec >= 0 && x == math.Trunc(x) {
		return x
	}
	pow := math.Pow10(prec)
	intermed := x * pow
	if math.IsInf(intermed, 0) {
		return x
	}
	if x < 0 {
		x = math.Ceil(intermed - 0.5)
	} else {
		x = math.Floor(intermed + 0.5)
	}
	if x == 0 {
		return 0
	}
	return x / pow
}

func formatFloatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package physics

import "math"

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// rangeMiddle is the midpoint of [min, max] regardless of argument order.
func rangeMiddle(a, b float64) float64 {
	lo := math.Min(a, b)
	return lo + math.Abs(math.Max(a, b)-lo)/2
}

// Normalize maps a parameter value into normalization space.
//
// The value is clamped into the parameter range and measured from the range
// midpoint. Each half of the parameter range is scaled onto the matching half
// of the normalized range, so the halves may have different slopes. A half of
// zero length contributes 0. The value at the midpoint maps to normDefault.
// The fourth argument, the parameter default, does not move the midpoint.
//
// The result is negated unless inverted is set.
func Normalize(value, paramMin, paramMax, _, normMin, normMax, normDefault float64, inverted bool) float64 {
	maxValue := math.Max(paramMax, paramMin)
	if maxValue < value {
		value = maxValue
	}
	minValue := math.Min(paramMax, paramMin)
	if minValue > value {
		value = minValue
	}

	minNorm := math.Min(normMin, normMax)
	maxNorm := math.Max(normMin, normMax)
	middleNorm := normDefault

	middle := rangeMiddle(minValue, maxValue)
	offset := value - middle

	result := 0.0
	switch sign(offset) {
	case 1:
		nLength := maxNorm - middleNorm
		pLength := maxValue - middle
		if pLength != 0 {
			result = offset*(nLength/pLength) + middleNorm
		}
	case -1:
		nLength := minNorm - middleNorm
		pLength := minValue - middle
		if pLength != 0 {
			result = offset*(nLength/pLength) + middleNorm
		}
	default:
		result = middleNorm
	}

	if inverted {
		return result
	}
	return -result
}

// Saturate scales a simulation output into a parameter value.
//
// Values outside [paramMin, paramMax] are clamped; the unclamped value is
// recorded into below or above when it widens the extreme seen so far. The
// clamped value is blended into previous by weight/100.
func Saturate(output, scale, paramMin, paramMax, previous, weight float64, below, above *float64) float64 {
	value := output * scale

	if value < paramMin {
		if below != nil && value < *below {
			*below = value
		}
		value = paramMin
	} else if value > paramMax {
		if above != nil && value > *above {
			*above = value
		}
		value = paramMax
	}

	w := weight / MaximumWeight
	if w >= 1 {
		return value
	}
	return previous*(1-w) + value*w
}

// Denormalize converts a simulation value back into the output's
// destination range, updating its saturation extremes.
func (o *Output) Denormalize(value, paramMin, paramMax, previous float64) float64 {
	return Saturate(value, o.scale(o.TranslationScale, o.AngleScale), paramMin, paramMax,
		previous, o.Weight, &o.ValueBelowMinimum, &o.ValueExceededMaximum)
}

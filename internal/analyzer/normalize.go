package analyzer

import "math"

// normalizeTriple scales a (home, draw, away) weight triple to integer
// percentages summing to exactly 100. The rounding residual goes to the
// draw term; when draw is structurally impossible for the sport it goes
// to the away term instead and draw is forced to 0.
func normalizeTriple(home, draw, away float64, drawPossible bool) (h, d, a int) {
	if !drawPossible {
		total := home + away
		if total <= 0 {
			return 50, 0, 50
		}
		h = int(math.Round(home / total * 100))
		return h, 0, 100 - h
	}

	total := home + draw + away
	if total <= 0 {
		return 33, 34, 33
	}
	h = int(math.Round(home / total * 100))
	a = int(math.Round(away / total * 100))
	return h, 100 - h - a, a
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package analyzer

import (
	"math"
	"regexp"
	"strconv"
)

// Record is a parsed wins/losses fragment ("30勝25敗", "33 - 19",
// "客12 - 13", "8 - 2 , 5連勝" all reduce to the same shape).
type Record struct {
	Wins   int
	Losses int
	Total  int
	// WinPct is the win percentage rounded to one decimal place;
	// zero when Total is zero.
	WinPct float64
}

// AvgScore is a parsed "scored / allowed" per-game average fragment.
type AvgScore struct {
	Scored  float64
	Allowed float64
}

var (
	recordNativeRe  = regexp.MustCompile(`(\d+)\s*勝\s*(\d+)\s*敗`)
	recordGenericRe = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	avgScoreRe      = regexp.MustCompile(`([\d.]+)\s*/\s*([\d.]+)`)
)

// ParseRecord extracts a wins/losses record from free site text.
// The native X勝Y敗 notation is tried first, then a generic
// "X - Y" pair; surrounding text is ignored. nil means no match.
func ParseRecord(s string) *Record {
	if s == "" {
		return nil
	}
	m := recordNativeRe.FindStringSubmatch(s)
	if m == nil {
		m = recordGenericRe.FindStringSubmatch(s)
	}
	if m == nil {
		return nil
	}
	w, _ := strconv.Atoi(m[1])
	l, _ := strconv.Atoi(m[2])
	return newRecord(w, l)
}

func newRecord(w, l int) *Record {
	total := w + l
	var pct float64
	if total > 0 {
		pct = math.Round(float64(w)/float64(total)*1000) / 10
	}
	return &Record{Wins: w, Losses: l, Total: total, WinPct: pct}
}

// ParseAvgScore extracts a "scored / allowed" average pair, e.g.
// "113.5 / 108.2". Leading and trailing text is ignored. nil means no match.
func ParseAvgScore(s string) *AvgScore {
	if s == "" {
		return nil
	}
	m := avgScoreRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	scored, err1 := strconv.ParseFloat(m[1], 64)
	allowed, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &AvgScore{Scored: scored, Allowed: allowed}
}

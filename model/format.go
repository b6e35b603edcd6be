package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO 8601 duration such as PT1H2M3S to seconds.
// Anything it does not understand counts as zero.
func ParseISODuration(s string) int64 {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	var total int64
	for i, unit := range []int64{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0
		}
		total += n * unit
	}

	return total
}

func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// HumanizeCount renders 1234567 as 1.2M and 340000 as 340K.
func HumanizeCount(n uint64) string {
	if n < 1000 {
		return strconv.FormatUint(n, 10)
	}
	if k := roundTenth(float64(n) / 1e3); k < 1000 {
		return trimTenth(k) + "K"
	}
	return trimTenth(roundTenth(float64(n)/1e6)) + "M"
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}

func trimTenth(f float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(f, 'f', 1, 64), ".0")
}

var starBreakpoints = []struct {
	ratio float64
	stars float64
}{
	{0.08, 5},
	{0.06, 4.5},
	{0.04, 4},
	{0.03, 3.5},
	{0.02, 3},
	{0.015, 2.5},
	{0.01, 2},
	{0.005, 1.5},
}

// StarRating is a display heuristic on the like/view ratio, 0 to 5 in half steps.
func StarRating(likes, views uint64) float64 {
	if views == 0 || likes == 0 {
		return 0
	}
	ratio := float64(likes) / float64(views)
	for _, bp := range starBreakpoints {
		if ratio >= bp.ratio {
			return bp.stars
		}
	}
	return 1
}

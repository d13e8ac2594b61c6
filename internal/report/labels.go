// Package report renders scan results for humans: timeframe labels, star
// strings and the export text format.
package report

import (
	"strings"

	"github.com/zlin/chanscan/internal/oracle"
	"github.com/zlin/chanscan/internal/scan"
)

// TimeframeLabel returns the display label of a timeframe.
func TimeframeLabel(tf oracle.Timeframe) string {
	switch tf {
	case oracle.TimeframeDay:
		return "日线"
	case oracle.Timeframe30m:
		return "30分"
	case oracle.Timeframe5m:
		return "5分"
	default:
		return string(tf)
	}
}

// Descriptor joins the base timeframe label with the confirming labels,
// e.g. "日线+30分+5分".
func Descriptor(r *scan.Result) string {
	labels := []string{TimeframeLabel(r.Base.Timeframe)}
	for _, ev := range r.Confirming {
		labels = append(labels, TimeframeLabel(ev.Timeframe))
	}
	return strings.Join(labels, "+")
}

// SignalType renders the buy-point column: the signal class, suffixed with
// the resonance descriptor when more than one timeframe confirmed.
func SignalType(r *scan.Result) string {
	if r.ResonanceCount >= 2 {
		return r.Base.Class + "(" + Descriptor(r) + ")"
	}
	return r.Base.Class
}

// RiskStars renders a 1..5 rating as filled and hollow stars, e.g. "★★★☆☆".
func RiskStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

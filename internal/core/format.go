package core

import (
	"fmt"
	"math"
)

// FormatHours renders fractional hours as a compact Russian label:
// "0 ч", "8 ч", "1 ч 30 м". Rounds to the nearest minute.
func FormatHours(h float64) string {
	totalMinutes := int(math.Round(h * 60))
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours == 0 && minutes == 0 {
		return "0 ч"
	}
	if minutes == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d м", hours, minutes)
}

// FormatBreakDuration renders a break length in seconds as "1ч 5м" or "25м".
// Truncates, it does not round; a 29-second exit shows as "0м".
func FormatBreakDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dч %dм", hours, minutes)
	}
	return fmt.Sprintf("%dм", minutes)
}

// BreakIcon returns the marker shown next to a break kind.
func BreakIcon(kind string) string {
	if kind == BreakLunch {
		return "🍽️"
	}
	return "🚬"
}

// HoursColor maps worked hours onto the red-to-green ramp used by the
// calendar and bubble views: 0 hours is rgb(220, 38, 38), 8 hours and more
// is rgb(34, 197, 94), linear per channel in between.
func HoursColor(h float64) string {
	ratio := h / 8
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	r := int(math.Round(220 - 186*ratio))
	g := int(math.Round(38 + 159*ratio))
	b := int(math.Round(38 + 56*ratio))
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

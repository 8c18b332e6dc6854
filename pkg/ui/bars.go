package ui

import "strings"

const (
	BarFull  = "█"
	BarEmpty = "░"
)

// Bar renders value relative to max as a fixed-width bar
func Bar(value, max, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 && value > 0 {
		filled = value * width / max
		if filled == 0 {
			filled = 1
		}
		if filled > width {
			filled = width
		}
	}
	return strings.Repeat(BarFull, filled) + strings.Repeat(BarEmpty, width-filled)
}

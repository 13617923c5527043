package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	progressFull  = "▰"
	progressEmpty = "▱"
)

// formatTime converts seconds to M:SS format
func formatTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// truncateText cuts text to max display cells, ending in "..."
func truncateText(text string, max int) string {
	if runewidth.StringWidth(text) <= max {
		return text
	}
	return runewidth.Truncate(text, max, "...")
}

// progressBar renders fraction (clamped to 0..1) as length cells
func progressBar(fraction float64, length int) string {
	if length <= 0 {
		return ""
	}
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Floor(fraction * float64(length)))
	return strings.Repeat(progressFull, filled) + strings.Repeat(progressEmpty, length-filled)
}

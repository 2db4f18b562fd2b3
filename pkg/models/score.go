package models

import "math"

// Scores are stored as a single byte 0-100 representing 0.0-10.0 at
// one-decimal precision.

// EncodeScore clamps a display score to [0.0, 10.0] and stores it as
// tenths. Halves round away from zero (7.25 -> 73).
func EncodeScore(display float64) uint8 {
	clamped := math.Min(math.Max(display, 0), 10)
	return uint8(math.Round(clamped * 10))
}

// DecodeScore converts a stored score back to its display value.
func DecodeScore(stored uint8) float64 {
	return float64(stored) / 10
}

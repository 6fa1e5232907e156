package model

import "math"

// ToCents переводит денежную сумму в целые копейки с округлением.
func ToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FromCents переводит копейки обратно в денежную сумму.
func FromCents(c int64) float64 {
	return float64(c) / 100
}

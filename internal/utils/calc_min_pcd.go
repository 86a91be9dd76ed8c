package utils

import "math"

// ComputeMinPCD devolve a cota mínima de PcD da Lei 8.213/91 (art. 93)
// para um quadro de total funcionários. Frações arredondam para cima.
func ComputeMinPCD(total int) int {
	var pct float64
	switch {
	case total < 100:
		return 0
	case total <= 200:
		pct = 0.02
	case total <= 500:
		pct = 0.03
	case total <= 1000:
		pct = 0.04
	default:
		pct = 0.05
	}
	return int(math.Ceil(float64(total) * pct))
}

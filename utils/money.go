package utils

import "fmt"

// Cedis renders an amount held in pesewas as Ghana cedis for receipts
// and notifications.
func Cedis(pesewas int64) string {
	sign := ""
	if pesewas < 0 {
		sign = "-"
		pesewas = -pesewas
	}
	return fmt.Sprintf("%sGHS %d.%02d", sign, pesewas/100, pesewas%100)
}

package infra

import "fmt"

// FormatBRL renders integer centavos as a BRL amount, e.g. 31000 -> "R$ 310.00".
func FormatBRL(centavos int64) string {
	sign := ""
	if centavos < 0 {
		sign = "-"
		centavos = -centavos
	}
	return fmt.Sprintf("%sR$ %d.%02d", sign, centavos/100, centavos%100)
}

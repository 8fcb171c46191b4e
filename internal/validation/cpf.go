package validation

// ValidCPF reports whether cpf is a checksum-valid Brazilian CPF.
// The value must already be normalized to digits only. A CPF is valid
// when it has exactly 11 digits, the digits are not all identical, and
// both check digits (positions 10 and 11) match the weighted sums over
// the preceding digits.
func ValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for i := 0; i < len(cpf); i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return false
		}
	}

	allSame := true
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}

	// Check digit at position t is derived from the t digits before it,
	// weighted (t+1)-c for the digit at index c.
	for t := 9; t < 11; t++ {
		sum := 0
		for c := 0; c < t; c++ {
			sum += int(cpf[c]-'0') * ((t + 1) - c)
		}
		d := ((10 * sum) % 11) % 10
		if int(cpf[t]-'0') != d {
			return false
		}
	}
	return true
}

package model

// brazilianStates is the closed set of the 26 state codes plus the
// federal district.
var brazilianStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// IsBrazilianState reports membership in the federative-unit set. The
// code must already be upper-cased.
func IsBrazilianState(code string) bool {
	_, ok := brazilianStates[code]
	return ok
}

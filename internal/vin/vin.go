// Package vin implements structural validation of 17-character Vehicle
// Identification Numbers, including the ISO 3779 check-digit algorithm.
package vin

import (
	"fmt"
	"strings"
)

// VIN is a validated, normalized (trimmed, uppercased) identification number.
type VIN struct {
	Value   string `json:"value"`
	CheckOK bool   `json:"check_ok"`
}

func (v VIN) String() string { return v.Value }

// Letter-to-value translation for the check-digit computation. Digits map to
// themselves; I, O and Q have no value and are rejected earlier.
var transliteration = map[byte]int{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4, '5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

// Positional weights; position 9 (index 8) is the check digit itself.
var weights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

const forbidden = "IOQ"

// LengthError reports a VIN whose normalized form is not 17 characters.
type LengthError struct {
	Length int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("vin: must be exactly 17 characters, got %d", e.Length)
}

// ForbiddenCharacterError reports a VIN containing I, O or Q, which are
// excluded from the VIN alphabet to avoid confusion with 1 and 0.
type ForbiddenCharacterError struct {
	Char byte
}

func (e *ForbiddenCharacterError) Error() string {
	return fmt.Sprintf("vin: cannot contain I, O, or Q (found %q)", e.Char)
}

// CharsetError reports a character outside [A-HJ-NPR-Z0-9].
type CharsetError struct {
	Char byte
}

func (e *CharsetError) Error() string {
	return fmt.Sprintf("vin: must be alphanumeric, invalid character %q", e.Char)
}

// CheckDigitMismatchError reports a VIN whose 9th character does not match
// the computed check digit.
type CheckDigitMismatchError struct {
	Want byte
	Got  byte
}

func (e *CheckDigitMismatchError) Error() string {
	return fmt.Sprintf("vin: check digit mismatch, computed %q but VIN has %q", e.Want, e.Got)
}

// Normalize trims whitespace and uppercases. It is the only correction
// Validate ever applies.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// CheckDigit computes the ISO check character for a normalized 17-character
// VIN: sum of transliterated values times positional weights, modulo 11,
// with 10 written as 'X'. The second return is false if any character has
// no transliteration value.
func CheckDigit(v string) (byte, bool) {
	total := 0
	for i := 0; i < len(v) && i < len(weights); i++ {
		val, ok := transliteration[v[i]]
		if !ok {
			return 0, false
		}
		total += val * weights[i]
	}
	rem := total % 11
	if rem == 10 {
		return 'X', true
	}
	return byte('0' + rem), true
}

// Validate normalizes raw and checks length, alphabet, and check digit, in
// that order. It is total over any input: malformed VINs come back as typed
// errors, never panics.
func Validate(raw string) (VIN, error) {
	v := Normalize(raw)
	if len(v) != 17 {
		return VIN{}, &LengthError{Length: len(v)}
	}
	for i := 0; i < len(v); i++ {
		if strings.IndexByte(forbidden, v[i]) >= 0 {
			return VIN{}, &ForbiddenCharacterError{Char: v[i]}
		}
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if _, ok := transliteration[c]; !ok {
			return VIN{}, &CharsetError{Char: c}
		}
	}
	check, ok := CheckDigit(v)
	if !ok || check != v[8] {
		return VIN{}, &CheckDigitMismatchError{Want: check, Got: v[8]}
	}
	return VIN{Value: v, CheckOK: true}, nil
}

// IsValid is the cheap boolean form of Validate, used to gate automatic
// decoding without building error detail.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

package vin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodVIN = "1HGCM82633A004352"

func TestValidate_KnownGood(t *testing.T) {
	v, err := Validate(goodVIN)
	require.NoError(t, err)
	assert.Equal(t, goodVIN, v.Value)
	assert.True(t, v.CheckOK)
	assert.Equal(t, byte('3'), v.Value[8])
}

func TestValidate_Normalization(t *testing.T) {
	v, err := Validate("  1hgcm82633a004352\n")
	require.NoError(t, err)
	assert.Equal(t, goodVIN, v.Value)
}

func TestValidate_Length(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "whitespace only", raw: "   "},
		{name: "too short", raw: "1HGCM82633A00435"},
		{name: "too long", raw: "1HGCM82633A0043522"},
		{name: "trims to short", raw: " 1HGCM82633A00435 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw)
			var lengthErr *LengthError
			require.ErrorAs(t, err, &lengthErr)
		})
	}
}

func TestValidate_ForbiddenCharacters(t *testing.T) {
	// I/O/Q must be reported as forbidden, not as a generic charset or
	// check-digit failure.
	for _, c := range []byte{'I', 'O', 'Q'} {
		raw := goodVIN[:3] + string(c) + goodVIN[4:]
		_, err := Validate(raw)
		var forbiddenErr *ForbiddenCharacterError
		require.ErrorAs(t, err, &forbiddenErr, "char %q", c)
		assert.Equal(t, c, forbiddenErr.Char)
	}
}

func TestValidate_Charset(t *testing.T) {
	raw := goodVIN[:5] + "*" + goodVIN[6:]
	_, err := Validate(raw)
	var charsetErr *CharsetError
	require.ErrorAs(t, err, &charsetErr)
	assert.Equal(t, byte('*'), charsetErr.Char)
}

func TestValidate_WrongCheckDigit(t *testing.T) {
	raw := goodVIN[:8] + "4" + goodVIN[9:]
	_, err := Validate(raw)
	var mismatchErr *CheckDigitMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, byte('3'), mismatchErr.Want)
	assert.Equal(t, byte('4'), mismatchErr.Got)
}

// The check digit detects single-character transcription errors with high
// but not full probability: for every non-check position there is at least
// one substitution it catches.
func TestValidate_SingleCharMutationDetected(t *testing.T) {
	alphabet := "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"
	for pos := 0; pos < 17; pos++ {
		if pos == 8 {
			continue
		}
		detected := false
		for i := 0; i < len(alphabet) && !detected; i++ {
			c := alphabet[i]
			if c == goodVIN[pos] {
				continue
			}
			mutated := goodVIN[:pos] + string(c) + goodVIN[pos+1:]
			if _, err := Validate(mutated); err != nil {
				var mismatchErr *CheckDigitMismatchError
				detected = assert.ErrorAs(t, err, &mismatchErr)
			}
		}
		assert.True(t, detected, "no detectable substitution at position %d", pos)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid(goodVIN))
	assert.True(t, IsValid(" 1hgcm82633a004352 "))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("1HGCM82633A004353"))
}

func TestCheckDigit_TenMapsToX(t *testing.T) {
	// Remainder 10 is written as 'X', not as two digits.
	const xVIN = "1M8GDM9AXKP042788"
	check, ok := CheckDigit(xVIN)
	require.True(t, ok)
	assert.Equal(t, byte('X'), check)

	v, err := Validate(xVIN)
	require.NoError(t, err)
	assert.True(t, v.CheckOK)
}

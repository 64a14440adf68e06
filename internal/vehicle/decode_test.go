package vehicle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/entity"
)

func TestDangerousGoods(t *testing.T) {
	tests := []struct {
		name string
		elec string
		ft1  string
		ft2  string
		want bool
	}{
		{name: "plain gasoline", ft1: "Gasoline", want: false},
		{name: "diesel", ft1: "Diesel", want: false},
		{name: "electrification level set", elec: "BEV (Battery Electric Vehicle)", want: true},
		{name: "electric primary fuel", ft1: "Electric", want: true},
		{name: "hybrid secondary fuel", ft1: "Gasoline", ft2: "Hybrid", want: true},
		{name: "plug-in keyword", ft2: "Plug-in Hybrid", want: true},
		{name: "case insensitive", ft1: "ELECTRIC", want: true},
		{name: "keyword as substring", ft1: "Fuel Cell (FCEV)", want: true}, // "ev" inside "FCEV"
		{name: "all empty", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DangerousGoods(tt.elec, tt.ft1, tt.ft2))
		})
	}
}

func TestApplyDecode(t *testing.T) {
	v := &entity.Vehicle{
		Make:  "stale make",
		Model: "stale model",
		Year:  "1999",
	}
	res := &decode.Result{
		Make:            "HONDA",
		Model:           "Accord",
		ModelYear:       "2003",
		BodyType:        "Sedan",
		Manufacturer:    "AMERICAN HONDA MOTOR CO., INC.",
		PlantCountry:    "UNITED STATES (USA)",
		EngineCylinders: "6",
		Displacement:    "3.0",
		FuelTypePrimary: "Gasoline",
		Raw:             []byte(`{"Results":[]}`),
		DecodedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	ApplyDecode(v, res)

	assert.Equal(t, "HONDA", v.Make)
	assert.Equal(t, "Accord", v.Model)
	assert.Equal(t, "2003", v.Year)
	assert.Equal(t, "Sedan", v.BodyType)
	assert.Equal(t, "6", v.EngineCylinders)
	assert.False(t, v.IsDangerousGoods)
	require.NotNil(t, v.DecodedAt)
	assert.Equal(t, res.DecodedAt, *v.DecodedAt)
	assert.Equal(t, res.Raw, v.DecodeRaw)
}

func TestApplyDecode_ReplacesNeverAppends(t *testing.T) {
	v := &entity.Vehicle{
		FuelTypePrimary:      "Gasoline",
		ElectrificationLevel: "HEV",
		IsDangerousGoods:     true,
		Year:                 "2010",
	}
	// A refresh with no electrification data replaces the old values and
	// clears the DG flag.
	ApplyDecode(v, &decode.Result{FuelTypePrimary: "Diesel"})

	assert.Equal(t, "Diesel", v.FuelTypePrimary)
	assert.Empty(t, v.ElectrificationLevel)
	assert.False(t, v.IsDangerousGoods)
	// Year is kept when the decode did not return one.
	assert.Equal(t, "2010", v.Year)
}

func TestValidateYear(t *testing.T) {
	assert.NoError(t, ValidateYear(""))
	assert.NoError(t, ValidateYear("1950"))
	assert.NoError(t, ValidateYear("2035"))
	assert.Error(t, ValidateYear("49"))
	assert.Error(t, ValidateYear("20033"))
	assert.Error(t, ValidateYear("abcd"))
	assert.Error(t, ValidateYear("1949"))
	assert.Error(t, ValidateYear("2036"))
}

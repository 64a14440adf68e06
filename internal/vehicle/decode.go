package vehicle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/entity"
)

// Fuel-type substrings that mark a vehicle as dangerous goods for shipping.
var dgKeywords = []string{"electric", "hybrid", "plug-in", "plug in", "phev", "ev", "bev", "hev"}

// DangerousGoods derives the DG flag from decoded fields: any
// electrification level, or an electrified fuel type on either slot.
func DangerousGoods(electrificationLevel, fuelPrimary, fuelSecondary string) bool {
	if strings.TrimSpace(electrificationLevel) != "" {
		return true
	}
	ft1 := strings.ToLower(strings.TrimSpace(fuelPrimary))
	ft2 := strings.ToLower(strings.TrimSpace(fuelSecondary))
	for _, kw := range dgKeywords {
		if strings.Contains(ft1, kw) || strings.Contains(ft2, kw) {
			return true
		}
	}
	return false
}

// ApplyDecode merges decoded attributes into the vehicle by direct field
// replacement (never append), then recomputes the dangerous-goods flag.
// Year is only replaced when the service returned one.
func ApplyDecode(v *entity.Vehicle, res *decode.Result) {
	v.Make = res.Make
	v.Model = res.Model
	if res.ModelYear != "" {
		v.Year = res.ModelYear
	}
	v.BodyType = res.BodyType
	v.Manufacturer = res.Manufacturer
	v.PlantCountry = res.PlantCountry
	v.EngineCylinders = res.EngineCylinders
	v.Displacement = res.Displacement
	v.FuelTypePrimary = res.FuelTypePrimary
	v.FuelTypeSecondary = res.FuelTypeSecondary
	v.ElectrificationLevel = res.ElectrificationLevel
	v.DecodeRaw = res.Raw
	decodedAt := res.DecodedAt
	v.DecodedAt = &decodedAt
	v.IsDangerousGoods = DangerousGoods(v.ElectrificationLevel, v.FuelTypePrimary, v.FuelTypeSecondary)
}

var yearRe = regexp.MustCompile(`^\d{4}$`)

// ValidateYear accepts an empty year or a 4-digit year between 1950 and
// 2035.
func ValidateYear(year string) error {
	if year == "" {
		return nil
	}
	if !yearRe.MatchString(year) {
		return fmt.Errorf("vehicle: year must be exactly 4 digits, got %q", year)
	}
	n, _ := strconv.Atoi(year)
	if n < 1950 || n > 2035 {
		return fmt.Errorf("vehicle: year must be between 1950 and 2035, got %d", n)
	}
	return nil
}

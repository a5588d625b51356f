package matches

import "github.com/myautoimport/site-api/internal/catalog"

// Matches reports whether every specified constraint in the preference is
// satisfied by the car. Unknown car attributes count as zero for range
// checks, mirroring how the catalog treats unpriced listings.
func Matches(p *BuyerPrefs, car *catalog.Car) bool {
	if !p.NotifyEmail {
		return false
	}
	if !inRange(p.BudgetMin, p.BudgetMax, intOrZero(car.Price)) {
		return false
	}
	if !inRange(p.YearMin, p.YearMax, intOrZero(car.Year)) {
		return false
	}
	if p.KMMax != nil && intOrZero(car.KM) > *p.KMMax {
		return false
	}
	return fits(p.Brands, car.Brand) &&
		fits(p.Models, car.Model) &&
		fits(p.Fuel, car.Fuel) &&
		fits(p.Gearbox, car.Gearbox) &&
		fits(p.Body, car.Body)
}

// Filter returns the subset of preferences matching the car.
func Filter(prefs []BuyerPrefs, car *catalog.Car) []BuyerPrefs {
	var out []BuyerPrefs
	for i := range prefs {
		if Matches(&prefs[i], car) {
			out = append(out, prefs[i])
		}
	}
	return out
}

// fits is satisfied by an empty constraint list or by list membership.
func fits(list []string, value string) bool {
	if len(list) == 0 {
		return true
	}
	if value == "" {
		return false
	}
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func inRange(min, max *int, value int) bool {
	if min != nil && value < *min {
		return false
	}
	if max != nil && value > *max {
		return false
	}
	return true
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

package catalog

import "errors"

// ErrCarNotFound is returned when a car id does not exist in the catalog.
var ErrCarNotFound = errors.New("car not found")

// Car holds the catalog attributes relevant to buyer-preference matching.
// Numeric attributes are nullable: a dealer may list a car before price or
// mileage is known.
type Car struct {
	ID      string  `json:"id"`
	Slug    string  `json:"slug"`
	Brand   string  `json:"brand"`
	Model   string  `json:"model"`
	Fuel    string  `json:"fuel"`
	Gearbox string  `json:"gearbox"`
	Body    string  `json:"body"`
	Price   *int    `json:"price"`
	Year    *int    `json:"year"`
	KM      *int    `json:"km"`
}

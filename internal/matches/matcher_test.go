package matches

import (
	"testing"

	"github.com/myautoimport/site-api/internal/catalog"
)

func intPtr(v int) *int { return &v }

func testCar() *catalog.Car {
	return &catalog.Car{
		ID:      "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		Slug:    "bmw-320d-2019",
		Brand:   "BMW",
		Model:   "320d",
		Fuel:    "diesel",
		Gearbox: "manual",
		Body:    "sedan",
		Price:   intPtr(21500),
		Year:    intPtr(2019),
		KM:      intPtr(84000),
	}
}

func openPrefs() BuyerPrefs {
	return BuyerPrefs{UserID: "u1", NotifyEmail: true}
}

func TestMatchesUnconstrainedPrefs(t *testing.T) {
	p := openPrefs()
	if !Matches(&p, testCar()) {
		t.Fatal("fully unconstrained prefs should match any car")
	}
}

func TestMatchesConstraints(t *testing.T) {
	tests := []struct {
		name string
		mod  func(p *BuyerPrefs)
		want bool
	}{
		{"brand in list", func(p *BuyerPrefs) { p.Brands = []string{"Audi", "BMW"} }, true},
		{"brand not in list", func(p *BuyerPrefs) { p.Brands = []string{"Audi"} }, false},
		{"model in list", func(p *BuyerPrefs) { p.Models = []string{"320d"} }, true},
		{"model not in list", func(p *BuyerPrefs) { p.Models = []string{"118i"} }, false},
		{"fuel mismatch", func(p *BuyerPrefs) { p.Fuel = []string{"petrol"} }, false},
		{"gearbox match", func(p *BuyerPrefs) { p.Gearbox = []string{"manual"} }, true},
		{"body mismatch", func(p *BuyerPrefs) { p.Body = []string{"suv"} }, false},
		{"budget range ok", func(p *BuyerPrefs) { p.BudgetMin = intPtr(15000); p.BudgetMax = intPtr(25000) }, true},
		{"over budget", func(p *BuyerPrefs) { p.BudgetMax = intPtr(20000) }, false},
		{"under budget floor", func(p *BuyerPrefs) { p.BudgetMin = intPtr(30000) }, false},
		{"year range ok", func(p *BuyerPrefs) { p.YearMin = intPtr(2018) }, true},
		{"too old", func(p *BuyerPrefs) { p.YearMin = intPtr(2021) }, false},
		{"too new", func(p *BuyerPrefs) { p.YearMax = intPtr(2018) }, false},
		{"mileage under cap", func(p *BuyerPrefs) { p.KMMax = intPtr(100000) }, true},
		{"mileage over cap", func(p *BuyerPrefs) { p.KMMax = intPtr(50000) }, false},
		{"email opt-out never matches", func(p *BuyerPrefs) { p.NotifyEmail = false }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openPrefs()
			tt.mod(&p)
			if got := Matches(&p, testCar()); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMatchesNilCarAttributesCountAsZero(t *testing.T) {
	car := testCar()
	car.Price = nil
	car.KM = nil

	p := openPrefs()
	p.BudgetMax = intPtr(10000)
	p.KMMax = intPtr(50000)
	if !Matches(&p, car) {
		t.Fatal("nil price/km count as zero, which satisfies upper bounds")
	}

	p = openPrefs()
	p.BudgetMin = intPtr(1000)
	if Matches(&p, car) {
		t.Fatal("nil price counts as zero, which fails a minimum-budget bound")
	}
}

func TestFilter(t *testing.T) {
	prefs := []BuyerPrefs{
		{UserID: "match-all", NotifyEmail: true},
		{UserID: "wrong-brand", NotifyEmail: true, Brands: []string{"Audi"}},
		{UserID: "opted-out", NotifyEmail: false},
		{UserID: "right-brand", NotifyEmail: true, Brands: []string{"BMW"}},
	}

	got := Filter(prefs, testCar())
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].UserID != "match-all" || got[1].UserID != "right-brand" {
		t.Fatalf("unexpected match set: %+v", got)
	}
}

package matches

// BuyerPrefs is one stored buyer-preference row. Slice fields are
// membership constraints; an empty slice means unconstrained. Nil numeric
// bounds mean unconstrained.
type BuyerPrefs struct {
	UserID      string   `json:"user_id"`
	Name        string   `json:"name"`
	NotifyEmail bool     `json:"notify_email"`
	Brands      []string `json:"brands"`
	Models      []string `json:"models"`
	Fuel        []string `json:"fuel"`
	Gearbox     []string `json:"gearbox"`
	Body        []string `json:"body"`
	BudgetMin   *int     `json:"budget_min"`
	BudgetMax   *int     `json:"budget_max"`
	YearMin     *int     `json:"year_min"`
	YearMax     *int     `json:"year_max"`
	KMMax       *int     `json:"km_max"`
}

package normalize

// RoleDefaults are the canned placeholders substituted for one party role.
type RoleDefaults struct {
	Company    string `yaml:"company"`
	Street     string `yaml:"street"`
	City       string `yaml:"city"`
	PostalCode string `yaml:"postal_code"`
	Country    string `yaml:"country"`
}

// Defaults groups every canned value the normalizer may substitute.
type Defaults struct {
	Customer   RoleDefaults `yaml:"customer"`
	Loading    RoleDefaults `yaml:"loading"`
	Delivery   RoleDefaults `yaml:"delivery"`
	CargoTitle string       `yaml:"cargo_title"`
	Currency   string       `yaml:"currency"`

	// ReferencePrefix starts the reference given to orders printed without one.
	ReferencePrefix string `yaml:"reference_prefix"`
}

// Window hours for defaulted time windows.
const (
	loadingFromHour     = 8
	loadingToHour       = 15
	destinationFromHour = 7
	destinationToHour   = 13
	destinationDayShift = 2
)

// DefaultDefaults returns the placeholders used for the Transalliance family.
func DefaultDefaults() Defaults {
	return Defaults{
		Customer: RoleDefaults{
			Company:    "Unknown customer",
			Street:     "Unknown street",
			City:       "Vilnius",
			PostalCode: "LT-00000",
			Country:    "LT",
		},
		Loading: RoleDefaults{
			Company:    "Unknown loading company",
			Street:     "Unknown street",
			City:       "London",
			PostalCode: "EC1A 1AA",
			Country:    "GB",
		},
		Delivery: RoleDefaults{
			Company:    "Unknown delivery company",
			Street:     "Unknown street",
			City:       "Paris",
			PostalCode: "75001",
			Country:    "FR",
		},
		CargoTitle:      "General cargo",
		Currency:        "EUR",
		ReferencePrefix: "NOREF",
	}
}

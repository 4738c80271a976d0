package entity

import "slices"

// Address is a postal address as printed on a transport document.
type Address struct {
	Street     string `json:"street_address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"` // ISO 3166-1 alpha-2 after normalization
}

// Party is a company taking part in an order (customer, loading or delivery company).
type Party struct {
	Company       string  `json:"company"`
	CompanyCode   string  `json:"company_code"`
	VATCode       string  `json:"vat_code"`
	Email         string  `json:"email"`
	ContactPerson string  `json:"contact_person"`
	Address       Address `json:"address"`
}

// TimeWindow holds local ISO-8601 timestamps (2006-01-02T15:04:05, no zone).
type TimeWindow struct {
	DatetimeFrom string `json:"datetime_from"`
	DatetimeTo   string `json:"datetime_to"`
}

// IsZero reports whether neither bound was set.
func (w TimeWindow) IsZero() bool {
	return w.DatetimeFrom == "" && w.DatetimeTo == ""
}

// Location is a loading or destination stop.
type Location struct {
	CompanyAddress Party      `json:"company_address"`
	Time           TimeWindow `json:"time"`
}

// CargoItem is one line of goods.
type CargoItem struct {
	Title        string  `json:"title"`
	Weight       float64 `json:"weight"`
	PackageCount int     `json:"package_count"`
	PackageType  string  `json:"package_type"`
}

// Order is the normalized record handed to the order sink.
type Order struct {
	ID                   string      `json:"id,omitempty"`
	OrderReference       string      `json:"order_reference"`
	Customer             Party       `json:"customer"`
	LoadingLocations     []Location  `json:"loading_locations"`
	DestinationLocations []Location  `json:"destination_locations"`
	Cargos               []CargoItem `json:"cargos"`
	FreightPrice         *float64    `json:"freight_price,omitempty"`
	FreightCurrency      string      `json:"freight_currency,omitempty"`
	AttachmentFilenames  []string    `json:"attachment_filenames"`
}

// NewOrder returns an empty order with non-nil collections.
func NewOrder() *Order {
	return &Order{
		LoadingLocations:     make([]Location, 0, 1),
		DestinationLocations: make([]Location, 0, 1),
		Cargos:               make([]CargoItem, 0, 1),
		AttachmentFilenames:  make([]string, 0, 1),
	}
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.LoadingLocations = slices.Clone(o.LoadingLocations)
	c.DestinationLocations = slices.Clone(o.DestinationLocations)
	c.Cargos = slices.Clone(o.Cargos)
	c.AttachmentFilenames = slices.Clone(o.AttachmentFilenames)
	if o.FreightPrice != nil {
		p := *o.FreightPrice
		c.FreightPrice = &p
	}
	return &c
}

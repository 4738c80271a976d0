package normalize

import (
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// FallbackReference marks orders produced by Fallback.
const FallbackReference = "FALLBACK"

// Fallback returns the canonical, fully normalized order used when extraction
// fails outright.
func (n *Normalizer) Fallback(orderDate time.Time, attachment string) *entity.Order {
	o := entity.NewOrder()
	o.OrderReference = FallbackReference
	o.Customer = entity.Party{
		Company: "Test Client",
		Address: entity.Address{
			Street:     "Rugin G. 2",
			City:       "VILNIUS",
			PostalCode: "LT-01205",
			Country:    "LT",
		},
	}
	o.LoadingLocations = append(o.LoadingLocations, entity.Location{
		CompanyAddress: entity.Party{
			Company: "Transalliance TS Ltd",
			Address: entity.Address{
				Street:     "Unit 2, Brookfield Park",
				City:       "DERBY",
				PostalCode: "DE21 4SU",
				Country:    "GB",
			},
		},
	})
	o.DestinationLocations = append(o.DestinationLocations, entity.Location{
		CompanyAddress: entity.Party{
			Company: "Transalliance Delivery",
			Address: entity.Address{
				Street:     "12 RUE DE LA PAIX",
				City:       "PARIS",
				PostalCode: "75002",
				Country:    "FR",
			},
		},
	})
	o.Cargos = append(o.Cargos, entity.CargoItem{
		Title:        n.defaults.CargoTitle,
		Weight:       0,
		PackageCount: 1,
		PackageType:  "pallet",
	})
	if attachment != "" {
		o.AttachmentFilenames = append(o.AttachmentFilenames, attachment)
	}

	n.Normalize(o, Options{OrderDate: orderDate})
	return o
}

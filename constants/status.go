package constants

// OrderStatus is the canonical status for rows in the orders table.
type OrderStatus string

// Stable values (store these exact strings in DB).
const (
	OrderStatusParsed   OrderStatus = "PARSED"   // extracted from the document
	OrderStatusFallback OrderStatus = "FALLBACK" // canonical fallback record was used
)

// StatusFor returns the status matching the fallback flag of a parse result.
func StatusFor(fallback bool) OrderStatus {
	if fallback {
		return OrderStatusFallback
	}
	return OrderStatusParsed
}

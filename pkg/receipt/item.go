package receipt

// Unit codes printed by Romanian fiscal receipts.
const (
	UnitPiece = "BUC"
	UnitKg    = "KG"
	UnitGram  = "G"
	UnitLiter = "L"
)

// Item is one purchased product line extracted from a receipt.
type Item struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Sale     float64 `json:"sale"` // fractional discount in [0,1], 0 when none
}

// Result is the terminal artifact of a pipeline run. Total is the grand
// total printed on the receipt when the parser found one; nil means "total
// unknown", which is a valid outcome, not a failure.
type Result struct {
	Items []Item   `json:"items"`
	Total *float64 `json:"total,omitempty"`
}

// ItemsTotal aggregates the receipt value from its items: price×quantity for
// piece-counted items, the line price otherwise (weighed goods already carry
// the final amount).
func (r Result) ItemsTotal() float64 {
	var sum float64
	for _, it := range r.Items {
		if it.Unit == UnitPiece {
			sum += it.Price * it.Quantity
		} else {
			sum += it.Price
		}
	}
	return round2(sum)
}

package receipt

import "testing"

func TestParseSingleItem(t *testing.T) {
	items, _ := ParseLines([]string{"2 BUC X 3,00", "PAINE"})
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Quantity != 2 || it.Unit != "BUC" || it.Name != "PAINE" || it.Price != 3.00 || it.Sale != 0 {
		t.Fatalf("unexpected item %+v", it)
	}
}

func TestParseDiscountAppliesToLastItem(t *testing.T) {
	items, _ := ParseLines([]string{"2 BUC X 3,00", "PAINE", "REDUCERE -1,00 10%"})
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Price != 2.00 {
		t.Fatalf("expected discounted price 2.00 got %v", it.Price)
	}
	if it.Sale != 0.10 {
		t.Fatalf("expected sale 0.10 got %v", it.Sale)
	}
	r := Result{Items: items}
	if got := r.ItemsTotal(); got != 4.00 {
		t.Fatalf("expected aggregate 4.00 got %v", got)
	}
}

func TestParseDiscountClampsAtZero(t *testing.T) {
	items, _ := ParseLines([]string{"1 BUC X 1,00", "CHIFLA", "REDUCERE -5,00"})
	if len(items) != 1 || items[0].Price != 0 {
		t.Fatalf("expected clamped price 0 got %+v", items)
	}
}

func TestParseDiscountBeforeAnyItemIgnored(t *testing.T) {
	items, _ := ParseLines([]string{"REDUCERE -1,00", "2 BUC X 3,00", "PAINE"})
	if len(items) != 1 || items[0].Price != 3.00 {
		t.Fatalf("leading discount must be ignored, got %+v", items)
	}
}

func TestParseStopLineNeverBecomesItem(t *testing.T) {
	items, total := ParseLines([]string{"2 BUC X 3,00", "PAINE", "TOTAL 10.50"})
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	if items[0].Name != "PAINE" {
		t.Fatalf("stop line leaked into name: %q", items[0].Name)
	}
	if total == nil || *total != 10.50 {
		t.Fatalf("expected total 10.50 got %v", total)
	}
}

func TestParseStopLineTerminatesAccumulation(t *testing.T) {
	items, _ := ParseLines([]string{"1 BUC X 2,00", "TVA 19%", "LAPTE"})
	// TVA is a stop line: accumulation ends with no name parts, the item
	// has an empty name and is dropped; LAPTE alone is not item-shaped.
	if len(items) != 0 {
		t.Fatalf("expected no items got %+v", items)
	}
}

func TestParseTrailingPriceOverridesAndStrips(t *testing.T) {
	items, _ := ParseLines([]string{"1 BUC", "CIOCOLATA  7,50 A"})
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Price != 7.50 {
		t.Fatalf("expected trailing price 7.50 got %v", it.Price)
	}
	if it.Name != "CIOCOLATA" {
		t.Fatalf("price not stripped from name: %q", it.Name)
	}
}

func TestParseUnitPriceFallback(t *testing.T) {
	// No decimal token other than the unit price: the quantity line carries
	// "3 BUC X 2,50" and 2,50 is the only candidate, so it is taken as the
	// line price directly.
	items, _ := ParseLines([]string{"3 BUC X 2,50", "COVRIG"})
	if len(items) != 1 || items[0].Price != 2.50 {
		t.Fatalf("unexpected %+v", items)
	}
}

func TestParseNameCapTwoLines(t *testing.T) {
	items, _ := ParseLines([]string{"1 BUC", "IAURT GRECESC", "CU MIERE", "SI NUCI", "2 BUC X 1,00", "APA"})
	if len(items) != 2 {
		t.Fatalf("expected 2 items got %d: %+v", len(items), items)
	}
	if items[0].Name != "IAURT GRECESC CU MIERE" {
		t.Fatalf("expected capped name, got %q", items[0].Name)
	}
	if items[1].Name != "APA" {
		t.Fatalf("second item name %q", items[1].Name)
	}
}

func TestParseSalePercentFromItemText(t *testing.T) {
	items, _ := ParseLines([]string{"1 BUC X 4,00", "VIN 20%"})
	if len(items) != 1 || items[0].Sale != 0.20 {
		t.Fatalf("expected sale 0.20 got %+v", items)
	}
}

func TestParseEmptyInput(t *testing.T) {
	items, total := ParseLines(nil)
	if len(items) != 0 || total != nil {
		t.Fatalf("expected empty result, got %v %v", items, total)
	}
}

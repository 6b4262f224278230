package receipt

import (
	"regexp"
	"strings"
)

// Patterns over OCR'd receipt lines. The text mixes Romanian and English
// ("REDUCERE"/"DISCOUNT"), so everything matches case-insensitively even
// though the pipeline upper-cases lines first.
var (
	qtyLineRE = regexp.MustCompile(`(?i)^\s*(\d+(?:[.,]\d+)?)\s+(BUC\.?|KG|G|L)\b\s*(?:[xX]\s*(\d+(?:[.,]\d{1,2})?))?`)

	discountRE = regexp.MustCompile(`(?i)\b(?:REDUCERE|DISCOUNT)\b.*?([-+]?\d+[.,]\d{1,2})`)

	salePercentRE = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

	// Receipt metadata that must never be parsed as product data: totals,
	// tax, payment, fiscal headers, store identification.
	stopRE = regexp.MustCompile(`(?i)^\s*(SUBTOTAL|TOTAL|TVA\b|CARD\b|CASH\b|BON\b|FISCAL\b|DATA\b|ORA\b|EXCEPTATE|VAN\.?|POS:|OP:|TR:|C\.I\.F\.|COD\b|IDENTIFICARE|FISCALA|MUNICIPIUL|SECTOR\b|S\.?C\.?\s)`)

	endPriceRE     = regexp.MustCompile(`\s+(\d+[.,]\d{2})\s*[A-Za-z]?\s*$`)
	decimalTokenRE = regexp.MustCompile(`-?\d+[.,]\d{1,2}`)
	negStartRE     = regexp.MustCompile(`^\s*-\d`)
	totalLineRE    = regexp.MustCompile(`(?i)^\s*TOTAL\b`)
)

// ParseLines runs the item state machine over recognized lines, in reading
// order, and returns the extracted items plus the grand total when a TOTAL
// line carried one. An empty item list is a valid outcome, not an error.
func ParseLines(lines []string) ([]Item, *float64) {
	var items []Item
	var total *float64
	i := 0
	for i < len(lines) {
		line := lines[i]

		if stopRE.MatchString(line) {
			if total == nil && totalLineRE.MatchString(line) {
				if v, ok := trailingAmount(line); ok {
					total = &v
				}
			}
			i++
			continue
		}

		// Discount applies to the most recently completed item only; a
		// discount before any item exists is ignored.
		if m := discountRE.FindStringSubmatch(line); m != nil {
			if len(items) > 0 {
				last := &items[len(items)-1]
				amount, err := ParseDecimal(m[1])
				if err == nil {
					if !strings.Contains(m[1], "-") && amount > 0 {
						amount = -amount
					}
					p := round2(last.Price + amount)
					if p < 0 {
						p = 0
					}
					last.Price = p
				}
				if sm := salePercentRE.FindStringSubmatch(line); sm != nil {
					if pct, err := ParseDecimal(sm[1]); err == nil {
						last.Sale = pct / 100
					}
				}
			}
			i++
			continue
		}

		m := qtyLineRE.FindStringSubmatch(line)
		if m == nil {
			i++
			continue
		}

		qty, err := ParseDecimal(m[1])
		if err != nil {
			qty = 1.0
		}
		unit := strings.TrimSuffix(strings.ToUpper(m[2]), ".")
		price := linePrice(line, qty, m[3])

		i++
		var nameParts []string
		for i < len(lines) {
			nxt := strings.TrimSpace(lines[i])
			if stopRE.MatchString(nxt) || discountRE.MatchString(nxt) || qtyLineRE.MatchString(nxt) {
				break
			}
			if negStartRE.MatchString(nxt) {
				break
			}
			if pm := endPriceRE.FindStringSubmatch(nxt); pm != nil {
				if found, err := ParseDecimal(pm[1]); err == nil && found > 0 {
					price = found
				}
				nameParts = append(nameParts, endPriceRE.ReplaceAllString(nxt, ""))
				i++
				break
			}
			nameParts = append(nameParts, nxt)
			i++
			if len(nameParts) >= 2 { // hard cap against runaway accumulation
				break
			}
		}

		name := cleanName(strings.Join(nameParts, " "))
		sale := 0.0
		fullText := line + " " + strings.Join(nameParts, " ")
		if sm := salePercentRE.FindStringSubmatch(fullText); sm != nil {
			if pct, err := ParseDecimal(sm[1]); err == nil {
				sale = pct / 100
			}
		}

		if name != "" {
			items = append(items, Item{Quantity: qty, Unit: unit, Name: name, Price: price, Sale: sale})
		}
	}
	return items, total
}

// linePrice locates the line price on a quantity line: every decimal-valued
// token except ones numerically equal to the quantity, taking the last.
// Falls back to unit price × quantity, then to 0 pending later lines.
func linePrice(line string, qty float64, unitPriceRaw string) float64 {
	var prices []float64
	for _, tok := range decimalTokenRE.FindAllString(line, -1) {
		v, err := ParseDecimal(tok)
		if err != nil {
			continue
		}
		if v-qty < 1e-6 && qty-v < 1e-6 {
			continue
		}
		prices = append(prices, v)
	}
	if len(prices) > 0 {
		return prices[len(prices)-1]
	}
	if unitPriceRaw != "" {
		if up, err := ParseDecimal(unitPriceRaw); err == nil {
			return round2(up * qty)
		}
	}
	return 0
}

func trailingAmount(line string) (float64, bool) {
	toks := decimalTokenRE.FindAllString(line, -1)
	if len(toks) == 0 {
		return 0, false
	}
	v, err := ParseDecimal(toks[len(toks)-1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func cleanName(name string) string {
	name = strings.TrimSpace(endPriceRE.ReplaceAllString(strings.TrimSpace(name), ""))
	return strings.Join(strings.Fields(name), " ")
}

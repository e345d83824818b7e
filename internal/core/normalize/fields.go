package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// date layouts tried in order, first match wins
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
	"1/2/2006",
}

// clock layouts tried in order
var clockLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
	"15:04:05",
	"15:04",
}

// ParseDate reduces free-form date input to YYYY-MM-DD
// unparseable input yields the empty string, never an error
func ParseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ParseClock normalizes clock-time input to the "7:00 PM" textual form
// unparseable input yields the empty string
func ParseClock(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	up := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, up); err == nil {
			return t.Format("3:04 PM")
		}
	}
	// combined date-times carry a usable clock too
	if _, clock := ParseDateTime(s); clock != "" {
		return clock
	}
	return ""
}

// ParseDateTime splits a combined date-time string into date and clock parts
// either part may come back empty when the input does not carry it
func ParseDateTime(s string) (date, clock string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), t.Format("3:04 PM")
		}
	}
	return ParseDate(s), ""
}

// amountRe matches the first number in a currency-ish string, commas tolerated
var amountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?`)

// rangeRe recognizes "$10-$20" style price ranges
var rangeRe = regexp.MustCompile(`\d[\d,.]*\s*(?:-|–|to)\s*\$?\s*\d`)

// CoerceCost reduces any cost input to a canonical Cost
// total over its input domain: never returns NaN and never panics
func CoerceCost(v any) Cost {
	switch c := v.(type) {
	case nil:
		return Cost{Type: CostFree, Amount: 0}
	case float64:
		return costFromNumber(c, "")
	case int:
		return costFromNumber(float64(c), "")
	case string:
		return costFromString(c)
	case map[string]any:
		return costFromObject(c)
	case Cost:
		return sanitizeCost(c)
	default:
		// arrays and anything else unexpected degrade to free
		return Cost{Type: CostFree, Amount: 0}
	}
}

func costFromNumber(amount float64, currency string) Cost {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Cost{Type: CostFree, Amount: 0}
	}
	if currency == "" {
		currency = "USD"
	}
	return Cost{Type: CostFixed, Currency: currency, Amount: amount}
}

func costFromString(s string) Cost {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "free") {
		return Cost{Type: CostFree, Amount: 0}
	}
	isRange := rangeRe.MatchString(s)
	m := amountRe.FindString(s)
	if m == "" {
		return Cost{Type: CostFree, Amount: 0}
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return Cost{Type: CostFree, Amount: 0}
	}
	c := costFromNumber(amount, "USD")
	if isRange && c.Type == CostFixed {
		c.Type = CostVariable
	}
	return c
}

func costFromObject(m map[string]any) Cost {
	inner := CoerceCost(m["amount"])
	c := Cost{Type: inner.Type, Currency: inner.Currency, Amount: inner.Amount}
	if t, ok := m["type"].(string); ok {
		switch CostType(strings.ToLower(strings.TrimSpace(t))) {
		case CostFree:
			c = Cost{Type: CostFree, Amount: 0}
		case CostFixed:
			if c.Amount > 0 {
				c.Type = CostFixed
			}
		case CostVariable:
			if c.Amount > 0 {
				c.Type = CostVariable
			}
		}
	}
	if cur, ok := m["currency"].(string); ok && cur != "" && c.Type != CostFree {
		c.Currency = cur
	}
	return sanitizeCost(c)
}

// sanitizeCost enforces the finite non-negative amount invariant
func sanitizeCost(c Cost) Cost {
	if math.IsNaN(c.Amount) || math.IsInf(c.Amount, 0) || c.Amount < 0 {
		c.Amount = 0
	}
	if c.Amount == 0 && c.Type != CostVariable {
		return Cost{Type: CostFree, Amount: 0}
	}
	if c.Type == "" {
		c.Type = CostFixed
	}
	if c.Currency == "" && c.Type != CostFree {
		c.Currency = "USD"
	}
	return c
}

// CategorySet reduces any category input to a de-duplicated, trimmed tag list
// input may be a string (possibly comma-separated), an array, or absent
// order of first appearance is preserved
func CategorySet(v any) []string {
	var raw []string
	switch c := v.(type) {
	case nil:
		return nil
	case string:
		raw = strings.Split(c, ",")
	case []string:
		for _, s := range c {
			raw = append(raw, strings.Split(s, ",")...)
		}
	case []any:
		for _, e := range c {
			if s, ok := e.(string); ok {
				raw = append(raw, strings.Split(s, ",")...)
			}
		}
	default:
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeCategory reduces any category input to the canonical comma-joined string
// a value already in canonical form passes through unchanged
func NormalizeCategory(v any) string {
	return strings.Join(CategorySet(v), ", ")
}

// FlattenVenue joins a structured venue name and address into one display string
func FlattenVenue(name, address string) string {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	switch {
	case name == "":
		return address
	case address == "":
		return name
	default:
		return name + ", " + address
	}
}

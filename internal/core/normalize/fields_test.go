package normalize

import (
	"math"
	"reflect"
	"testing"
)

func TestParseDate_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"iso date", "2025-03-01", "2025-03-01"},
		{"iso datetime", "2025-03-01T19:00:00Z", "2025-03-01"},
		{"space datetime", "2025-03-01 19:00:00", "2025-03-01"},
		{"long form", "March 1, 2025", "2025-03-01"},
		{"short form", "Mar 1, 2025", "2025-03-01"},
		{"weekday form", "Saturday, March 1, 2025", "2025-03-01"},
		{"us slashes", "03/01/2025", "2025-03-01"},
		{"us slashes short", "3/1/2025", "2025-03-01"},
		{"whitespace only", "   ", ""},
		{"garbage", "next tuesday-ish", ""},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseDate(tc.in); got != tc.out {
				t.Fatalf("ParseDate(%q) = %q want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestParseClock_Table(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"canonical", "7:00 PM", "7:00 PM"},
		{"lowercase meridiem", "7:00 pm", "7:00 PM"},
		{"no space", "7:00PM", "7:00 PM"},
		{"hour only", "7 PM", "7:00 PM"},
		{"24h", "19:00", "7:00 PM"},
		{"24h seconds", "19:00:00", "7:00 PM"},
		{"morning", "9:30 AM", "9:30 AM"},
		{"from datetime", "2025-03-01 19:00:00", "7:00 PM"},
		{"garbage", "evening-ish", ""},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseClock(tc.in); got != tc.out {
				t.Fatalf("ParseClock(%q) = %q want %q", tc.in, got, tc.out)
			}
		})
	}
}

func TestParseDateTime_SplitsParts(t *testing.T) {
	date, clock := ParseDateTime("2025-03-01 19:00:00")
	if date != "2025-03-01" || clock != "7:00 PM" {
		t.Fatalf("got (%q, %q)", date, clock)
	}
	date, clock = ParseDateTime("2025-03-01")
	if date != "2025-03-01" || clock != "" {
		t.Fatalf("date-only got (%q, %q)", date, clock)
	}
}

// cost coercion must be total: finite non-negative amount for any input
func TestCoerceCost_Table(t *testing.T) {
	tests := []struct {
		name string
		in   any
		out  Cost
	}{
		{"absent", nil, Cost{Type: CostFree, Amount: 0}},
		{"free string", "Free", Cost{Type: CostFree, Amount: 0}},
		{"free lowercase", "free", Cost{Type: CostFree, Amount: 0}},
		{"empty string", "", Cost{Type: CostFree, Amount: 0}},
		{"numeric", 25.0, Cost{Type: CostFixed, Currency: "USD", Amount: 25}},
		{"zero numeric", 0.0, Cost{Type: CostFree, Amount: 0}},
		{"negative numeric", -5.0, Cost{Type: CostFree, Amount: 0}},
		{"dollar string", "$25", Cost{Type: CostFixed, Currency: "USD", Amount: 25}},
		{"decimal string", "$12.50", Cost{Type: CostFixed, Currency: "USD", Amount: 12.5}},
		{"thousands", "$1,200", Cost{Type: CostFixed, Currency: "USD", Amount: 1200}},
		{"range takes lower bound", "$10-$20", Cost{Type: CostVariable, Currency: "USD", Amount: 10}},
		{"range with to", "$10 to $20", Cost{Type: CostVariable, Currency: "USD", Amount: 10}},
		{"no number", "donation suggested", Cost{Type: CostFree, Amount: 0}},
		{
			"nested object",
			map[string]any{"type": "fixed", "currency": "USD", "amount": 15.0},
			Cost{Type: CostFixed, Currency: "USD", Amount: 15},
		},
		{
			"object with string amount",
			map[string]any{"amount": "$30"},
			Cost{Type: CostFixed, Currency: "USD", Amount: 30},
		},
		{
			"object typed free wins",
			map[string]any{"type": "free", "amount": 10.0},
			Cost{Type: CostFree, Amount: 0},
		},
		{"deeply nested garbage", map[string]any{"amount": map[string]any{"oops": []any{1}}}, Cost{Type: CostFree, Amount: 0}},
		{"array input", []any{"$25"}, Cost{Type: CostFree, Amount: 0}},
		{"nan amount", math.NaN(), Cost{Type: CostFree, Amount: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CoerceCost(tc.in)
			if got != tc.out {
				t.Fatalf("CoerceCost(%v) = %+v want %+v", tc.in, got, tc.out)
			}
			if math.IsNaN(got.Amount) || math.IsInf(got.Amount, 0) || got.Amount < 0 {
				t.Fatalf("amount invariant violated: %+v", got)
			}
		})
	}
}

// category round-trip: any input shape reduces to the same tag set and the
// canonical form is a fixed point
func TestCategory_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
		set  []string
	}{
		{"single string", "music", []string{"music"}},
		{"comma separated", "music, jazz", []string{"music", "jazz"}},
		{"array", []any{"music", "jazz"}, []string{"music", "jazz"}},
		{"array with comma entries", []any{"music, jazz", "food"}, []string{"music", "jazz", "food"}},
		{"duplicates case-insensitive", "Music, music, JAZZ, jazz", []string{"Music", "JAZZ"}},
		{"messy whitespace", "  music ,, jazz  ", []string{"music", "jazz"}},
		{"absent", nil, nil},
		{"non-string array members", []any{"music", 42.0}, []string{"music"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CategorySet(tc.in); !reflect.DeepEqual(got, tc.set) {
				t.Fatalf("CategorySet(%v) = %v want %v", tc.in, got, tc.set)
			}
			canonical := NormalizeCategory(tc.in)
			if again := NormalizeCategory(canonical); again != canonical {
				t.Fatalf("canonical form not a fixed point: %q -> %q", canonical, again)
			}
			if !reflect.DeepEqual(CategorySet(canonical), tc.set) {
				t.Fatalf("round trip lost tags: %v vs %v", CategorySet(canonical), tc.set)
			}
		})
	}
}

func TestFlattenVenue(t *testing.T) {
	if got := FlattenVenue("Blues Alley", "1073 Wisconsin Ave NW"); got != "Blues Alley, 1073 Wisconsin Ave NW" {
		t.Fatalf("got %q", got)
	}
	if got := FlattenVenue("Blues Alley", ""); got != "Blues Alley" {
		t.Fatalf("name only got %q", got)
	}
	if got := FlattenVenue("", "1073 Wisconsin Ave NW"); got != "1073 Wisconsin Ave NW" {
		t.Fatalf("address only got %q", got)
	}
	if got := FlattenVenue(" ", " "); got != "" {
		t.Fatalf("blank got %q", got)
	}
}

package grocery

import "testing"

func TestCategorize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Milk", "Dairy"},
		{"  MILK  ", "Dairy"},
		{"Orange Juice", "Juice"},
		{"Oranges", "Fruits"},
		{"Bananas", "Fruits"},
		{"Watermelon", "Fruits"},
		{"Whole Wheat Bread", "Bread"},
		{"Salmon fillet", "Fish"},
		{"Prawns", "Sea Food"},
		{"Beef mince", "Meat"},
		{"Sparkling water", "Drinks"},
		{"Vanilla ice cream", "Ice cream"},
		{"Potato chips", "Snacks"},
		{"Butternut squash", "Vegetables"},
		{"Carrots", "Vegetables"},
	}
	for _, tt := range tests {
		got := Categorize(tt.input)
		if got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, input := range []string{"", "   ", "Toothpaste"} {
		if got := Categorize(input); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", input, got, Other)
		}
	}
}

func TestRulesUseKnownCategories(t *testing.T) {
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}
	for _, r := range rules {
		if !known[r.category] {
			t.Errorf("rule %q maps to unlisted category %q", r.keyword, r.category)
		}
	}
}

// Package grocery guesses a category for items added without one.
package grocery

import "strings"

// Other is used when no keyword matches.
const Other = "Other"

// Categories is the fixed set the app offers, in display order.
var Categories = []string{
	"Fruits", "Vegetables", "Bread", "Bakery", "Dairy", "Meat", "Fish",
	"Sea Food", "Drinks", "Juice", "Ice cream", "Snacks", Other,
}

type rule struct {
	keyword  string
	category string
}

// Checked in order: multi-word keywords come before the single words they
// contain so that "orange juice" lands in Juice rather than Fruits.
var rules = []rule{
	{"butternut", "Vegetables"},
	{"eggplant", "Vegetables"},
	{"watermelon", "Fruits"},
	{"chocolate", "Snacks"},
	{"popcorn", "Snacks"},
	{"ice cream", "Ice cream"},
	{"gelato", "Ice cream"},
	{"sorbet", "Ice cream"},
	{"orange juice", "Juice"},
	{"apple juice", "Juice"},
	{"juice", "Juice"},
	{"smoothie", "Juice"},

	{"peanut butter", "Snacks"},
	{"butter", "Dairy"},
	{"milk", "Dairy"},
	{"cheese", "Dairy"},
	{"yogurt", "Dairy"},
	{"yoghurt", "Dairy"},
	{"cream", "Dairy"},
	{"egg", "Dairy"},

	{"sourdough", "Bread"},
	{"bread", "Bread"},
	{"loaf", "Bread"},
	{"baguette", "Bread"},
	{"roll", "Bread"},
	{"buns", "Bread"},
	{"muffin", "Bakery"},
	{"croissant", "Bakery"},
	{"cake", "Bakery"},
	{"pastry", "Bakery"},
	{"donut", "Bakery"},
	{"pie", "Bakery"},

	{"shrimp", "Sea Food"},
	{"prawn", "Sea Food"},
	{"crab", "Sea Food"},
	{"lobster", "Sea Food"},
	{"mussel", "Sea Food"},
	{"oyster", "Sea Food"},
	{"calamari", "Sea Food"},
	{"squid", "Sea Food"},
	{"salmon", "Fish"},
	{"tuna", "Fish"},
	{"hake", "Fish"},
	{"cod", "Fish"},
	{"sardine", "Fish"},
	{"tilapia", "Fish"},
	{"fish", "Fish"},

	{"chicken", "Meat"},
	{"beef", "Meat"},
	{"steak", "Meat"},
	{"mince", "Meat"},
	{"pork", "Meat"},
	{"lamb", "Meat"},
	{"bacon", "Meat"},
	{"sausage", "Meat"},
	{"boerewors", "Meat"},
	{"ham", "Meat"},
	{"turkey", "Meat"},

	{"water", "Drinks"},
	{"soda", "Drinks"},
	{"coke", "Drinks"},
	{"cola", "Drinks"},
	{"coffee", "Drinks"},
	{"tea", "Drinks"},
	{"beer", "Drinks"},
	{"wine", "Drinks"},
	{"drink", "Drinks"},

	{"chips", "Snacks"},
	{"crisps", "Snacks"},
	{"cracker", "Snacks"},
	{"cookie", "Snacks"},
	{"biscuit", "Snacks"},
	{"pretzel", "Snacks"},
	{"candy", "Snacks"},
	{"sweets", "Snacks"},
	{"nuts", "Snacks"},

	{"apple", "Fruits"},
	{"banana", "Fruits"},
	{"orange", "Fruits"},
	{"lemon", "Fruits"},
	{"lime", "Fruits"},
	{"grape", "Fruits"},
	{"berry", "Fruits"},
	{"berries", "Fruits"},
	{"mango", "Fruits"},
	{"pear", "Fruits"},
	{"peach", "Fruits"},
	{"melon", "Fruits"},
	{"pineapple", "Fruits"},
	{"avocado", "Fruits"},
	{"fruit", "Fruits"},

	{"potato", "Vegetables"},
	{"tomato", "Vegetables"},
	{"onion", "Vegetables"},
	{"garlic", "Vegetables"},
	{"carrot", "Vegetables"},
	{"lettuce", "Vegetables"},
	{"spinach", "Vegetables"},
	{"cabbage", "Vegetables"},
	{"broccoli", "Vegetables"},
	{"cauliflower", "Vegetables"},
	{"pepper", "Vegetables"},
	{"cucumber", "Vegetables"},
	{"pumpkin", "Vegetables"},
	{"mushroom", "Vegetables"},
	{"bean", "Vegetables"},
	{"pea", "Vegetables"},
	{"corn", "Vegetables"},
}

// Categorize returns the category for an item name, matching keywords
// case-insensitively as substrings. Unknown names get Other.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Other
	}
	for _, r := range rules {
		if strings.Contains(name, r.keyword) {
			return r.category
		}
	}
	return Other
}

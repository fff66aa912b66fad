package receipt

import (
	"sort"
	"strings"

	"github.com/example/swiftrun/internal/models"
)

// DefaultCategory collects every line item no rule matches. The categorizer
// is total: no item is ever dropped.
const DefaultCategory = "Other Items"

type rule struct {
	substr   string
	category string
}

// rules are tested in order against the lower-cased item name; the first
// match wins. Order is load-bearing: specific patterns sit above the broader
// ones that would otherwise shadow them ("personal pan pizza" above "pizza",
// "steak" above "tea", "eggplant" above "egg", "fried rice" above "rice").
var rules = []rule{
	{"personal pan pizza", "Personal Pan Pizzas"},
	{"pizza", "Specialty Pizzas"},
	{"wing", "Chicken Wings"},
	{"fried chicken", "Fried Chicken"},
	{"rotisserie", "Fried Chicken"},
	{"tender", "Chicken Tenders"},
	{"nugget", "Chicken Tenders"},
	{"burger", "Burgers"},
	{"hot dog", "Hot Dogs"},
	{"sandwich", "Sandwiches"},
	{"panini", "Sandwiches"},
	{"wrap", "Wraps"},
	{"gyro", "Wraps"},
	{"steak", "Grill & BBQ"},
	{"bbq", "Grill & BBQ"},
	{"barbecue", "Grill & BBQ"},
	{"grill", "Grill & BBQ"},
	{"shrimp", "Seafood"},
	{"fish", "Seafood"},
	{"seafood", "Seafood"},
	{"spaghetti", "Pasta"},
	{"lasagna", "Pasta"},
	{"pasta", "Pasta"},
	{"chow mein", "Chinese Dishes"},
	{"lo mein", "Chinese Dishes"},
	{"fried rice", "Chinese Dishes"},
	{"dhal", "Curries"},
	{"curry", "Curries"},
	{"roti", "Roti"},
	{"cook-up", "Creole Dishes"},
	{"cookup", "Creole Dishes"},
	{"pepperpot", "Creole Dishes"},
	{"metemgee", "Creole Dishes"},
	{"taco", "Mexican"},
	{"burrito", "Mexican"},
	{"quesadilla", "Mexican"},
	{"salad", "Salads"},
	{"soup", "Soups"},
	{"eggplant", "Produce"},
	{"plantain", "Produce"},
	{"egg", "Breakfast"},
	{"pancake", "Breakfast"},
	{"breakfast", "Breakfast"},
	{"fries", "Sides"},
	{"onion ring", "Sides"},
	{"noodle", "Rice & Noodles"},
	{"rice", "Rice & Noodles"},
	{"bread", "Bakery"},
	{"pastr", "Bakery"},
	{"pine tart", "Bakery"},
	{"ice cream", "Ice Cream"},
	{"milkshake", "Milkshakes"},
	{"shake", "Milkshakes"},
	{"cake", "Desserts"},
	{"pie", "Desserts"},
	{"cookie", "Desserts"},
	{"brownie", "Desserts"},
	{"donut", "Desserts"},
	{"doughnut", "Desserts"},
	{"dessert", "Desserts"},
	{"coffee", "Hot Beverages"},
	{"tea", "Hot Beverages"},
	{"juice", "Juices"},
	{"smoothie", "Juices"},
	{"soda", "Soft Drinks"},
	{"cola", "Soft Drinks"},
	{"soft drink", "Soft Drinks"},
	{"water", "Soft Drinks"},
}

// displayPriority fixes the on-receipt ordering of known categories.
// Categories not listed sort alphabetically after all listed ones, with the
// default bucket pinned last.
var displayPriority = []string{
	"Personal Pan Pizzas",
	"Specialty Pizzas",
	"Chicken Wings",
	"Chicken Tenders",
	"Fried Chicken",
	"Burgers",
	"Hot Dogs",
	"Sandwiches",
	"Wraps",
	"Grill & BBQ",
	"Seafood",
	"Pasta",
	"Chinese Dishes",
	"Rice & Noodles",
	"Curries",
	"Roti",
	"Creole Dishes",
	"Mexican",
	"Salads",
	"Soups",
	"Breakfast",
	"Sides",
	"Produce",
	"Bakery",
	"Desserts",
	"Ice Cream",
	"Milkshakes",
	"Hot Beverages",
	"Juices",
	"Soft Drinks",
	DefaultCategory,
}

var priorityIndex = buildPriorityIndex()

func buildPriorityIndex() map[string]int {
	idx := make(map[string]int, len(displayPriority))
	for i, c := range displayPriority {
		idx[c] = i
	}
	return idx
}

// CategoryFor returns the category label for a single item name.
func CategoryFor(name string) string {
	lower := strings.ToLower(name)
	for _, r := range rules {
		if strings.Contains(lower, r.substr) {
			return r.category
		}
	}
	return DefaultCategory
}

// Categorize groups line items by category label. Items keep their original
// relative order inside each category.
func Categorize(items []models.LineItem) map[string][]models.LineItem {
	out := make(map[string][]models.LineItem)
	for _, it := range items {
		c := CategoryFor(it.ProductName)
		out[c] = append(out[c], it)
	}
	return out
}

// Less is the strict total order used for category display: priority-listed
// categories first in list order, everything else alphabetically after.
func Less(a, b string) bool {
	ia, aok := priorityIndex[a]
	ib, bok := priorityIndex[b]
	switch {
	case aok && bok:
		return ia < ib
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// SortCategories orders category labels for display, in place, and returns
// the slice.
func SortCategories(categories []string) []string {
	sort.SliceStable(categories, func(i, j int) bool { return Less(categories[i], categories[j]) })
	return categories
}

// Section is one display block of a rendered receipt.
type Section struct {
	Category string            `json:"category"`
	Items    []models.LineItem `json:"items"`
}

// Sections categorizes and orders in one step, ready for rendering.
func Sections(items []models.LineItem) []Section {
	grouped := Categorize(items)
	names := make([]string, 0, len(grouped))
	for c := range grouped {
		names = append(names, c)
	}
	SortCategories(names)
	out := make([]Section, 0, len(names))
	for _, c := range names {
		out = append(out, Section{Category: c, Items: grouped[c]})
	}
	return out
}

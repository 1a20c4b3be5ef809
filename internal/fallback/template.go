// Package fallback builds menus that need no review data: per-category
// templates and the fixed generic menu.
package fallback

import (
	"slices"
	"strings"

	"github.com/rcliao/menu-cache/internal/model"
)

// Template categories.
const (
	CategoryCafe       = "cafe"
	CategoryPizza      = "pizza"
	CategoryAsian      = "asian"
	CategoryRestaurant = "restaurant"
)

// GenericCategory is the category of every generic fallback item.
const GenericCategory = "Popular Items"

type entry struct {
	name, description string
}

var templates = map[string][]entry{
	CategoryCafe: {
		{"Espresso", "Rich, bold espresso shot"},
		{"Cappuccino", "Espresso with steamed milk and foam"},
		{"Latte", "Smooth espresso with steamed milk"},
		{"Americano", "Espresso with hot water"},
		{"Hot Chocolate", "Rich chocolate with whipped cream"},
		{"Iced Coffee", "Freshly brewed coffee over ice"},
		{"Cold Brew", "Smooth cold-brewed coffee"},
		{"Iced Latte", "Espresso with cold milk over ice"},
		{"Frappuccino", "Blended coffee drink with ice"},
		{"Croissant", "Buttery, flaky pastry"},
		{"Bagel with Cream Cheese", "Fresh bagel with cream cheese"},
		{"Avocado Toast", "Smashed avocado on artisan bread"},
		{"Breakfast Sandwich", "Egg, cheese, and choice of meat"},
		{"Muffin", "Freshly baked daily"},
		{"Scone", "Traditional British pastry"},
	},
	CategoryRestaurant: {
		{"Bruschetta", "Toasted bread with tomatoes and basil"},
		{"Calamari", "Crispy fried squid with marinara"},
		{"Wings", "Buffalo or BBQ sauce"},
		{"Spinach Dip", "Creamy spinach dip with tortilla chips"},
		{"Mozzarella Sticks", "Breaded mozzarella with marinara"},
		{"Grilled Salmon", "Atlantic salmon with lemon herb butter"},
		{"Ribeye Steak", "12oz ribeye with garlic mashed potatoes"},
		{"Chicken Parmesan", "Breaded chicken with marinara and mozzarella"},
		{"Pasta Primavera", "Fresh vegetables with penne pasta"},
		{"Fish & Chips", "Beer-battered cod with fries"},
		{"Burger", "Angus beef with lettuce, tomato, onion"},
		{"Tiramisu", "Classic Italian dessert"},
		{"Cheesecake", "New York style with berry compote"},
		{"Chocolate Cake", "Rich chocolate layer cake"},
		{"Ice Cream", "Vanilla, chocolate, or strawberry"},
	},
	CategoryPizza: {
		{"Margherita", "Tomato sauce, mozzarella, fresh basil"},
		{"Pepperoni", "Classic pepperoni with mozzarella"},
		{"Supreme", "Pepperoni, sausage, peppers, onions, mushrooms"},
		{"Hawaiian", "Ham and pineapple"},
		{"Meat Lovers", "Pepperoni, sausage, bacon, ham"},
		{"Garlic Bread", "Fresh bread with garlic butter"},
		{"Caesar Salad", "Romaine lettuce with Caesar dressing"},
		{"Wings", "Buffalo or BBQ sauce"},
	},
	CategoryAsian: {
		{"Spring Rolls", "Fresh vegetables wrapped in rice paper"},
		{"Dumplings", "Steamed or fried pork dumplings"},
		{"Edamame", "Steamed soybeans with sea salt"},
		{"Kung Pao Chicken", "Spicy chicken with peanuts"},
		{"Sweet and Sour Pork", "Battered pork with sweet and sour sauce"},
		{"Beef and Broccoli", "Tender beef with fresh broccoli"},
		{"Fried Rice", "Wok-fried rice with egg and vegetables"},
		{"Lo Mein", "Soft noodles with vegetables"},
	},
}

var generic = []entry{
	{"House Special", "Chef's signature dish"},
	{"Grilled Chicken", "Seasoned grilled chicken breast"},
	{"Caesar Salad", "Fresh romaine with Caesar dressing"},
	{"Pasta of the Day", "Ask your server for today's selection"},
	{"Chocolate Dessert", "Decadent chocolate creation"},
}

var asianTypes = []string{
	"chinese_restaurant",
	"japanese_restaurant",
	"korean_restaurant",
	"thai_restaurant",
	"vietnamese_restaurant",
}

// Category picks the template category for a restaurant. Rules apply in
// order: cafe, pizza delivery, asian cuisine, then plain restaurant.
func Category(types []string, name string) string {
	lower := strings.ToLower(name)
	switch {
	case slices.Contains(types, "cafe") || strings.Contains(lower, "cafe") || strings.Contains(lower, "coffee"):
		return CategoryCafe
	case slices.Contains(types, "meal_delivery") && (slices.Contains(types, "pizza") || strings.Contains(lower, "pizza")):
		return CategoryPizza
	case slices.ContainsFunc(types, func(t string) bool { return slices.Contains(asianTypes, t) }):
		return CategoryAsian
	default:
		return CategoryRestaurant
	}
}

// GenerateTemplate returns the template menu for a restaurant. The result
// depends only on types and name, and is never empty.
func GenerateTemplate(types []string, name string) model.Menu {
	category := Category(types, name)
	menu := model.Menu{}
	for _, e := range templates[category] {
		menu.Add(model.MenuItem{
			Name:           e.name,
			Description:    e.description,
			ItemAttributes: model.ItemAttributes{Category: category},
		})
	}
	return menu
}

// GenerateGenericFallback returns the fixed menu used when nothing is known
// about the restaurant.
func GenerateGenericFallback() model.Menu {
	menu := model.Menu{}
	for i, e := range generic {
		menu.Add(model.MenuItem{
			Name:        e.name,
			Description: e.description,
			ItemAttributes: model.ItemAttributes{
				Category: GenericCategory,
				Popular:  i == 0,
			},
		})
	}
	return menu
}

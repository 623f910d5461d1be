package food

// DefaultItems returns the standard 24-item catalogue (kcal per 100 g portion).
func DefaultItems() []Item {
	return []Item{
		// Proteins
		{Name: "Grilled Chicken", Calories: 165},
		{Name: "Egg", Calories: 155},
		{Name: "Fish", Calories: 206},
		{Name: "Lean Beef", Calories: 213},

		// Complex carbohydrates
		{Name: "Brown Rice", Calories: 130},
		{Name: "Sweet Potato", Calories: 86},
		{Name: "Quinoa", Calories: 120},
		{Name: "Oats", Calories: 389},

		// Legumes
		{Name: "Black Beans", Calories: 77},
		{Name: "Lentils", Calories: 116},
		{Name: "Chickpeas", Calories: 164},

		// Vegetables
		{Name: "Broccoli", Calories: 55},
		{Name: "Spinach", Calories: 23},
		{Name: "Carrot", Calories: 41},

		// Fruits
		{Name: "Banana", Calories: 89},
		{Name: "Apple", Calories: 52},
		{Name: "Orange", Calories: 47},
		{Name: "Avocado", Calories: 160},

		// Fats
		{Name: "Olive Oil", Calories: 884},
		{Name: "Brazil Nuts", Calories: 553},
		{Name: "Peanuts", Calories: 567},

		// Dairy
		{Name: "Skim Milk", Calories: 42},
		{Name: "Yogurt", Calories: 59},
		{Name: "White Cheese", Calories: 264},
	}
}

// DefaultCatalogue returns DefaultItems as a catalogue.
func DefaultCatalogue() *Catalogue {
	return MustCatalogue(DefaultItems())
}

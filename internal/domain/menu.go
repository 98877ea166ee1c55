package domain

var defaultPortions = []string{
	"1 piece", "2 pieces", "3 pieces", "4 pieces", "5 pieces", "6 pieces",
}

// Menu returns the static braai catalog served to customers. The store never
// mutates it; callers receive a fresh copy per call.
func Menu() []CatalogItem {
	items := []CatalogItem{
		{
			ID:           "1",
			Name:         "Beef",
			Description:  "Premium beef cuts perfect for braai",
			Price:        2500,
			Category:     "meat",
			Image:        "https://images.pexels.com/photos/361184/asparagus-steak-veal-chop-veal-361184.jpeg?auto=compress&cs=tinysrgb&w=800",
			Customizable: true,
		},
		{
			ID:           "2",
			Name:         "Sausage",
			Description:  "Traditional boerewors and specialty sausages",
			Price:        2500,
			Category:     "meat",
			Image:        "https://images.pexels.com/photos/1633525/pexels-photo-1633525.jpeg?auto=compress&cs=tinysrgb&w=800",
			Customizable: true,
		},
		{
			ID:           "3",
			Name:         "Wings",
			Description:  "Juicy chicken wings grilled to perfection",
			Price:        2500,
			Category:     "meat",
			Image:        "https://images.pexels.com/photos/60616/fried-chicken-chicken-fried-crunchy-60616.jpeg?auto=compress&cs=tinysrgb&w=800",
			Customizable: true,
		},
		{
			ID:           "4",
			Name:         "Pork",
			Description:  "Tender pork cuts with perfect seasoning",
			Price:        2500,
			Category:     "meat",
			Image:        "https://images.pexels.com/photos/323682/pexels-photo-323682.jpeg?auto=compress&cs=tinysrgb&w=800",
			Customizable: true,
		},
	}
	for i := range items {
		items[i].Portions = append([]string(nil), defaultPortions...)
	}
	return items
}

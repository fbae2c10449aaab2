package model

// CategoryItem is a single catalog entry. IDs are unique across the whole
// catalog; 0 is a valid id.
type CategoryItem struct {
	ID    uint64 `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Emoji string `json:"emoji" yaml:"emoji"`
}

// Category is a named group of catalog items, in display order.
type Category struct {
	Name  string         `json:"name" yaml:"name"`
	Items []CategoryItem `json:"items" yaml:"items"`
}

// GroceryItem is a catalog item that has been added to the cart.
type GroceryItem struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Emoji     string `json:"emoji"`
	Completed bool   `json:"completed"`
}

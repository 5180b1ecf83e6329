// Package cart implements the in-memory selection a user builds before
// submitting an order. A cart belongs to exactly one owner and is mutated
// from a single goroutine, so it carries no locking.
package cart

import (
	"math"
	"strconv"

	"ordering-service/internal/models"

	"github.com/google/uuid"
)

// ItemKind discriminates catalog entries from user-defined custom entries
type ItemKind int

const (
	ItemCatalog ItemKind = iota
	ItemCustom
)

// LineItem is one product-and-quantity pair in the cart. Category holds the
// denormalized category name. An item present in the cart always has
// Quantity >= 1.
type LineItem struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Description string
	Quantity    int
	Kind        ItemKind
}

// Product is the flattened catalog view the cart selects from: a catalog
// product joined with its owning category's name.
type Product struct {
	ID          string
	Name        string
	Category    string
	Price       float64
	Description string
}

// Cart tracks selected line items in insertion order, one entry per id
type Cart struct {
	items []LineItem
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// Add puts a catalog product in the cart. Adding a product that is already
// present increments its quantity instead of duplicating the entry.
func (c *Cart) Add(p Product) {
	if i, ok := c.index[p.ID]; ok {
		c.items[i].Quantity++
		return
	}
	c.index[p.ID] = len(c.items)
	c.items = append(c.items, LineItem{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		Quantity:    1,
		Kind:        ItemCatalog,
	})
}

// NewCustomItem builds a custom line item with a collision-resistant
// synthetic id. The "custom-" prefix keeps it out of the catalog id space.
// Custom items start zero-priced until priced later.
func NewCustomItem(name, category string, quantity int) LineItem {
	if quantity < 1 {
		quantity = 1
	}
	return LineItem{
		ID:       "custom-" + uuid.NewString(),
		Name:     name,
		Category: category,
		Quantity: quantity,
		Kind:     ItemCustom,
	}
}

// AddCustom merges a custom line item into the cart. If an item with the
// same id is already present its quantity accumulates, mirroring Add.
func (c *Cart) AddCustom(item LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.Kind = ItemCustom
	if i, ok := c.index[item.ID]; ok {
		c.items[i].Quantity += item.Quantity
		return
	}
	c.index[item.ID] = len(c.items)
	c.items = append(c.items, item)
}

// Remove deletes the line item with the given id. Removing an absent id is
// a no-op.
func (c *Cart) Remove(id string) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.items); j++ {
		c.index[c.items[j].ID] = j
	}
}

// SetQuantity sets the quantity of the item with the given id. A quantity of
// zero or less removes the item; zero-quantity rows never persist. Absent
// ids are a no-op.
func (c *Cart) SetQuantity(id string, quantity int) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	c.items[i].Quantity = quantity
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

// Items returns the line items in insertion order
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct line items
func (c *Cart) Len() int { return len(c.items) }

// Quantity returns the quantity for an id, or 0 if it is not in the cart
func (c *Cart) Quantity(id string) int {
	if i, ok := c.index[id]; ok {
		return c.items[i].Quantity
	}
	return 0
}

// Total returns the sum of price * quantity over all line items. An unset or
// garbage price counts as zero, so unpriced custom entries never poison the
// total.
func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		price := it.Price
		if math.IsNaN(price) || price < 0 {
			price = 0
		}
		total += price * float64(it.Quantity)
	}
	return total
}

// GroupByCategory partitions the line items by category name. Each group
// keeps first-seen insertion order; every item lands in exactly one group.
func (c *Cart) GroupByCategory() map[string][]LineItem {
	groups := make(map[string][]LineItem)
	for _, it := range c.items {
		groups[it.Category] = append(groups[it.Category], it)
	}
	return groups
}

// Submission assembles the order payload for the current cart contents
func (c *Cart) Submission(user models.UserDetails) *models.OrderSubmission {
	items := make([]models.SubmittedItem, 0, len(c.items))
	for _, it := range c.items {
		items = append(items, models.SubmittedItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Price:       it.Price,
			Description: it.Description,
			Quantity:    it.Quantity,
			IsCustom:    it.Kind == ItemCustom,
		})
	}
	return &models.OrderSubmission{
		UserDetails:      user,
		SelectedProducts: items,
	}
}

// FlattenCategories turns the catalog response into the flat product view
// the cart selects from, stamping each product with its category name.
func FlattenCategories(categories []models.Category) []Product {
	var out []Product
	for _, cat := range categories {
		for _, p := range cat.Products {
			out = append(out, Product{
				ID:          formatCatalogID(p.ID),
				Name:        p.Name,
				Category:    cat.Name,
				Price:       p.Price,
				Description: p.Description,
			})
		}
	}
	return out
}

func formatCatalogID(id int64) string {
	// catalog ids travel as strings client-side so they share an id space
	// with synthetic custom ids
	return strconv.FormatInt(id, 10)
}

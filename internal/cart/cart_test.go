package cart

import (
	"strings"
	"testing"

	"ordering-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coffee() Product {
	return Product{ID: "1", Name: "Coffee", Category: "Drinks", Price: 25, Description: "Ground beans"}
}

func bread() Product {
	return Product{ID: "2", Name: "Bread", Category: "Bakery", Price: 10}
}

func TestAddAccumulatesQuantity(t *testing.T) {
	c := New()

	c.Add(coffee())
	c.Add(coffee())

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Quantity("1"))
}

func TestAddCopiesCatalogFields(t *testing.T) {
	c := New()
	c.Add(coffee())

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Coffee", items[0].Name)
	assert.Equal(t, "Drinks", items[0].Category)
	assert.Equal(t, 25.0, items[0].Price)
	assert.Equal(t, ItemCatalog, items[0].Kind)
}

func TestAddCustomMergesByID(t *testing.T) {
	c := New()

	item := NewCustomItem("Special flour", "Bakery", 3)
	c.AddCustom(item)
	c.AddCustom(item)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 6, c.Quantity(item.ID))
	assert.Equal(t, ItemCustom, c.Items()[0].Kind)
}

func TestNewCustomItemIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		item := NewCustomItem("x", "y", 1)
		assert.True(t, strings.HasPrefix(item.ID, "custom-"))
		assert.False(t, seen[item.ID], "duplicate custom id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestRemoveAbsentIDIsNoop(t *testing.T) {
	c := New()
	c.Add(coffee())

	c.Remove("no-such-id")

	assert.Equal(t, 1, c.Len())
}

func TestRemoveKeepsInsertionOrder(t *testing.T) {
	c := New()
	c.Add(coffee())
	c.Add(bread())
	c.Add(Product{ID: "3", Name: "Milk", Category: "Drinks", Price: 5})

	c.Remove("2")

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "3", items[1].ID)
	// index stays usable after compaction
	c.SetQuantity("3", 7)
	assert.Equal(t, 7, c.Quantity("3"))
}

func TestSetQuantityZeroRemovesEntry(t *testing.T) {
	c := New()
	c.Add(coffee())

	c.SetQuantity("1", 0)

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Quantity("1"))
}

func TestSetQuantityNegativeRemovesEntry(t *testing.T) {
	c := New()
	c.Add(coffee())

	c.SetQuantity("1", -3)

	assert.Equal(t, 0, c.Len())
}

func TestSetQuantityAbsentIDIsNoop(t *testing.T) {
	c := New()
	c.SetQuantity("ghost", 5)
	assert.Equal(t, 0, c.Len())
}

func TestNoZeroQuantityEntriesEver(t *testing.T) {
	c := New()

	c.Add(coffee())
	c.Add(bread())
	c.SetQuantity("1", 3)
	c.SetQuantity("2", 0)
	c.Add(bread())
	c.Remove("1")
	c.AddCustom(NewCustomItem("thing", "Misc", 0))

	for _, it := range c.Items() {
		assert.GreaterOrEqual(t, it.Quantity, 1)
	}
}

func TestTotalTreatsMissingPriceAsZero(t *testing.T) {
	c := New()
	c.Add(coffee())
	c.Add(coffee()) // 25 x 2
	custom := NewCustomItem("Unpriced", "Misc", 3)
	c.AddCustom(custom) // 0 x 3

	assert.Equal(t, 50.0, c.Total())
}

func TestTotalEmptyCart(t *testing.T) {
	assert.Equal(t, 0.0, New().Total())
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(coffee())
	c.Add(bread())

	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Total())

	// cart remains usable after clearing
	c.Add(coffee())
	assert.Equal(t, 1, c.Len())
}

func TestGroupByCategoryPartitions(t *testing.T) {
	c := New()
	c.Add(coffee())
	c.Add(bread())
	c.Add(Product{ID: "3", Name: "Milk", Category: "Drinks", Price: 5})
	c.AddCustom(NewCustomItem("Napkins", "Misc", 2))

	groups := c.GroupByCategory()

	total := 0
	seen := make(map[string]bool)
	for _, items := range groups {
		for _, it := range items {
			assert.False(t, seen[it.ID], "item %s appears in two groups", it.ID)
			seen[it.ID] = true
			total++
		}
	}
	assert.Equal(t, c.Len(), total)

	require.Len(t, groups["Drinks"], 2)
	assert.Equal(t, "1", groups["Drinks"][0].ID)
	assert.Equal(t, "3", groups["Drinks"][1].ID)
}

func TestSubmissionCarriesCartContents(t *testing.T) {
	c := New()
	c.Add(coffee())
	c.SetQuantity("1", 2)
	c.AddCustom(NewCustomItem("Napkins", "Misc", 3))

	sub := c.Submission(models.UserDetails{
		FirstName: "Dana", LastName: "Levi", Email: "dana@example.com",
	})

	require.Len(t, sub.SelectedProducts, 2)
	assert.Equal(t, 2, sub.SelectedProducts[0].Quantity)
	assert.False(t, sub.SelectedProducts[0].IsCustom)
	assert.True(t, sub.SelectedProducts[1].IsCustom)
	assert.Equal(t, "dana@example.com", sub.UserDetails.Email)
}

func TestFlattenCategories(t *testing.T) {
	categories := []models.Category{
		{ID: 1, Name: "Drinks", Products: []models.Product{
			{ID: 10, Name: "Coffee", Price: 25, CategoryID: 1},
		}},
		{ID: 2, Name: "Bakery", Products: []models.Product{
			{ID: 20, Name: "Bread", Price: 10, CategoryID: 2},
		}},
	}

	products := FlattenCategories(categories)

	require.Len(t, products, 2)
	assert.Equal(t, "10", products[0].ID)
	assert.Equal(t, "Drinks", products[0].Category)
	assert.Equal(t, "Bakery", products[1].Category)
}

package form

import "sort"

var Shopcarts = Schema{
	Name:      "shopcarts",
	Singular:  "Shopcart",
	Emptiable: true,
	Fields: []Field{
		{Name: "id", Label: "Shopcart ID", Aliases: []string{"_id"}, Role: RoleIdentifier},
		{Name: "customer_id", Label: "Customer ID", Role: RoleAttribute, Filter: true},
		{Name: "items", Label: "Items", Kind: KindList, Role: RoleDerived},
	},
}

var Pets = Schema{
	Name:     "pets",
	Singular: "Pet",
	Fields: []Field{
		{Name: "id", Label: "Pet ID", Aliases: []string{"_id"}, Role: RoleIdentifier},
		{Name: "name", Label: "Name", Role: RoleAttribute, Filter: true},
		{Name: "category", Label: "Category", Role: RoleAttribute, Filter: true},
		{Name: "available", Label: "Available", Kind: KindBool, Role: RoleAttribute, Filter: true},
	},
}

// Items are cart items, nested under /shopcarts/{shopcart_id}/items.
var Items = Schema{
	Name:     "items",
	Singular: "Item",
	Parent:   "shopcarts",
	Fields: []Field{
		{Name: "id", Label: "Item ID", Aliases: []string{"_id"}, Role: RoleIdentifier},
		{Name: "shopcart_id", Label: "Shopcart ID", Role: RoleParent},
		{Name: "name", Label: "Name", Role: RoleAttribute},
		{Name: "sku", Label: "SKU", Role: RoleAttribute},
		{Name: "quantity", Label: "Quantity", Kind: KindInteger, Role: RoleAttribute},
		{Name: "price", Label: "Price", Kind: KindNumber, Role: RoleAttribute},
	},
}

var builtin = map[string]Schema{
	Shopcarts.Name: Shopcarts,
	Pets.Name:      Pets,
	Items.Name:     Items,
}

// Lookup returns a built-in schema by collection name.
func Lookup(name string) (Schema, bool) {
	s, ok := builtin[name]
	return s, ok
}

func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

package testbackend

type Shopcart struct {
	ID         int    `json:"id"`
	CustomerID string `json:"customer_id"`
}

type Item struct {
	ID         int     `json:"id"`
	ShopcartID int     `json:"shopcart_id"`
	Name       string  `json:"name"`
	SKU        string  `json:"sku"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type Pet struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

// shopcartView is the serialized shopcart, with its items inlined.
type shopcartView struct {
	Shopcart
	Items []Item `json:"items"`
}

func deserializeShopcart(obj map[string]any) (Shopcart, error) {
	customerID, err := stringField("Shopcart", obj, "customer_id")
	if err != nil {
		return Shopcart{}, err
	}
	return Shopcart{CustomerID: customerID}, nil
}

func deserializeItem(obj map[string]any) (Item, error) {
	name, err := stringField("Item", obj, "name")
	if err != nil {
		return Item{}, err
	}
	item := Item{Name: name}
	if _, ok := obj["sku"]; ok {
		item.SKU, err = stringField("Item", obj, "sku")
		if err != nil {
			return Item{}, err
		}
	}
	item.Quantity, err = intField("Item", obj, "quantity", 1)
	if err != nil {
		return Item{}, err
	}
	item.Price, err = floatField("Item", obj, "price")
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func deserializePet(obj map[string]any) (Pet, error) {
	name, err := stringField("Pet", obj, "name")
	if err != nil {
		return Pet{}, err
	}
	category, err := stringField("Pet", obj, "category")
	if err != nil {
		return Pet{}, err
	}
	available, err := boolField("Pet", obj, "available")
	if err != nil {
		return Pet{}, err
	}
	return Pet{Name: name, Category: category, Available: available}, nil
}

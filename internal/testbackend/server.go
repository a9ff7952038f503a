package testbackend

import (
	"net/http/httptest"
	"testing"
)

type Server struct {
	*Backend
	URL string
}

// NewServer starts the backend on a local httptest server that is closed
// when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	b := New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return &Server{Backend: b, URL: srv.URL}
}

// AddShopcart stores a shopcart directly, bypassing HTTP.
func (b *Backend) AddShopcart(customerID string) Shopcart {
	cart := Shopcart{ID: b.Shopcarts.NextID(), CustomerID: customerID}
	b.Shopcarts.Set(cart.ID, cart)
	return cart
}

func (b *Backend) AddItem(shopcartID int, item Item) Item {
	item.ID = b.Items.NextID()
	item.ShopcartID = shopcartID
	b.Items.Set(item.ID, item)
	return item
}

func (b *Backend) AddPet(pet Pet) Pet {
	pet.ID = b.Pets.NextID()
	b.Pets.Set(pet.ID, pet)
	return pet
}

// RequestsTo returns the logged requests with the given method and path.
func (b *Backend) RequestsTo(method, path string) []RequestLogEntry {
	out := []RequestLogEntry{}
	for _, e := range b.Requests.Entries() {
		if e.Method == method && e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

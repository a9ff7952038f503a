// Package testbackend is an in-memory stand-in for the shopcart REST service
// (shopcarts, their items and pets), served over httptest in tests.
package testbackend

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Backend struct {
	Shopcarts *Store[Shopcart]
	Items     *Store[Item]
	Pets      *Store[Pet]

	Requests *RequestLog
	Faults   *FaultRegistry
}

func New() *Backend {
	return &Backend{
		Shopcarts: NewStore[Shopcart](),
		Items:     NewStore[Item](),
		Pets:      NewStore[Pet](),
		Requests:  &RequestLog{},
		Faults:    &FaultRegistry{},
	}
}

func (b *Backend) Reset() {
	b.Shopcarts.Reset()
	b.Items.Reset()
	b.Pets.Reset()
	b.Requests.Clear()
	b.Faults.Reset()
}

// Handler returns the backend's router.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.logRequests)
	r.Use(b.injectFaults)

	r.NotFound(writeNotFoundPage)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("%s method not allowed on %s", r.Method, r.URL.Path))
	})

	r.Route("/shopcarts", func(r chi.Router) {
		r.Post("/", b.createShopcart)
		r.Get("/", b.listShopcarts)
		r.Route("/{shopcart_id:[0-9]+}", func(r chi.Router) {
			r.Get("/", b.getShopcart)
			r.Put("/", b.updateShopcart)
			r.Delete("/", b.deleteShopcart)
			r.Put("/clear", b.clearShopcart)

			r.Post("/items", b.createItem)
			r.Get("/items", b.listItems)
			r.Get("/items/{item_id:[0-9]+}", b.getItem)
			r.Put("/items/{item_id:[0-9]+}", b.updateItem)
			r.Delete("/items/{item_id:[0-9]+}", b.deleteItem)
		})
	})

	r.Route("/pets", func(r chi.Router) {
		r.Post("/", b.createPet)
		r.Get("/", b.listPets)
		r.Get("/{pet_id:[0-9]+}", b.getPet)
		r.Put("/{pet_id:[0-9]+}", b.updatePet)
		r.Delete("/{pet_id:[0-9]+}", b.deletePet)
	})

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (b *Backend) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		b.Requests.Add(RequestLogEntry{
			Method:      r.Method,
			Path:        r.URL.Path,
			RawQuery:    r.URL.RawQuery,
			ContentType: r.Header.Get("Content-Type"),
			RequestID:   r.Header.Get("X-Request-Id"),
			Body:        body,
			StatusCode:  rec.statusCode,
			Timestamp:   start,
		})
	})
}

func (b *Backend) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fault, ok := b.Faults.Check(r.Method, r.URL.Path); ok {
			fault.write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// pathID reads an id route parameter. The route patterns only match digits.
func pathID(r *http.Request, key string) int {
	id, _ := strconv.Atoi(chi.URLParam(r, key))
	return id
}

// ---- shopcarts ----

func (b *Backend) viewShopcart(cart Shopcart) shopcartView {
	return shopcartView{
		Shopcart: cart,
		Items: b.Items.Filter(func(_ int, item Item) bool {
			return item.ShopcartID == cart.ID
		}),
	}
}

func (b *Backend) findShopcart(w http.ResponseWriter, r *http.Request) (Shopcart, bool) {
	id := pathID(r, "shopcart_id")
	cart, ok := b.Shopcarts.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Shopcart with id '%d' was not found.", id))
	}
	return cart, ok
}

func (b *Backend) createShopcart(w http.ResponseWriter, r *http.Request) {
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	cart, err := deserializeShopcart(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	cart.ID = b.Shopcarts.NextID()
	b.Shopcarts.Set(cart.ID, cart)

	w.Header().Set("Location", fmt.Sprintf("/shopcarts/%d", cart.ID))
	writeJSON(w, http.StatusCreated, b.viewShopcart(cart))
}

func (b *Backend) listShopcarts(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")
	carts := b.Shopcarts.Filter(func(_ int, cart Shopcart) bool {
		return customerID == "" || cart.CustomerID == customerID
	})
	out := make([]shopcartView, len(carts))
	for i, cart := range carts {
		out[i] = b.viewShopcart(cart)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getShopcart(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.viewShopcart(cart))
}

func (b *Backend) updateShopcart(w http.ResponseWriter, r *http.Request) {
	existing, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	cart, err := deserializeShopcart(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	cart.ID = existing.ID
	b.Shopcarts.Set(cart.ID, cart)
	writeJSON(w, http.StatusOK, b.viewShopcart(cart))
}

// deleteShopcart answers 204 whether or not the shopcart existed.
func (b *Backend) deleteShopcart(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "shopcart_id")
	if b.Shopcarts.Delete(id) {
		b.deleteItemsOf(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) clearShopcart(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	b.deleteItemsOf(cart.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) deleteItemsOf(shopcartID int) {
	for _, item := range b.Items.Filter(func(_ int, item Item) bool {
		return item.ShopcartID == shopcartID
	}) {
		b.Items.Delete(item.ID)
	}
}

// ---- items ----

func (b *Backend) findItem(w http.ResponseWriter, r *http.Request, cart Shopcart) (Item, bool) {
	id := pathID(r, "item_id")
	item, ok := b.Items.Get(id)
	if !ok || item.ShopcartID != cart.ID {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Item with id '%d' was not found.", id))
		return Item{}, false
	}
	return item, true
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	item, err := deserializeItem(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	item.ID = b.Items.NextID()
	item.ShopcartID = cart.ID
	b.Items.Set(item.ID, item)
	writeJSON(w, http.StatusCreated, item)
}

func (b *Backend) listItems(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.viewShopcart(cart).Items)
}

func (b *Backend) getItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	item, ok := b.findItem(w, r, cart)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	cart, ok := b.findShopcart(w, r)
	if !ok {
		return
	}
	existing, ok := b.findItem(w, r, cart)
	if !ok {
		return
	}
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	item, err := deserializeItem(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	item.ID = existing.ID
	item.ShopcartID = cart.ID
	b.Items.Set(item.ID, item)
	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "item_id")
	if item, ok := b.Items.Get(id); ok && item.ShopcartID == pathID(r, "shopcart_id") {
		b.Items.Delete(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- pets ----

func (b *Backend) findPet(w http.ResponseWriter, r *http.Request) (Pet, bool) {
	id := pathID(r, "pet_id")
	pet, ok := b.Pets.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Pet with id '%d' was not found.", id))
	}
	return pet, ok
}

func (b *Backend) createPet(w http.ResponseWriter, r *http.Request) {
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	pet, err := deserializePet(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	pet.ID = b.Pets.NextID()
	b.Pets.Set(pet.ID, pet)
	w.Header().Set("Location", fmt.Sprintf("/pets/%d", pet.ID))
	writeJSON(w, http.StatusCreated, pet)
}

func (b *Backend) listPets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	name := query.Get("name")
	category := query.Get("category")
	available := query.Get("available")
	writeJSON(w, http.StatusOK, b.Pets.Filter(func(_ int, pet Pet) bool {
		if name != "" && pet.Name != name {
			return false
		}
		if category != "" && pet.Category != category {
			return false
		}
		if available != "" && strconv.FormatBool(pet.Available) != available {
			return false
		}
		return true
	}))
}

func (b *Backend) getPet(w http.ResponseWriter, r *http.Request) {
	pet, ok := b.findPet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pet)
}

func (b *Backend) updatePet(w http.ResponseWriter, r *http.Request) {
	existing, ok := b.findPet(w, r)
	if !ok {
		return
	}
	obj, err := readObject(r)
	if err != nil {
		decodeError(w, err)
		return
	}
	pet, err := deserializePet(obj)
	if err != nil {
		decodeError(w, err)
		return
	}
	pet.ID = existing.ID
	b.Pets.Set(pet.ID, pet)
	writeJSON(w, http.StatusOK, pet)
}

func (b *Backend) deletePet(w http.ResponseWriter, r *http.Request) {
	b.Pets.Delete(pathID(r, "pet_id"))
	w.WriteHeader(http.StatusNoContent)
}

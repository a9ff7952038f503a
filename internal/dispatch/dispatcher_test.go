package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/form"
	"shopcart-console/internal/testbackend"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newDispatcher(t *testing.T) (*Dispatcher, *testbackend.Server, *telemetry.Recorder) {
	t.Helper()
	srv := testbackend.NewServer(t)
	rec := &telemetry.Recorder{}
	d, err := New(Options{BaseUrl: srv.URL, Telemetry: rec})
	require.NoError(t, err)
	return d, srv, rec
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var derr *Error
	require.True(t, errors.As(err, &derr), "expected *Error, got %v", err)
	require.Equal(t, kind, derr.Kind, derr.Error())
	return derr
}

func TestCreateSendsOnlyWritableAttributes(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	customerID := strconv.Itoa(gofakeit.Number(1, 10000))

	out, err := d.Create(context.Background(), form.Shopcarts, form.Record{
		"id":          "99",
		"customer_id": customerID,
		"items":       "spatula",
	})
	require.NoError(t, err)

	requests := srv.RequestsTo(http.MethodPost, "/shopcarts")
	require.Len(t, requests, 1)
	require.Len(t, srv.Requests.Entries(), 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(requests[0].Body, &body))
	require.Equal(t, map[string]any{"customer_id": customerID}, body)
	require.Equal(t, "application/json", requests[0].ContentType)
	require.NotEmpty(t, requests[0].RequestID)

	if diff := cmp.Diff(form.Record{"id": "1", "customer_id": customerID, "items": ""}, out); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestCreateAcceptsUnderscoreId(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"abc","customer_id":"7"}`))
	}))
	defer srv.Close()

	d, err := New(Options{BaseUrl: srv.URL, Telemetry: &telemetry.Recorder{}})
	require.NoError(t, err)

	out, err := d.Create(context.Background(), form.Shopcarts, form.Record{"customer_id": "7"})
	require.NoError(t, err)
	require.Equal(t, form.Record{"id": "abc", "customer_id": "7"}, out)
}

func TestMemberOperationsRequireIdentifier(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	ctx := context.Background()
	rec := form.Record{"customer_id": "7"}

	_, err := d.Update(ctx, form.Shopcarts, rec)
	derr := requireKind(t, err, KindValidation)
	require.Equal(t, "Shopcart ID is required", derr.Message)

	_, err = d.Retrieve(ctx, form.Shopcarts, rec)
	requireKind(t, err, KindValidation)

	err = d.Delete(ctx, form.Shopcarts, rec)
	requireKind(t, err, KindValidation)

	err = d.Empty(ctx, form.Shopcarts, rec)
	requireKind(t, err, KindValidation)

	_, err = d.List(ctx, form.Items, form.Record{})
	derr = requireKind(t, err, KindValidation)
	require.Equal(t, "Shopcart ID is required", derr.Message)

	require.Empty(t, srv.Requests.Entries())
}

func TestUpdateAndRetrieve(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	ctx := context.Background()
	cart := srv.AddShopcart("1")
	id := strconv.Itoa(cart.ID)

	out, err := d.Update(ctx, form.Shopcarts, form.Record{"id": id, "customer_id": "2"})
	require.NoError(t, err)
	require.Equal(t, "2", out.Get("customer_id"))
	require.Len(t, srv.RequestsTo(http.MethodPut, "/shopcarts/"+id), 1)

	out, err = d.Retrieve(ctx, form.Shopcarts, form.Record{"id": id})
	require.NoError(t, err)
	require.Equal(t, form.Record{"id": id, "customer_id": "2", "items": ""}, out)
}

func TestApplicationErrorUsesServerMessage(t *testing.T) {
	d, _, rec := newDispatcher(t)

	_, err := d.Retrieve(context.Background(), form.Shopcarts, form.Record{"id": "5"})
	derr := requireKind(t, err, KindApplication)
	require.Equal(t, http.StatusNotFound, derr.Status)
	require.Equal(t, "Shopcart with id '5' was not found.", derr.Message)
	require.Equal(t, "Shopcart with id '5' was not found.", Message(err))
	require.Contains(t, rec.Level("warning"), "dispatcher: application-error")
}

func TestApplicationErrorFromHTMLPage(t *testing.T) {
	d, _, _ := newDispatcher(t)

	_, err := d.Retrieve(context.Background(), form.Shopcarts, form.Record{"id": "abc"})
	derr := requireKind(t, err, KindApplication)
	require.Equal(t, testbackend.NotFoundPageMessage, derr.Message)
}

func TestApplicationErrorFallback(t *testing.T) {
	testCases := []struct {
		name  string
		fault testbackend.Fault
	}{
		{name: "empty body", fault: testbackend.Fault{StatusCode: http.StatusInternalServerError}},
		{name: "json without message", fault: testbackend.Fault{StatusCode: http.StatusBadRequest, Body: `{"error":"Bad Request"}`}},
		{name: "blank message", fault: testbackend.Fault{StatusCode: http.StatusBadRequest, Body: `{"message":"  "}`}},
		{name: "plain text", fault: testbackend.Fault{StatusCode: http.StatusBadGateway, ContentType: "text/plain", Body: "upstream down"}},
		{name: "html without text", fault: testbackend.Fault{StatusCode: http.StatusBadGateway, ContentType: "text/html", Body: "<html><body></body></html>"}},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			d, srv, _ := newDispatcher(t)
			srv.Faults.Set(http.MethodPost, "/shopcarts", test.fault)

			_, err := d.Create(context.Background(), form.Shopcarts, form.Record{"customer_id": "7"})
			derr := requireKind(t, err, KindApplication)
			require.Equal(t, MessageServerError, derr.Message)
			require.Equal(t, MessageServerError, Message(err))
		})
	}
}

func TestMappingError(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "not json", body: "ok"},
		{name: "array instead of object", body: `[{"id":1}]`},
		{name: "missing identifier", body: `{"customer_id":"7"}`},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			d, srv, rec := newDispatcher(t)
			srv.Faults.Set(http.MethodPost, "/shopcarts", testbackend.Fault{StatusCode: http.StatusCreated, Body: test.body})

			_, err := d.Create(context.Background(), form.Shopcarts, form.Record{"customer_id": "7"})
			derr := requireKind(t, err, KindMapping)
			require.Equal(t, MessageUnexpected, derr.Message)
			require.ErrorIs(t, err, form.ErrMalformed)
			require.Contains(t, rec.Level("broken"), "dispatcher: mapping-error")
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d, err := New(Options{BaseUrl: url, Telemetry: &telemetry.Recorder{}})
	require.NoError(t, err)

	_, err = d.Retrieve(context.Background(), form.Shopcarts, form.Record{"id": "1"})
	derr := requireKind(t, err, KindTransport)
	require.Equal(t, MessageTransport, derr.Message)
	require.Error(t, derr.Unwrap())
}

func TestDelete(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	cart := srv.AddShopcart("1")

	err := d.Delete(context.Background(), form.Shopcarts, form.Record{"id": strconv.Itoa(cart.ID)})
	require.NoError(t, err)
	require.Equal(t, 0, srv.Shopcarts.Count())
}

func TestDeleteFailureIsGeneric(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	srv.Faults.Set(http.MethodDelete, "/shopcarts/3", testbackend.Fault{
		StatusCode: http.StatusConflict,
		Body:       `{"message":"cart is locked"}`,
	})

	err := d.Delete(context.Background(), form.Shopcarts, form.Record{"id": "3"})
	derr := requireKind(t, err, KindApplication)
	require.Equal(t, http.StatusConflict, derr.Status)
	require.Equal(t, MessageServerError, derr.Message)
}

func TestListFilter(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	ctx := context.Background()
	srv.AddShopcart("42")
	srv.AddShopcart("7")
	srv.AddShopcart("42")

	all, err := d.List(ctx, form.Shopcarts, form.Record{"customer_id": ""})
	require.NoError(t, err)
	require.Len(t, all, 3)

	filtered, err := d.List(ctx, form.Shopcarts, form.Record{"id": "2", "customer_id": "42"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	require.Equal(t, "1", filtered[0].Get("id"))
	require.Equal(t, "3", filtered[1].Get("id"))

	requests := srv.RequestsTo(http.MethodGet, "/shopcarts")
	require.Len(t, requests, 2)
	require.Equal(t, "", requests[0].RawQuery)
	require.Equal(t, "customer_id=42", requests[1].RawQuery)
}

func TestListMappingError(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	srv.Faults.Set(http.MethodGet, "/shopcarts", testbackend.Fault{StatusCode: http.StatusOK, Body: `{"id":1}`})

	_, err := d.List(context.Background(), form.Shopcarts, form.Record{})
	requireKind(t, err, KindMapping)
}

func TestNestedItems(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	ctx := context.Background()
	cart := srv.AddShopcart("1")
	cartID := strconv.Itoa(cart.ID)

	created, err := d.Create(ctx, form.Items, form.Record{
		"shopcart_id": cartID,
		"name":        "spatula",
		"quantity":    "2",
		"price":       "3.5",
	})
	require.NoError(t, err)
	require.Equal(t, form.Record{
		"id":          "1",
		"shopcart_id": cartID,
		"name":        "spatula",
		"sku":         "",
		"quantity":    "2",
		"price":       "3.5",
	}, created)

	requests := srv.RequestsTo(http.MethodPost, "/shopcarts/"+cartID+"/items")
	require.Len(t, requests, 1)
	require.JSONEq(t, `{"shopcart_id":"1","name":"spatula","sku":"","quantity":2,"price":3.5}`, string(requests[0].Body))

	items, err := d.List(ctx, form.Items, form.Record{"shopcart_id": cartID})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = d.Create(ctx, form.Items, form.Record{"shopcart_id": cartID, "quantity": "two"})
	requireKind(t, err, KindValidation)
}

func TestEmpty(t *testing.T) {
	d, srv, _ := newDispatcher(t)
	cart := srv.AddShopcart("1")
	srv.AddItem(cart.ID, testbackend.Item{Name: gofakeit.ProductName()})
	srv.AddItem(cart.ID, testbackend.Item{Name: gofakeit.ProductName()})

	err := d.Empty(context.Background(), form.Shopcarts, form.Record{"id": strconv.Itoa(cart.ID)})
	require.NoError(t, err)
	require.Equal(t, 0, srv.Items.Count())
	require.Len(t, srv.RequestsTo(http.MethodPut, "/shopcarts/1/clear"), 1)

	err = d.Empty(context.Background(), form.Pets, form.Record{"id": "1"})
	requireKind(t, err, KindValidation)
}

func TestNewRequiresBaseUrl(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"shopcart-console/internal/components/telemetry"
	"shopcart-console/internal/dispatch"
	"shopcart-console/internal/form"
	"shopcart-console/internal/status"
	"shopcart-console/internal/testbackend"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, s form.Schema) (*Controller, *testbackend.Server) {
	t.Helper()
	srv := testbackend.NewServer(t)
	tel := &telemetry.Recorder{}
	d, err := dispatch.New(dispatch.Options{BaseUrl: srv.URL, Telemetry: tel})
	require.NoError(t, err)
	c, err := New(Options{Schema: s, Dispatcher: d, Telemetry: tel})
	require.NoError(t, err)
	return c, srv
}

func requireForm(t *testing.T, c *Controller, expected form.Record) {
	t.Helper()
	if diff := cmp.Diff(expected, c.Form()); diff != "" {
		t.Fatalf("unexpected form (-want +got):\n%s", diff)
	}
}

func requireStatus(t *testing.T, c *Controller, level status.Level, text string) {
	t.Helper()
	require.Equal(t, status.Message{Level: level, Text: text}, c.Status().Current())
}

func TestCreate(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		customerID := strconv.Itoa(gofakeit.Number(1, 100000))
		c.Fire(ctx, TriggerClear)
		require.NoError(t, c.SetField("customer_id", customerID))
		require.NoError(t, c.Fire(ctx, TriggerCreate))

		requests := srv.RequestsTo(http.MethodPost, "/shopcarts")
		require.Len(t, requests, i+1)
		var body map[string]any
		require.NoError(t, json.Unmarshal(requests[i].Body, &body))
		require.Equal(t, map[string]any{"customer_id": customerID}, body)

		requireForm(t, c, form.Record{
			"id":          strconv.Itoa(i + 1),
			"customer_id": customerID,
			"items":       "",
		})
		requireStatus(t, c, status.LevelSuccess, "Success")
	}
	require.Len(t, srv.Requests.Entries(), 5)
}

func TestCreateFailureLeavesFormUnchanged(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	srv.Faults.Set(http.MethodPost, "/shopcarts", testbackend.Fault{
		StatusCode: http.StatusBadRequest,
		Body:       `{"status":400,"error":"Bad Request","message":"Invalid Shopcart: missing customer_id"}`,
	})
	require.NoError(t, c.SetField("customer_id", "7"))

	err := c.Fire(context.Background(), TriggerCreate)
	require.Error(t, err)
	requireForm(t, c, form.Record{"customer_id": "7"})
	requireStatus(t, c, status.LevelError, "Invalid Shopcart: missing customer_id")
}

func TestDeleteAlwaysClearsIdentifier(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	ctx := context.Background()

	existing := srv.AddShopcart("3")
	testCases := []form.Record{
		{"id": strconv.Itoa(existing.ID), "customer_id": "3"},
		{"id": "999"},
		{"id": "12", "customer_id": "1", "items": "mug"},
	}
	for _, rec := range testCases {
		c.Restore(rec)
		require.NoError(t, c.Fire(ctx, TriggerDelete))
		require.Equal(t, "", c.Form().Get("id"))
		requireForm(t, c, form.Record{})
		requireStatus(t, c, status.LevelSuccess, "Shopcart has been Deleted!")
	}
	require.Equal(t, 0, srv.Shopcarts.Count())
}

func TestDeleteFailure(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	srv.Faults.Set(http.MethodDelete, "/shopcarts/4", testbackend.Fault{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"database is down"}`,
	})
	c.Restore(form.Record{"id": "4", "customer_id": "1"})

	require.Error(t, c.Fire(context.Background(), TriggerDelete))
	requireForm(t, c, form.Record{"id": "4", "customer_id": "1"})
	requireStatus(t, c, status.LevelError, "Server error!")
}

func TestRetrieve(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	ctx := context.Background()
	cart := srv.AddShopcart("8")
	srv.AddItem(cart.ID, testbackend.Item{Name: "mug"})
	srv.AddItem(cart.ID, testbackend.Item{Name: "spatula"})

	require.NoError(t, c.SetField("id", strconv.Itoa(cart.ID)))
	require.NoError(t, c.Fire(ctx, TriggerRetrieve))
	requireForm(t, c, form.Record{"id": "1", "customer_id": "8", "items": "mug, spatula"})
	requireStatus(t, c, status.LevelSuccess, "Success")
}

func TestRetrieveFailureClearsForm(t *testing.T) {
	c, _ := newController(t, form.Shopcarts)
	c.Restore(form.Record{"id": "41", "customer_id": "8"})

	err := c.Fire(context.Background(), TriggerRetrieve)
	require.Equal(t, dispatch.KindApplication, dispatch.KindOf(err))
	requireForm(t, c, form.Record{})
	requireStatus(t, c, status.LevelError, "Shopcart with id '41' was not found.")
}

func TestRetrieveMappingFailureKeepsForm(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	srv.Faults.Set(http.MethodGet, "/shopcarts/2", testbackend.Fault{StatusCode: http.StatusOK, Body: `"two"`})
	c.Restore(form.Record{"id": "2", "customer_id": "8"})

	err := c.Fire(context.Background(), TriggerRetrieve)
	require.Equal(t, dispatch.KindMapping, dispatch.KindOf(err))
	requireForm(t, c, form.Record{"id": "2", "customer_id": "8"})
	requireStatus(t, c, status.LevelError, dispatch.MessageUnexpected)
}

func TestUpdateRequiresIdentifier(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	require.NoError(t, c.SetField("customer_id", "8"))

	err := c.Fire(context.Background(), TriggerUpdate)
	require.Equal(t, dispatch.KindValidation, dispatch.KindOf(err))
	requireStatus(t, c, status.LevelError, "Shopcart ID is required")
	require.Empty(t, srv.Requests.Entries())
}

func TestUpdate(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	cart := srv.AddShopcart("8")
	c.Restore(form.Record{"id": strconv.Itoa(cart.ID), "customer_id": "9"})

	require.NoError(t, c.Fire(context.Background(), TriggerUpdate))
	requireForm(t, c, form.Record{"id": "1", "customer_id": "9", "items": ""})
	stored, _ := srv.Shopcarts.Get(cart.ID)
	require.Equal(t, "9", stored.CustomerID)
}

func TestSearchQuery(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	ctx := context.Background()

	require.NoError(t, c.Fire(ctx, TriggerSearch))
	require.NoError(t, c.SetField("customer_id", "42"))
	require.NoError(t, c.Fire(ctx, TriggerSearch))

	requests := srv.RequestsTo(http.MethodGet, "/shopcarts")
	require.Len(t, requests, 2)
	require.Equal(t, "", requests[0].RawQuery)
	require.Equal(t, "customer_id=42", requests[1].RawQuery)
}

func TestSearchEmptyResultSet(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	srv.AddShopcart("1")
	c.Restore(form.Record{"customer_id": "2"})

	require.NoError(t, c.Fire(context.Background(), TriggerSearch))
	table, ok := c.Results().Last()
	require.True(t, ok)
	require.Equal(t, 0, table.Len())
	requireForm(t, c, form.Record{"customer_id": "2"})
	requireStatus(t, c, status.LevelSuccess, "Success")
}

func TestSearchCopiesFirstRecord(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	for i := 0; i < 4; i++ {
		srv.AddShopcart("5")
	}
	srv.AddShopcart("6")
	c.Restore(form.Record{"customer_id": "5"})

	require.NoError(t, c.Fire(context.Background(), TriggerSearch))
	table, ok := c.Results().Last()
	require.True(t, ok)
	require.Equal(t, 4, table.Len())
	for i, row := range table.Rows {
		require.Equal(t, strconv.Itoa(i+1), row[0])
	}
	requireForm(t, c, form.Record{"id": "1", "customer_id": "5", "items": ""})
}

func TestSearchFailureKeepsPreviousTable(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	ctx := context.Background()
	srv.AddShopcart("5")

	require.NoError(t, c.Fire(ctx, TriggerSearch))
	srv.Faults.Set(http.MethodGet, "/shopcarts", testbackend.Fault{StatusCode: http.StatusServiceUnavailable})
	require.Error(t, c.Fire(ctx, TriggerSearch))

	table, ok := c.Results().Last()
	require.True(t, ok)
	require.Equal(t, 1, table.Len())
	requireStatus(t, c, status.LevelError, "Server error!")
}

func TestClearIsLocal(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	c.Status().Error("previous failure")
	c.Restore(form.Record{"id": "1", "customer_id": "5"})

	require.NoError(t, c.Fire(context.Background(), TriggerClear))
	requireForm(t, c, form.Record{})
	requireStatus(t, c, status.LevelError, "previous failure")
	require.Empty(t, srv.Requests.Entries())
}

func TestEmpty(t *testing.T) {
	c, srv := newController(t, form.Shopcarts)
	cart := srv.AddShopcart("5")
	srv.AddItem(cart.ID, testbackend.Item{Name: "mug"})
	c.Restore(form.Record{"id": "1", "customer_id": "5", "items": "mug"})

	require.NoError(t, c.Fire(context.Background(), TriggerEmpty))
	requireForm(t, c, form.Record{"id": "1", "customer_id": "5", "items": ""})
	requireStatus(t, c, status.LevelSuccess, "Shopcart has been emptied!")
	require.Equal(t, 0, srv.Items.Count())
}

func TestTriggers(t *testing.T) {
	shopcarts, _ := newController(t, form.Shopcarts)
	require.Equal(t, []Trigger{
		TriggerCreate, TriggerUpdate, TriggerRetrieve, TriggerDelete,
		TriggerClear, TriggerSearch, TriggerEmpty,
	}, shopcarts.Triggers())

	pets, _ := newController(t, form.Pets)
	require.NotContains(t, pets.Triggers(), TriggerEmpty)

	var unknown *UnknownTriggerError
	require.True(t, errors.As(pets.Fire(context.Background(), TriggerEmpty), &unknown))
}

func TestRegisterCustomTrigger(t *testing.T) {
	c, _ := newController(t, form.Shopcarts)
	fired := 0
	c.Register("ping", func(_ context.Context, c *Controller) error {
		fired++
		c.Status().Success("pong")
		return nil
	})

	require.NoError(t, c.Fire(context.Background(), "ping"))
	require.Equal(t, 1, fired)
	requireStatus(t, c, status.LevelSuccess, "pong")
	require.Equal(t, Trigger("ping"), c.Triggers()[len(c.Triggers())-1])
}

func TestSetField(t *testing.T) {
	c, _ := newController(t, form.Shopcarts)

	var fieldErr *UnknownFieldError
	require.True(t, errors.As(c.SetField("shopcart id", "1"), &fieldErr))
	require.False(t, fieldErr.ReadOnly)
	require.True(t, errors.As(c.SetField("items", "x"), &fieldErr))
	require.True(t, fieldErr.ReadOnly)

	require.NoError(t, c.SetField("id", "3"))
	requireForm(t, c, form.Record{"id": "3"})
}

func TestRestoreDropsUnknownKeys(t *testing.T) {
	c, _ := newController(t, form.Shopcarts)
	c.Restore(form.Record{"id": "1", "name": "rex"})
	requireForm(t, c, form.Record{"id": "1"})
}

func TestNestedItems(t *testing.T) {
	c, srv := newController(t, form.Items)
	ctx := context.Background()
	cart := srv.AddShopcart("5")
	cartID := strconv.Itoa(cart.ID)

	require.NoError(t, c.SetField("shopcart_id", cartID))
	require.NoError(t, c.SetField("name", "mug"))
	require.NoError(t, c.SetField("quantity", "2"))
	require.NoError(t, c.Fire(ctx, TriggerCreate))
	require.Equal(t, "1", c.Form().Get("id"))

	require.NoError(t, c.Fire(ctx, TriggerDelete))
	requireForm(t, c, form.Record{"shopcart_id": cartID})
	requireStatus(t, c, status.LevelSuccess, "Item has been Deleted!")
}

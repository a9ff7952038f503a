package controller

import (
	"context"
	"fmt"

	"shopcart-console/internal/dispatch"
	"shopcart-console/internal/form"
)

const MessageSuccess = "Success"

func deletedMessage(s form.Schema) string {
	return fmt.Sprintf("%s has been Deleted!", s.Singular)
}

func emptiedMessage(s form.Schema) string {
	return fmt.Sprintf("%s has been emptied!", s.Singular)
}

// fail reports err in the status area and hands it back.
func (c *Controller) fail(err error) error {
	c.status.Error(dispatch.Message(err))
	return err
}

func handleCreate(ctx context.Context, c *Controller) error {
	out, err := c.dispatcher.Create(ctx, c.schema, c.Form())
	if err != nil {
		return c.fail(err)
	}
	c.setForm(out)
	c.status.Success(MessageSuccess)
	return nil
}

func handleUpdate(ctx context.Context, c *Controller) error {
	out, err := c.dispatcher.Update(ctx, c.schema, c.Form())
	if err != nil {
		return c.fail(err)
	}
	c.setForm(out)
	c.status.Success(MessageSuccess)
	return nil
}

// handleRetrieve clears the form when the backend could not produce the
// record. Validation and mapping failures leave it as it was.
func handleRetrieve(ctx context.Context, c *Controller) error {
	out, err := c.dispatcher.Retrieve(ctx, c.schema, c.Form())
	if err != nil {
		switch dispatch.KindOf(err) {
		case dispatch.KindTransport, dispatch.KindApplication:
			c.setForm(c.blank())
		}
		return c.fail(err)
	}
	c.setForm(out)
	c.status.Success(MessageSuccess)
	return nil
}

func handleDelete(ctx context.Context, c *Controller) error {
	err := c.dispatcher.Delete(ctx, c.schema, c.Form())
	if err != nil {
		return c.fail(err)
	}
	c.setForm(c.blank())
	c.status.Success(deletedMessage(c.schema))
	return nil
}

// handleClear is local only: no request, the status area is left alone.
func handleClear(_ context.Context, c *Controller) error {
	c.setForm(c.blank())
	return nil
}

// handleSearch renders the result set and copies its first record into the
// form. A failed search keeps the previous table.
func handleSearch(ctx context.Context, c *Controller) error {
	records, err := c.dispatcher.List(ctx, c.schema, c.Form())
	if err != nil {
		return c.fail(err)
	}
	c.results.Render(c.schema, records)
	if len(records) > 0 {
		c.setForm(records[0])
	}
	c.status.Success(MessageSuccess)
	return nil
}

// handleEmpty clears the derived list fields once the backend has emptied
// the resource.
func handleEmpty(ctx context.Context, c *Controller) error {
	rec := c.Form()
	err := c.dispatcher.Empty(ctx, c.schema, rec)
	if err != nil {
		return c.fail(err)
	}
	for _, f := range c.schema.Fields {
		if f.Role == form.RoleDerived && f.Kind == form.KindList {
			rec[f.Name] = ""
		}
	}
	c.setForm(rec)
	c.status.Success(emptiedMessage(c.schema))
	return nil
}

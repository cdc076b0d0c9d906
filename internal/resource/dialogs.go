package resource

import (
	"context"
	"encoding/json"

	"github.com/aoideee/inventory-console/internal/api"
	"github.com/aoideee/inventory-console/internal/data"
	"github.com/aoideee/inventory-console/internal/validator"
)

// RequiredMissing is shown when a dialog is submitted with a required field
// left empty.
const RequiredMissing = "Please fill in all required fields."

// Outcome reports how a dialog submission ended.
type Outcome int

const (
	// Invalid: client-side validation failed. Nothing was sent and the dialog
	// is still open with the submitted draft.
	Invalid Outcome = iota
	// Rejected: the API answered with a not-found or other failure envelope.
	Rejected
	// Failed: the request did not produce an envelope.
	Failed
	// Saved: the API accepted the change and the table was refreshed.
	Saved
)

func (o Outcome) String() string {
	switch o {
	case Invalid:
		return "invalid"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	case Saved:
		return "saved"
	default:
		return "unknown"
	}
}

// validate runs the required and non-negative checks on draft. It returns
// the first failure message, or "" when the draft may be sent.
func (s Schema[T]) validate(draft data.Record) string {
	v := validator.New()
	for _, field := range s.Required {
		present := !draft.Blank(field)
		if present && s.isNumeric(field) {
			_, present = draft.Decimal(field)
		}
		v.Check(present, field, RequiredMissing)
	}
	if !v.Valid() {
		return v.First()
	}
	for _, rule := range s.NonNegative {
		if d, ok := draft.Decimal(rule.Field); ok {
			v.Check(validator.NonNegative(d), rule.Field, rule.Message)
		}
	}
	return v.First()
}

// payload converts a validated draft into the request body: numeric fields
// become JSON numbers and the identifier field is left to the URL.
func (s Schema[T]) payload(draft data.Record) data.Record {
	body := make(data.Record, len(draft))
	for k, v := range draft {
		if k == s.IDField {
			continue
		}
		if s.isNumeric(k) {
			if d, ok := draft.Decimal(k); ok {
				body[k] = json.Number(d.String())
				continue
			}
		}
		body[k] = v
	}
	return body
}

// SubmitAdd validates draft and creates it with POST. Validation failures
// keep the add dialog open; once a request is made the dialog closes whatever
// the result.
func (c *Controller[T]) SubmitAdd(ctx context.Context, draft data.Record) Outcome {
	if msg := c.schema.validate(draft); msg != "" {
		c.notes.Error(msg)
		c.setDialog(DialogAdd, Dialog{Open: true, Draft: draft.Clone()})
		return Invalid
	}

	env, err := c.client.Post(ctx, c.schema.MutatePath, c.schema.payload(draft))
	return c.finish(ctx, DialogAdd, "add", "added", env, err)
}

// SubmitEdit validates draft and saves it with PATCH against the record held
// by the open edit dialog.
func (c *Controller[T]) SubmitEdit(ctx context.Context, draft data.Record) Outcome {
	id := c.Dialog(DialogEdit).Draft.String(c.schema.IDField)
	if id == "" {
		id = draft.String(c.schema.IDField)
	}
	if id == "" {
		c.notes.Error(c.schema.failureMessage("update"))
		c.CloseDialog(DialogEdit)
		return Invalid
	}

	if msg := c.schema.validate(draft); msg != "" {
		c.notes.Error(msg)
		keep := draft.Clone()
		keep[c.schema.IDField] = id
		c.setDialog(DialogEdit, Dialog{Open: true, Draft: keep})
		return Invalid
	}

	env, err := c.client.Patch(ctx, c.schema.ItemPath(id), c.schema.payload(draft))
	return c.finish(ctx, DialogEdit, "update", "updated", env, err)
}

// ConfirmDelete deletes the record held by the open delete dialog.
func (c *Controller[T]) ConfirmDelete(ctx context.Context) Outcome {
	d := c.Dialog(DialogDelete)
	id := d.Draft.String(c.schema.IDField)
	if !d.Open || id == "" {
		c.notes.Error(c.schema.failureMessage("delete"))
		c.CloseDialog(DialogDelete)
		return Invalid
	}

	env, err := c.client.Delete(ctx, c.schema.ItemPath(id))
	return c.finish(ctx, DialogDelete, "delete", "deleted", env, err)
}

// finish applies the shared response handling of every mutating dialog: the
// dialog always closes and the table is refreshed only on real success.
func (c *Controller[T]) finish(ctx context.Context, kind DialogKind, verb, past string, env *api.Envelope, err error) Outcome {
	defer c.CloseDialog(kind)

	switch {
	case err != nil:
		c.notes.Error(c.schema.failureMessage(verb))
		return Failed
	case env.NotFound(), !env.Success:
		c.notes.Error(messageOr(env.Message, c.schema.failureMessage(verb)))
		return Rejected
	}

	c.notes.Success(c.schema.successMessage(past))
	c.Refresh(ctx)
	return Saved
}

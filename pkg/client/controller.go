package client

import (
	"context"
	"errors"
	"strings"
)

// State is where the controller sits in its submit/reload cycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateReloading  State = "reloading"
)

// ErrBlankFields is returned before any network call when name or email
// trims down to nothing; the server would reject it with 400 anyway.
var ErrBlankFields = errors.New("name and email are required")

// Row is a render-ready line of the subscriber list.
type Row struct {
	ID         string
	Name       string
	Email      string
	Subscribed string
}

// BuildRows maps subscribers onto display rows. It is a pure function of
// its input so it can be tested without any view.
func BuildRows(subs []Subscriber) []Row {
	rows := make([]Row, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, Row{
			ID:         s.ID,
			Name:       s.Name,
			Email:      s.Email,
			Subscribed: s.SubscribedAt.Format("02 Jan 2006 15:04"),
		})
	}
	return rows
}

// View displays subscriber rows and user-facing notices.
type View interface {
	Render(rows []Row)
	Notify(message string)
}

// Controller drives a View from the API. Every successful mutation is
// followed by a full list reload so the view always shows server truth,
// never an optimistic local edit. Callers drive it from one goroutine.
type Controller struct {
	api   *Client
	view  View
	state State
}

func NewController(api *Client, view View) *Controller {
	return &Controller{api: api, view: view, state: StateIdle}
}

// State reports the current point in the submit/reload cycle.
func (c *Controller) State() State {
	return c.state
}

// Load fetches the list and renders it.
func (c *Controller) Load(ctx context.Context) error {
	subs, err := c.api.List(ctx)
	if err != nil {
		c.view.Notify(userMessage(err))
		return err
	}
	c.view.Render(BuildRows(subs))
	return nil
}

// CreateSubscriber submits a new subscriber and reloads on success.
func (c *Controller) CreateSubscriber(ctx context.Context, name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		c.view.Notify(ErrBlankFields.Error())
		return ErrBlankFields
	}
	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Create(ctx, name, email)
		return err
	})
}

// UpdateSubscriber replaces a subscriber's fields and reloads on success.
func (c *Controller) UpdateSubscriber(ctx context.Context, id, name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		c.view.Notify(ErrBlankFields.Error())
		return ErrBlankFields
	}
	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Update(ctx, id, name, email)
		return err
	})
}

// RemoveSubscriber deletes a subscriber and reloads on success. Asking
// the user for confirmation is the caller's job.
func (c *Controller) RemoveSubscriber(ctx context.Context, id string) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		_, err := c.api.Delete(ctx, id)
		return err
	})
}

func (c *Controller) mutate(ctx context.Context, op func(context.Context) error) error {
	c.state = StateSubmitting
	if err := op(ctx); err != nil {
		c.state = StateIdle
		c.view.Notify(userMessage(err))
		return err
	}
	c.state = StateReloading
	err := c.Load(ctx)
	c.state = StateIdle
	return err
}

func userMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "could not reach the server, please try again"
}

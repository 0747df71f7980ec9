package repository

import (
	"context"
	"errors"

	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no subscriber exists for the given id.
	ErrNotFound = errors.New("subscriber not found")
	// ErrDuplicateEmail is returned when a write would leave two live
	// subscribers with the same normalized email.
	ErrDuplicateEmail = errors.New("email already subscribed")
)

// SubscriberRepository defines the interface for subscriber persistence.
// Implementations receive already-normalized name/email values and are the
// sole authority on the email uniqueness invariant: create/update must be
// atomic with respect to concurrent writers on the same email.
type SubscriberRepository interface {
	// List returns all subscribers ordered by SubscribedAt descending.
	List(ctx context.Context) ([]entity.Subscriber, error)
	// GetByID returns the subscriber with the given id or ErrNotFound.
	GetByID(ctx context.Context, id string) (*entity.Subscriber, error)
	// Create persists a new subscriber, assigning ID and SubscribedAt.
	// Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, s *entity.Subscriber) error
	// Update replaces name/email of an existing subscriber, leaving
	// SubscribedAt untouched. Returns ErrNotFound or ErrDuplicateEmail
	// (the record itself is excluded from the collision check).
	Update(ctx context.Context, s *entity.Subscriber) error
	// Delete removes the subscriber permanently and returns its prior
	// state, or ErrNotFound.
	Delete(ctx context.Context, id string) (*entity.Subscriber, error)
}

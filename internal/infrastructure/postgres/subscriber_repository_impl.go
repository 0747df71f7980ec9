package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
	"github.com/tiendacafe/subscribers-api/internal/domain/repository"
)

// Postgres unique-violation SQLSTATE. The unique index on subscribers.email
// is what makes concurrent create/update on the same email safe: the loser
// of the race observes 23505 instead of a torn write.
const uniqueViolation = "23505"

type SubscriberRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepository(pool *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{pool: pool}
}

func (r *SubscriberRepository) List(ctx context.Context) ([]entity.Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, subscribed_at
		FROM subscribers
		ORDER BY subscribed_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]entity.Subscriber, 0)
	for rows.Next() {
		var s entity.Subscriber
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.SubscribedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) GetByID(ctx context.Context, id string) (*entity.Subscriber, error) {
	s := &entity.Subscriber{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, subscribed_at
		FROM subscribers
		WHERE id = $1
	`, id)

	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.SubscribedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, s *entity.Subscriber) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO subscribers (name, email)
		VALUES ($1, $2)
		RETURNING id, subscribed_at
	`, s.Name, s.Email)

	if err := row.Scan(&s.ID, &s.SubscribedAt); err != nil {
		return mapDuplicate(err)
	}
	return nil
}

func (r *SubscriberRepository) Update(ctx context.Context, s *entity.Subscriber) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE subscribers
		SET name = $1, email = $2
		WHERE id = $3
		RETURNING subscribed_at
	`, s.Name, s.Email, s.ID)

	if err := row.Scan(&s.SubscribedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return mapDuplicate(err)
	}
	return nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) (*entity.Subscriber, error) {
	s := &entity.Subscriber{}

	row := r.pool.QueryRow(ctx, `
		DELETE FROM subscribers
		WHERE id = $1
		RETURNING id, name, email, subscribed_at
	`, id)

	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.SubscribedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return s, nil
}

func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.SubscriberRepository = (*SubscriberRepository)(nil)

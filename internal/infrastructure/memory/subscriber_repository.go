package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
	"github.com/tiendacafe/subscribers-api/internal/domain/repository"
)

// SubscriberRepository is a mutex-guarded in-memory implementation of the
// repository contract. It backs tests and the STORE_DRIVER=memory mode.
// The mutex is held across the uniqueness check and the write, which gives
// the same one-winner guarantee the Postgres unique index provides.
type SubscriberRepository struct {
	mu   sync.Mutex
	subs map[string]entity.Subscriber
	now  func() time.Time
}

func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{
		subs: make(map[string]entity.Subscriber),
		now:  time.Now,
	}
}

// SetClock overrides the insertion timestamp source. Test hook.
func (r *SubscriberRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *SubscriberRepository) List(ctx context.Context) ([]entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubscribedAt.Equal(out[j].SubscribedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SubscribedAt.After(out[j].SubscribedAt)
	})
	return out, nil
}

func (r *SubscriberRepository) GetByID(ctx context.Context, id string) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *SubscriberRepository) Create(ctx context.Context, s *entity.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(s.Email, "") {
		return repository.ErrDuplicateEmail
	}
	s.ID = uuid.NewString()
	s.SubscribedAt = r.now().UTC()
	r.subs[s.ID] = *s
	return nil
}

func (r *SubscriberRepository) Update(ctx context.Context, s *entity.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.subs[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.emailTakenLocked(s.Email, s.ID) {
		return repository.ErrDuplicateEmail
	}
	cur.Name = s.Name
	cur.Email = s.Email
	r.subs[s.ID] = cur
	s.SubscribedAt = cur.SubscribedAt
	return nil
}

func (r *SubscriberRepository) Delete(ctx context.Context, id string) (*entity.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.subs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.subs, id)
	return &s, nil
}

// emailTakenLocked reports whether email belongs to a live record other
// than excludeID. Caller must hold the mutex.
func (r *SubscriberRepository) emailTakenLocked(email, excludeID string) bool {
	for id, s := range r.subs {
		if id != excludeID && s.Email == email {
			return true
		}
	}
	return false
}

var _ repository.SubscriberRepository = (*SubscriberRepository)(nil)

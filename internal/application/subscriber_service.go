package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/tiendacafe/subscribers-api/internal/domain/entity"
	repo "github.com/tiendacafe/subscribers-api/internal/domain/repository"
	"github.com/tiendacafe/subscribers-api/pkg/helpers"
	"github.com/tiendacafe/subscribers-api/pkg/mailer"
	mailtpl "github.com/tiendacafe/subscribers-api/pkg/mailer/templates"
)

var (
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrEmailTaken         = errors.New("email already subscribed")
)

// ValidationError carries per-field messages for blank required input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+" "+msg)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// EmailEnqueuer publishes email jobs; satisfied by helpers.RabbitPublisher.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

const listCacheKey = "subscribers:list"

// Service owns the subscriber lifecycle: normalization, validation, the
// cached list read path, and the side effects of each mutation (cache
// invalidation, email enqueueing, search indexing). The repository below it
// is the sole authority on email uniqueness.
type Service struct {
	Repo    repo.SubscriberRepository
	Redis   *redis.Client // nil disables the list cache
	ListTTL time.Duration
	Logger  *logrus.Logger
	Pub     EmailEnqueuer // nil disables email jobs
	ES      *elasticsearch.Client
	ESIndex string

	MailEnabled bool
	Branding    mailtpl.Data // Name/Email filled per job
}

func NewService(r repo.SubscriberRepository, rdb *redis.Client, listTTL time.Duration, logger *logrus.Logger, pub EmailEnqueuer, es *elasticsearch.Client, esIndex string, mailEnabled bool, branding mailtpl.Data) *Service {
	if listTTL <= 0 {
		listTTL = 30 * time.Second
	}
	return &Service{
		Repo:        r,
		Redis:       rdb,
		ListTTL:     listTTL,
		Logger:      logger,
		Pub:         pub,
		ES:          es,
		ESIndex:     esIndex,
		MailEnabled: mailEnabled,
		Branding:    branding,
	}
}

// List returns all subscribers, newest first. Reads go through a short-TTL
// Redis cache that every mutation invalidates.
func (s *Service) List(ctx context.Context) ([]entity.Subscriber, error) {
	if s.Redis != nil {
		var cached []entity.Subscriber
		if hit, err := helpers.RedisGetJSON(ctx, s.Redis, listCacheKey, &cached); err == nil && hit {
			return cached, nil
		} else if err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("list cache read failed")
		}
	}

	subs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, listCacheKey, subs, s.ListTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("list cache write failed")
		}
	}
	return subs, nil
}

// Get returns a single subscriber by id. Malformed ids are reported as
// not-found rather than leaking a driver error.
func (s *Service) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrSubscriberNotFound
	}
	sub, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return sub, nil
}

// Create validates and normalizes the input, persists a new subscriber and
// fires the welcome email job plus search indexing as best-effort side
// effects.
func (s *Service) Create(ctx context.Context, name, email string) (*entity.Subscriber, error) {
	name, email, verr := normalizeInput(name, email)
	if verr != nil {
		return nil, verr
	}

	sub := &entity.Subscriber{Name: name, Email: email}
	if err := s.Repo.Create(ctx, sub); err != nil {
		return nil, mapRepoErr(err)
	}

	s.invalidateList(ctx)
	s.enqueueEmail(ctx, sub, mailtpl.Welcome)
	s.indexSubscriber(ctx, sub)
	return sub, nil
}

// Update replaces name/email of an existing subscriber. Re-submitting the
// record's own email is not a collision.
func (s *Service) Update(ctx context.Context, id, name, email string) (*entity.Subscriber, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrSubscriberNotFound
	}
	name, email, verr := normalizeInput(name, email)
	if verr != nil {
		return nil, verr
	}

	sub := &entity.Subscriber{ID: id, Name: name, Email: email}
	if err := s.Repo.Update(ctx, sub); err != nil {
		return nil, mapRepoErr(err)
	}

	s.invalidateList(ctx)
	s.indexSubscriber(ctx, sub)
	return sub, nil
}

// Delete removes a subscriber permanently and returns its prior state.
func (s *Service) Delete(ctx context.Context, id string) (*entity.Subscriber, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrSubscriberNotFound
	}
	sub, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.invalidateList(ctx)
	s.enqueueEmail(ctx, sub, mailtpl.Farewell)
	s.removeFromIndex(ctx, sub.ID)
	return sub, nil
}

// Search performs a multi_match query on name and email via Elasticsearch.
// Returns an empty result when no search backend is configured.
func (s *Service) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func normalizeInput(name, email string) (string, string, *ValidationError) {
	name = entity.NormalizeName(name)
	email = entity.NormalizeEmail(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if email == "" {
		fields["email"] = "is required"
	}
	if len(fields) > 0 {
		return "", "", &ValidationError{Fields: fields}
	}
	return name, email, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrSubscriberNotFound
	case errors.Is(err, repo.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}

func (s *Service) invalidateList(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, listCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("list cache invalidation failed")
	}
}

func (s *Service) enqueueEmail(ctx context.Context, sub *entity.Subscriber, template string) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	data := s.Branding
	data.Name = sub.Name
	data.Email = sub.Email
	job := mailer.EmailJob{
		To:       sub.Email,
		Template: template,
		Data:     mailtpl.ToMap(data),
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"subscriber_id": sub.ID,
			"template":      template,
		}).Warn("failed to enqueue email job")
	}
}

func (s *Service) indexSubscriber(ctx context.Context, sub *entity.Subscriber) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":            sub.ID,
		"name":          sub.Name,
		"email":         sub.Email,
		"subscribed_at": sub.SubscribedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: sub.ID,
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("subscriber_id", sub.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("subscriber_id", sub.ID).Warn("es index response error")
	}
}

func (s *Service) removeFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("subscriber_id", id).Warn("es delete failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 && s.Logger != nil {
		s.Logger.WithField("status", fmt.Sprint(res.StatusCode)).WithField("subscriber_id", id).Warn("es delete response error")
	}
}

// Package redis implements the walkout store and the distributed form
// lock over Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/claritydental/walkout/pkg/domain"
)

// Store implements ports.WalkoutStore using Redis. Each walkout is one
// JSON value; a per-appointment key enforces the one-walkout-per-
// appointment invariant and doubles as the lookup index.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored walkouts. Zero keeps them
// forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "walkout:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + "record:" + id
}

func (s *Store) apptKey(appointmentID string) string {
	return s.prefix + "appointment:" + appointmentID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) indexScore() float64 {
	if s.ttl == 0 {
		return 4102444800 // 2100-01-01, effectively never
	}
	return float64(time.Now().Add(s.ttl).Unix())
}

// Create persists a new walkout. The appointment key is claimed with
// SETNX so two concurrent creates cannot both win.
func (s *Store) Create(ctx context.Context, w *domain.Walkout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal walkout: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, s.apptKey(w.AppointmentID), w.ID, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("claim appointment key: %w", err)
	}
	if !claimed {
		existing, err := s.client.Get(ctx, s.apptKey(w.AppointmentID)).Result()
		if err != nil {
			return fmt.Errorf("read conflicting appointment key: %w", err)
		}
		return &domain.ConflictError{AppointmentID: w.AppointmentID, WalkoutID: existing}
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(w.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.indexScore(), Member: w.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save walkout to redis: %w", err)
	}
	return nil
}

// Update replaces a stored walkout and refreshes its TTL.
func (s *Store) Update(ctx context.Context, w *domain.Walkout) error {
	exists, err := s.client.Exists(ctx, s.key(w.ID)).Result()
	if err != nil {
		return fmt.Errorf("check walkout existence: %w", err)
	}
	if exists == 0 {
		return domain.ErrWalkoutNotFound
	}

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal walkout: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(w.ID), data, s.ttl)
	pipe.Set(ctx, s.apptKey(w.AppointmentID), w.ID, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: s.indexScore(), Member: w.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save walkout to redis: %w", err)
	}
	return nil
}

// Get retrieves a walkout by identity.
func (s *Store) Get(ctx context.Context, id string) (*domain.Walkout, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrWalkoutNotFound
		}
		return nil, fmt.Errorf("get walkout from redis: %w", err)
	}

	var w domain.Walkout
	if err := json.Unmarshal([]byte(val), &w); err != nil {
		return nil, fmt.Errorf("unmarshal walkout: %w", err)
	}
	return &w, nil
}

// GetByAppointment retrieves the walkout attached to an appointment.
func (s *Store) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	id, err := s.client.Get(ctx, s.apptKey(appointmentID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrWalkoutNotFound
		}
		return nil, fmt.Errorf("get appointment index from redis: %w", err)
	}
	return s.Get(ctx, id)
}

// List returns stored walkout identities, lazily pruning entries whose
// TTL has passed from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("prune expired walkouts: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list walkouts: %w", err)
	}
	return ids, nil
}

// Delete removes a walkout and its appointment index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	w, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.Del(ctx, s.apptKey(w.AppointmentID))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err = pipe.Exec(ctx)
	return err
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

const defaultUserTTL = 5 * time.Minute

// CachedUserRepository is a read-through cache in front of another
// UserRepository. Only FindByID is cached; every mutation evicts the key.
// Redis failures behave like a cache miss.
//
// Keys: user:<id> holds the JSON record; user:<id>:version is bumped by
// every mutation. A read that misses watches the version key and only
// stores what it read if no mutation bumped it in the meantime, so a slow
// reader cannot put back a row that was changed while it was reading.
type CachedUserRepository struct {
	next   ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

var _ ports.UserRepository = (*CachedUserRepository)(nil)

// NewCachedUserRepository wraps next. A non-positive ttl uses the default.
func NewCachedUserRepository(next ports.UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = defaultUserTTL
	}
	return &CachedUserRepository{next: next, client: client, ttl: ttl, log: log}
}

type cachedUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"password_hash"`
	RoleID       int        `json:"role_id"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (c *CachedUserRepository) key(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (c *CachedUserRepository) versionKey(id string) string {
	return fmt.Sprintf("user:%s:version", id)
}

func (c *CachedUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := c.get(ctx, id); ok {
		return u, nil
	}

	var (
		user     *domain.User
		storeErr error
	)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		user, storeErr = c.next.FindByID(ctx, id)
		if storeErr != nil {
			return nil
		}
		payload, err := encode(user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), payload, c.ttl)
			return nil
		})
		return err
	}, c.versionKey(id))

	switch {
	case storeErr != nil:
		return nil, storeErr
	case user == nil:
		// WATCH itself failed, so the store was never read.
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache unavailable")
		return c.next.FindByID(ctx, id)
	case errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Str("user_id", id).Msg("user changed during read, not cached")
	case err != nil:
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache write failed")
	}
	return user, nil
}

func (c *CachedUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	return c.next.Create(ctx, user)
}

func (c *CachedUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return c.next.List(ctx)
}

func (c *CachedUserRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	defer c.evict(ctx, id)
	return c.next.Update(ctx, id, patch)
}

func (c *CachedUserRepository) Archive(ctx context.Context, id string) (bool, error) {
	defer c.evict(ctx, id)
	return c.next.Archive(ctx, id)
}

func (c *CachedUserRepository) Restore(ctx context.Context, id string) (*domain.User, error) {
	defer c.evict(ctx, id)
	return c.next.Restore(ctx, id)
}

// Ping reports whether redis is reachable.
func (c *CachedUserRepository) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CachedUserRepository) get(ctx context.Context, id string) (*domain.User, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
		}
		return nil, false
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache entry corrupt")
		return nil, false
	}
	return &domain.User{
		ID:           cu.ID,
		Username:     cu.Username,
		Name:         cu.Name,
		PasswordHash: cu.PasswordHash,
		Role:         domain.Role(cu.RoleID),
		ArchivedAt:   cu.ArchivedAt,
		CreatedAt:    cu.CreatedAt,
		UpdatedAt:    cu.UpdatedAt,
	}, true
}

func encode(u *domain.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		RoleID:       int(u.Role),
		ArchivedAt:   u.ArchivedAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	})
}

// evict runs after the store write: bumping the version first fails any
// read that is about to populate the key, then the key itself goes.
func (c *CachedUserRepository) evict(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(id))
		pipe.Expire(ctx, c.versionKey(id), c.ttl)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache evict failed")
	}
}

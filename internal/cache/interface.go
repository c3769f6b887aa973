package cache

import (
	"context"
	"errors"
	"time"

	"github.com/wizzchat/wizzchat/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// UserCache caches user profiles to keep profile reads off the database.
type UserCache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Delete(ctx context.Context, userIDs ...string) error
	Close() error
}

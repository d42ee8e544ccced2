package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/pkg/errors"
)

const UserLockTTL = 10 * time.Minute

// ErrUserLocked means another maintenance run holds the lock for the same user.
var ErrUserLocked = errors.New("another maintenance run holds the lock for this user")

// UserLock takes lockType:userID in Redis and returns its release func.
// A nil locker means Redis is not configured and locking is skipped.
func UserLock(ctx context.Context, locker *redislock.Client, lockType string, userID string, ttl time.Duration) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	if ttl <= 0 {
		ttl = UserLockTTL
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, userID)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, errors.Wrap(ErrUserLocked, lockKey)
	} else if err != nil {
		return nil, errors.Wrapf(err, "obtain lock %s", lockKey)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}

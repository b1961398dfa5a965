package password

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-user-accounts/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const DefaultCost = 10

// MaxBytes is the longest password bcrypt accepts.
const MaxBytes = 72

const MsgTooLong = "password must be at most 72 bytes"

// Hasher hashes and verifies passwords with bcrypt. At most `concurrency`
// bcrypt operations run at once so hashing cannot starve request handling.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

func NewHasher(cost int, concurrency int64) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(concurrency)}
}

// Hash returns a salted bcrypt digest. Two calls with the same input return different digests.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.WrapError(domain.ErrValidation, MsgTooLong, err)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a
// mismatch; an error means the comparison never ran.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil, nil
}

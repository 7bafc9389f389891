package security

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// DefaultBcryptCost matches the work factor used since the first release.
const DefaultBcryptCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var errPasswordTooLong = domain.NewError(domain.KindInvalidInput, "password must be at most 72 bytes")

// Runner executes fn somewhere and waits for it. queue.Pool satisfies it.
type Runner interface {
	Run(ctx context.Context, fn func()) error
}

// BcryptHasher hashes and verifies passwords with bcrypt. When a Runner is
// set, the bcrypt work is executed on it instead of the calling goroutine.
type BcryptHasher struct {
	cost   int
	runner Runner
}

// NewBcryptHasher returns a hasher with the given cost. Out-of-range costs fall
// back to DefaultBcryptCost. runner may be nil.
func NewBcryptHasher(cost int, runner Runner) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost, runner: runner}
}

// Hash returns the bcrypt digest of plaintext with a random salt. Inputs longer
// than MaxPasswordBytes are rejected as invalid input.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", errPasswordTooLong
	}
	var (
		digest []byte
		err    error
	)
	if runErr := h.run(ctx, func() {
		digest, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); runErr != nil {
		return "", domain.WrapError(domain.KindHashing, "password hashing failed", runErr)
	}
	if err != nil {
		return "", domain.WrapError(domain.KindHashing, "password hashing failed", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A plain mismatch is not an
// error; a digest bcrypt cannot parse is.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	var err error
	if runErr := h.run(ctx, func() {
		err = bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	}); runErr != nil {
		return false, domain.WrapError(domain.KindHashing, "password verification failed", runErr)
	}

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, domain.WrapError(domain.KindHashing, "password verification failed", err)
	}
}

func (h *BcryptHasher) run(ctx context.Context, fn func()) error {
	if h.runner == nil {
		fn()
		return nil
	}
	return h.runner.Run(ctx, fn)
}

package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

type recordingRunner struct {
	calls int
	err   error
}

func (r *recordingRunner) Run(_ context.Context, fn func()) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	fn()
	return nil
}

func TestBcryptHasher_HashThenVerify(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	digest, err := h.Hash(context.Background(), "s3cret-pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if digest == "s3cret-pass" {
		t.Fatalf("expected digest to differ from plaintext")
	}

	ok, err := h.Verify(context.Background(), "s3cret-pass", digest)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	for _, wrong := range []string{"", "s3cret-pas", "S3cret-pass", "s3cret-pass "} {
		ok, err := h.Verify(context.Background(), wrong, digest)
		if err != nil {
			t.Fatalf("mismatch must not error, got %v", err)
		}
		if ok {
			t.Fatalf("expected %q not to match", wrong)
		}
	}
}

func TestBcryptHasher_SaltIsRandom(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	a, _ := h.Hash(context.Background(), "same")
	b, _ := h.Hash(context.Background(), "same")
	if a == b {
		t.Fatalf("expected different digests for the same plaintext")
	}
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, nil)

	_, err := h.Verify(context.Background(), "pass", "not-a-bcrypt-digest")
	if !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("expected hashing error, got %v", err)
	}
}

func TestBcryptHasher_CostFallback(t *testing.T) {
	if h := NewBcryptHasher(0, nil); h.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost+1, nil); h.cost != DefaultBcryptCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}

func TestBcryptHasher_UsesRunner(t *testing.T) {
	r := &recordingRunner{}
	h := NewBcryptHasher(bcrypt.MinCost, r)

	digest, err := h.Hash(context.Background(), "pass")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if _, err := h.Verify(context.Background(), "pass", digest); err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if r.calls != 2 {
		t.Fatalf("expected 2 runner calls, got %d", r.calls)
	}
}

func TestBcryptHasher_RunnerFailureIsHashingError(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost, &recordingRunner{err: context.Canceled})

	digest, err := h.Hash(context.Background(), "pass")
	if !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("expected hashing error from Hash, got %v", err)
	}
	if digest != "" {
		t.Fatalf("expected no digest on failure, got %q", digest)
	}
	if _, err := h.Verify(context.Background(), "pass", "x"); !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("expected hashing error from Verify, got %v", err)
	}
}

func TestBcryptHasher_RejectsOverlongPassword(t *testing.T) {
	r := &recordingRunner{}
	h := NewBcryptHasher(bcrypt.MinCost, r)

	_, err := h.Hash(context.Background(), strings.Repeat("a", MaxPasswordBytes+1))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if r.calls != 0 {
		t.Fatalf("expected no bcrypt work for rejected input, got %d runner calls", r.calls)
	}

	if _, err := h.Hash(context.Background(), strings.Repeat("a", MaxPasswordBytes)); err != nil {
		t.Fatalf("expected %d-byte password to hash, got %v", MaxPasswordBytes, err)
	}
}

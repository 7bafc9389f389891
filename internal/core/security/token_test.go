package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	in := domain.Principal{ID: "42", Email: "alice@example.com", Role: domain.RoleAdmin}

	token, expiresAt, err := svc.Issue(in)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if time.Until(expiresAt) <= 0 || time.Until(expiresAt) > time.Hour {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	out, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if out != in {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestTokenService_EmbedsRegisteredClaims(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewTokenService("secret", 24*time.Hour, WithClock(func() time.Time { return fixed }))

	token, _, err := svc.Issue(domain.Principal{ID: "7", Email: "x@example.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.Subject != "7" || claims.Issuer != DefaultIssuer || claims.ID == "" {
		t.Fatalf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
	if !claims.IssuedAt.Time.Equal(fixed) || !claims.ExpiresAt.Time.Equal(fixed.Add(24*time.Hour)) {
		t.Fatalf("unexpected timestamps: iat=%v exp=%v", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestTokenService_RejectsExpired(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	issuer := NewTokenService("secret", time.Hour, WithClock(func() time.Time { return past }))
	verifier := NewTokenService("secret", time.Hour)

	token, _, err := issuer.Issue(domain.Principal{ID: "1", Email: "a@example.com", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expiry cause, got %v", err)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, _, _ := NewTokenService("secret-a", time.Hour).Issue(domain.Principal{ID: "1", Role: domain.RoleUser})

	if _, err := NewTokenService("secret-b", time.Hour).Verify(token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenService_RejectsTamperedPayload(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	userToken, _, _ := svc.Issue(domain.Principal{ID: "1", Role: domain.RoleUser})
	adminToken, _, _ := svc.Issue(domain.Principal{ID: "1", Role: domain.RoleAdmin})

	parts := strings.Split(userToken, ".")
	adminParts := strings.Split(adminToken, ".")
	forged := parts[0] + "." + adminParts[1] + "." + parts[2]

	if _, err := svc.Verify(forged); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for spliced payload, got %v", err)
	}
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for alg=none, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID: "1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, _ = hs512.SignedString([]byte("secret"))
	if _, err := svc.Verify(signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected invalid token for HS512, got %v", err)
	}
}

func TestTokenService_RejectsMalformedClaims(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	cases := map[string]*Claims{
		"missing exp": {UserID: "1", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer}},
		"unknown role": {UserID: "1", Role: "root", RegisteredClaims: jwt.RegisteredClaims{
			Issuer: DefaultIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}},
		"empty id": {Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: DefaultIssuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}},
		"foreign issuer": {UserID: "1", Role: domain.RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "someone-else", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
			if err != nil {
				t.Fatalf("sign error: %v", err)
			}
			p, err := svc.Verify(signed)
			if !errors.Is(err, domain.ErrInvalidToken) {
				t.Fatalf("expected invalid token, got %v", err)
			}
			if p != (domain.Principal{}) {
				t.Fatalf("expected zero principal on failure, got %+v", p)
			}
		})
	}
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(tok); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected invalid token for %q, got %v", tok, err)
		}
	}
}

func TestTokenService_DefaultTTL(t *testing.T) {
	if svc := NewTokenService("secret", 0); svc.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", svc.TTL())
	}
}

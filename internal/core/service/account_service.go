package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
	"github.com/omar-arnous/acquisitions/internal/core/policy"
	"github.com/omar-arnous/acquisitions/internal/core/ports"
)

// AccountService implements sign-up, sign-in and the user CRUD operations.
// Every mutation is authorized by policy.Decide before persistence is touched.
type AccountService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	log      zerolog.Logger
	now      func() time.Time
}

// NewAccountService wires the service. throttle may be nil.
func NewAccountService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.AccountService = (*AccountService)(nil)

// Register creates an account and signs the new user in.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "name, email and password are required")
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, domain.NewError(domain.KindInvalidInput, "unknown role")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		if domain.KindOf(err) == domain.KindHashing {
			s.log.Error().Err(err).Str("email", email).Msg("password hashing failed")
		}
		return nil, err
	}

	now := s.now()
	created, err := s.repo.Insert(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issue(created)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Str("role", string(created.Role)).Msg("user created")
	return result, nil
}

// Login verifies the credentials and issues a token for the matching user.
func (s *AccountService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewError(domain.KindInvalidInput, "email and password are required")
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login throttle check failed, continuing")
		} else if !allowed {
			s.log.Warn().Str("email", email).Msg("login throttled")
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password verification failed")
		return nil, err
	}
	if !ok {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login throttle")
		}
	}

	result, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user authenticated")
	return result, nil
}

// ListUsers returns every account. Admin only.
func (s *AccountService) ListUsers(ctx context.Context, principal domain.Principal) ([]*domain.User, error) {
	if err := s.authorize(principal, policy.ViewAny(), ""); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// GetUser returns the public record of any user.
func (s *AccountService) GetUser(ctx context.Context, principal domain.Principal, id string) (*domain.User, error) {
	if err := s.authorize(principal, policy.ViewOne(), id); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile applies a partial update to the user identified by id.
func (s *AccountService) UpdateProfile(ctx context.Context, principal domain.Principal, id string, in domain.UpdateUserInput) (*domain.User, error) {
	if in.Empty() {
		return nil, domain.NewError(domain.KindInvalidInput, "no fields to update")
	}
	if err := s.authorize(principal, policy.Update(in.Fields()...), id); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := domain.UserChanges{UpdatedAt: s.now()}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewError(domain.KindInvalidInput, "name must not be empty")
		}
		changes.Name = &name
	}

	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return nil, domain.NewError(domain.KindInvalidInput, "email must not be empty")
		}
		if email != existing.Email {
			owner, err := s.repo.FindByEmail(ctx, email)
			switch {
			case err == nil && owner.ID != existing.ID:
				return nil, domain.ErrUserExists
			case err != nil && !errors.Is(err, domain.ErrUserNotFound):
				return nil, err
			}
		}
		changes.Email = &email
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.NewError(domain.KindInvalidInput, "unknown role")
		}
		role := *in.Role
		changes.Role = &role
	}

	if in.Password != nil {
		if *in.Password == "" {
			return nil, domain.NewError(domain.KindInvalidInput, "password must not be empty")
		}
		hash, err := s.hasher.Hash(ctx, *in.Password)
		if err != nil {
			if domain.KindOf(err) == domain.KindHashing {
				s.log.Error().Err(err).Str("user_id", id).Msg("password hashing failed")
			}
			return nil, err
		}
		changes.PasswordHash = &hash
	}

	updated, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Str("by", principal.Email).Strs("fields", in.Fields()).Msg("user updated")
	return updated.Public(), nil
}

// DeleteAccount removes the user identified by id and returns its public record.
func (s *AccountService) DeleteAccount(ctx context.Context, principal domain.Principal, id string) (*domain.User, error) {
	if err := s.authorize(principal, policy.Delete(), id); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Str("email", deleted.Email).Str("by", principal.Email).Msg("user deleted")
	return deleted.Public(), nil
}

func (s *AccountService) authorize(principal domain.Principal, action policy.Action, targetID string) error {
	decision := policy.Decide(principal, action, targetID)
	if !decision.Allowed {
		s.log.Debug().
			Str("principal", principal.ID).
			Str("action", action.Kind.String()).
			Str("target", targetID).
			Str("reason", decision.Reason).
			Msg("policy denied")
	}
	return decision.Err()
}

func (s *AccountService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.Principal())
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("token issuance failed")
		return nil, err
	}
	return &ports.AuthResult{User: user.Public(), Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
	}
}

package domain

import (
	"strings"
	"time"
)

// Role is the access level carried by a user and by every token issued for it.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User models an account record owned by the persistence layer.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns a copy of u without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// Principal returns the identity snapshot embedded in tokens issued for u.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}

// Updatable field names, as reported by UpdateUserInput.Fields.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

// UpdateUserInput is a partial update submitted by a caller. Nil fields are left
// untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}

// Fields lists the names of the fields present in the update.
func (in UpdateUserInput) Fields() []string {
	fields := make([]string, 0, 4)
	if in.Name != nil {
		fields = append(fields, FieldName)
	}
	if in.Email != nil {
		fields = append(fields, FieldEmail)
	}
	if in.Password != nil {
		fields = append(fields, FieldPassword)
	}
	if in.Role != nil {
		fields = append(fields, FieldRole)
	}
	return fields
}

// Empty reports whether the update carries no fields at all.
func (in UpdateUserInput) Empty() bool {
	return len(in.Fields()) == 0
}

// UserChanges is the patch handed to the repository once an update has been
// authorized: the password is already hashed and UpdatedAt is stamped.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	UpdatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

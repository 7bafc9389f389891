// Package policy decides who may read, modify or delete which user records.
//
// Decide is a pure function of its arguments: it performs no I/O and reads no
// clock, so the same principal, action and target always produce the same
// Decision.
package policy

import (
	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// ActionKind enumerates the operations the policy knows about.
type ActionKind int

const (
	ActionViewAny ActionKind = iota
	ActionViewOne
	ActionUpdate
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionViewAny:
		return "view_any"
	case ActionViewOne:
		return "view_one"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is a requested operation. Fields is only meaningful for updates.
type Action struct {
	Kind   ActionKind
	Fields []string
}

func ViewAny() Action { return Action{Kind: ActionViewAny} }
func ViewOne() Action { return Action{Kind: ActionViewOne} }
func Delete() Action  { return Action{Kind: ActionDelete} }

// Update describes a modification touching the named fields.
func Update(fields ...string) Action {
	return Action{Kind: ActionUpdate, Fields: fields}
}

func (a Action) touches(field string) bool {
	for _, f := range a.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Deny reasons.
const (
	ReasonAdminRequired   = "admin access required"
	ReasonUpdateOwnOnly   = "can only update own profile"
	ReasonRoleChangeAdmin = "only administrators can change roles"
	ReasonDeleteOwnOnly   = "can only delete own profile"
	ReasonAdminSelfDelete = "administrators cannot delete their own account"
	ReasonUnknownAction   = "unknown action"
)

// Decision is the outcome of evaluating an action.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err returns nil for an Allow and a forbidden error carrying the reason
// otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.NewError(domain.KindForbidden, d.Reason)
}

// Decide evaluates action by principal against the user identified by
// targetID. Rules are checked in order and the first deny wins.
func Decide(principal domain.Principal, action Action, targetID string) Decision {
	self := principal.Is(targetID)
	admin := principal.IsAdmin()

	switch action.Kind {
	case ActionViewAny:
		if !admin {
			return deny(ReasonAdminRequired)
		}
		return allow

	case ActionViewOne:
		return allow

	case ActionUpdate:
		if !self && !admin {
			return deny(ReasonUpdateOwnOnly)
		}
		// Checked separately from ownership: self-updates do not grant role changes.
		if action.touches(domain.FieldRole) && !admin {
			return deny(ReasonRoleChangeAdmin)
		}
		return allow

	case ActionDelete:
		if !self && !admin {
			return deny(ReasonDeleteOwnOnly)
		}
		if self && admin {
			return deny(ReasonAdminSelfDelete)
		}
		return allow
	}

	return deny(ReasonUnknownAction)
}

// RequireRole guards routes restricted to a single role. A nil principal means
// the caller never authenticated and is reported as unauthorized; a principal
// with another role is forbidden.
func RequireRole(principal *domain.Principal, role domain.Role) error {
	if principal == nil {
		return domain.NewError(domain.KindUnauthorized, "authentication required")
	}
	if principal.Role != role {
		if role == domain.RoleAdmin {
			return domain.NewError(domain.KindForbidden, ReasonAdminRequired)
		}
		return domain.NewError(domain.KindForbidden, "insufficient role")
	}
	return nil
}

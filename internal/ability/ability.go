package ability

import (
	"errors"
	"fmt"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

type Action string

const (
	Manage Action = "manage"
	Create Action = "create"
	Read   Action = "read"
	Update Action = "update"
	Delete Action = "delete"
)

type Kind string

const (
	KindAll     Kind = "all"
	KindUser    Kind = "user"
	KindBlog    Kind = "blog"
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindDevice  Kind = "device"
)

// Resource is the subject of a check. OwnerID is the user the resource belongs to;
// for a user resource it is the user's own id.
type Resource struct {
	Kind    Kind
	OwnerID string
}

// Decision is the tagged outcome of Can.
type Decision struct {
	Allowed bool
	Reason  string
}

// ForbiddenError is returned by Authorize when a rule denies the action.
type ForbiddenError struct {
	Action Action
	Kind   Kind
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s %s: %s", e.Action, e.Kind, e.Reason)
	}
	return fmt.Sprintf("cannot %s %s", e.Action, e.Kind)
}

type rule struct {
	action   Action
	kind     Kind
	owned    bool
	inverted bool
	reason   string
}

func (r rule) matches(subject string, action Action, res Resource) bool {
	if r.action != Manage && r.action != action {
		return false
	}
	if r.kind != KindAll && r.kind != res.Kind {
		return false
	}
	if r.owned && (subject == "" || res.OwnerID != subject) {
		return false
	}
	return true
}

// Abilities is the rule set of one subject. Later rules take precedence over earlier ones;
// with no matching rule the action is denied.
type Abilities struct {
	subject string
	rules   []rule
}

func (a *Abilities) can(action Action, kind Kind) {
	a.rules = append(a.rules, rule{action: action, kind: kind})
}

func (a *Abilities) canOwn(action Action, kind Kind) {
	a.rules = append(a.rules, rule{action: action, kind: kind, owned: true})
}

func (a *Abilities) cannot(action Action, kind Kind, reason string) {
	a.rules = append(a.rules, rule{action: action, kind: kind, inverted: true, reason: reason})
}

func (a *Abilities) Can(action Action, res Resource) Decision {
	for i := len(a.rules) - 1; i >= 0; i-- {
		r := a.rules[i]
		if !r.matches(a.subject, action, res) {
			continue
		}
		if r.inverted {
			return Decision{Allowed: false, Reason: r.reason}
		}
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: "no rule grants this action"}
}

// Authorize converts a denied decision into a *ForbiddenError.
func (a *Abilities) Authorize(action Action, res Resource) error {
	d := a.Can(action, res)
	if d.Allowed {
		return nil
	}
	return &ForbiddenError{Action: action, Kind: res.Kind, Reason: d.Reason}
}

// ForUser builds the rule set of an authenticated user. It is derived on every call and
// never cached, so role or ban changes apply immediately.
func ForUser(u models.CurrentUser) *Abilities {
	a := &Abilities{subject: u.ID}

	if u.Role == models.RoleSuperAdmin {
		a.can(Manage, KindAll)
		return a
	}

	a.can(Read, KindAll)
	a.can(Create, KindBlog)
	a.can(Create, KindPost)
	a.can(Create, KindComment)
	a.canOwn(Update, KindAll)
	a.canOwn(Delete, KindAll)

	if u.IsBanned {
		a.cannot(Create, KindAll, "user is banned")
		a.cannot(Update, KindAll, "user is banned")
		a.cannot(Delete, KindAll, "user is banned")
	}
	return a
}

// ForUserID builds an identity-only rule set: the subject may act on what it owns.
func ForUserID(id string) *Abilities {
	a := &Abilities{subject: id}
	a.can(Read, KindAll)
	a.canOwn(Update, KindAll)
	a.canOwn(Delete, KindAll)
	return a
}

// Classify maps a denied check to apperrors.Forbidden and anything else to an internal error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var forbidden *ForbiddenError
	if errors.As(err, &forbidden) {
		return apperrors.Forbidden(forbidden.Error(), err)
	}
	return apperrors.Classify(err)
}

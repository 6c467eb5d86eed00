// Package access decides what a caller may do.
// Roles come from the gateway; every check goes through Role.Can so a new
// role is one entry in the grants table.
package access

import (
	"strings"
)

// Role is a platform role name.
type Role string

const (
	RoleResearcher Role = "RESEARCHER"
	RoleReviewer   Role = "REVIEWER"
	RoleEditor     Role = "EDITOR"
	RoleAdmin      Role = "ADMIN"
	// RoleService is held by internal callers such as the paper workflow.
	RoleService Role = "SERVICE"
)

// Capability is one guarded operation class.
type Capability int

const (
	// CapViewOwn: read one's own points, history, standing and achievements.
	CapViewOwn Capability = iota + 1
	// CapCreditPoints: credit points to any user.
	CapCreditPoints
	// CapRecomputeScores: recompute researcher profiles.
	CapRecomputeScores
	// CapInspectLedgers: read any user's ledger.
	CapInspectLedgers
)

func (c Capability) String() string {
	switch c {
	case CapViewOwn:
		return "view_own"
	case CapCreditPoints:
		return "credit_points"
	case CapRecomputeScores:
		return "recompute_scores"
	case CapInspectLedgers:
		return "inspect_ledgers"
	}
	return "unknown"
}

var grants = map[Role][]Capability{
	RoleResearcher: {CapViewOwn},
	RoleReviewer:   {CapViewOwn},
	RoleEditor:     {CapViewOwn, CapRecomputeScores},
	RoleAdmin:      {CapViewOwn, CapCreditPoints, CapRecomputeScores, CapInspectLedgers},
	RoleService:    {CapViewOwn, CapCreditPoints, CapRecomputeScores},
}

// ParseRole maps a header value to a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := grants[r]
	return r, ok
}

// ParseRoles splits a comma separated role list. Unknown names are dropped.
func ParseRoles(csv string) []Role {
	var roles []Role
	for _, part := range strings.Split(csv, ",") {
		if r, ok := ParseRole(part); ok {
			roles = append(roles, r)
		}
	}
	return roles
}

// Can reports whether r grants c.
func (r Role) Can(c Capability) bool {
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller of one request.
type Principal struct {
	UserID string
	Roles  []Role
}

// Authenticated reports whether the gateway supplied a user id.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// Can reports whether any of the principal's roles grants c.
func (p Principal) Can(c Capability) bool {
	for _, r := range p.Roles {
		if r.Can(c) {
			return true
		}
	}
	return false
}

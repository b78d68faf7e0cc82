// Package policy decides which rows an actor may read, change or delete.
// Every function is pure: callers load the row first and pass its
// ownership fields in.
package policy

import "github.com/yukikurage/workforce-api/internal/models"

// Deny reasons
const (
	ReasonAccessDenied   = "access denied"
	ReasonReassignDenied = "only privileged roles can assign tasks to other users"
	ReasonDeleteDenied   = "only the task creator can delete this task"
	ReasonNotTeamManager = "only team managers can perform this action"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allow = Decision{Allowed: true}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// CanAccess allows privileged roles, and otherwise only the owner or the
// assignee of the resource.
func CanAccess(actorID uint64, role models.UserRole, ownerID uint64, assigneeID *uint64) Decision {
	if role.Privileged() {
		return allow
	}
	if actorID == ownerID {
		return allow
	}
	if assigneeID != nil && *assigneeID == actorID {
		return allow
	}
	return deny(ReasonAccessDenied)
}

// CanReassign gates changes to a task's assignee. Non-privileged actors may
// only assign the task to themselves; leaving the assignee unchanged is
// always allowed.
func CanReassign(actorID uint64, role models.UserRole, current, next *uint64) Decision {
	if role.Privileged() {
		return allow
	}
	if sameAssignee(current, next) {
		return allow
	}
	if next != nil && *next == actorID {
		return allow
	}
	return deny(ReasonReassignDenied)
}

// CanDelete is narrower than CanAccess: the assignee alone may not delete.
func CanDelete(actorID uint64, role models.UserRole, ownerID uint64) Decision {
	if role.Privileged() || actorID == ownerID {
		return allow
	}
	return deny(ReasonDeleteDenied)
}

// CanManageTeam allows admins and the team's managers.
func CanManageTeam(role models.UserRole, member *models.TeamMember) Decision {
	if role == models.RoleAdmin {
		return allow
	}
	if member != nil && member.Role == models.TeamRoleManager {
		return allow
	}
	return deny(ReasonNotTeamManager)
}

// RowFilter returns the ownership restriction to apply to list queries:
// nil for privileged roles, the actor id otherwise.
func RowFilter(actorID uint64, role models.UserRole) *uint64 {
	if role.Privileged() {
		return nil
	}
	id := actorID
	return &id
}

func sameAssignee(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

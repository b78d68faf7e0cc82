package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/workforce-api/internal/models"
)

func ptr(v uint64) *uint64 { return &v }

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name     string
		actor    uint64
		role     models.UserRole
		owner    uint64
		assignee *uint64
		allowed  bool
	}{
		{"admin bypasses", 9, models.RoleAdmin, 1, nil, true},
		{"manager bypasses", 9, models.RoleManager, 1, ptr(2), true},
		{"owner", 1, models.RoleEmployee, 1, nil, true},
		{"assignee", 2, models.RoleEmployee, 1, ptr(2), true},
		{"stranger", 3, models.RoleEmployee, 1, ptr(2), false},
		{"stranger unassigned", 3, models.RoleEmployee, 1, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanAccess(tt.actor, tt.role, tt.owner, tt.assignee)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.Equal(t, ReasonAccessDenied, d.Reason)
			}
		})
	}
}

func TestCanReassign(t *testing.T) {
	tests := []struct {
		name    string
		actor   uint64
		role    models.UserRole
		current *uint64
		next    *uint64
		allowed bool
	}{
		{"manager to anyone", 5, models.RoleManager, ptr(1), ptr(2), true},
		{"employee to self", 1, models.RoleEmployee, nil, ptr(1), true},
		{"employee unchanged third party", 1, models.RoleEmployee, ptr(2), ptr(2), true},
		{"employee unchanged nil", 1, models.RoleEmployee, nil, nil, true},
		{"employee to third party", 1, models.RoleEmployee, nil, ptr(2), false},
		{"employee away from self", 1, models.RoleEmployee, ptr(1), ptr(2), false},
		{"employee clears own assignment", 1, models.RoleEmployee, ptr(1), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanReassign(tt.actor, tt.role, tt.current, tt.next).Allowed)
		})
	}
}

func TestCanDelete(t *testing.T) {
	assert.True(t, CanDelete(1, models.RoleEmployee, 1).Allowed)
	assert.True(t, CanDelete(2, models.RoleAdmin, 1).Allowed)
	assert.True(t, CanDelete(2, models.RoleManager, 1).Allowed)

	d := CanDelete(2, models.RoleEmployee, 1)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonDeleteDenied, d.Reason)
}

func TestCanManageTeam(t *testing.T) {
	assert.True(t, CanManageTeam(models.RoleAdmin, nil).Allowed)
	assert.True(t, CanManageTeam(models.RoleEmployee, &models.TeamMember{Role: models.TeamRoleManager}).Allowed)
	assert.False(t, CanManageTeam(models.RoleManager, &models.TeamMember{Role: models.TeamRoleMember}).Allowed)
	assert.False(t, CanManageTeam(models.RoleEmployee, nil).Allowed)
}

func TestRowFilter(t *testing.T) {
	assert.Nil(t, RowFilter(1, models.RoleAdmin))
	assert.Nil(t, RowFilter(1, models.RoleManager))
	if got := RowFilter(7, models.RoleEmployee); assert.NotNil(t, got) {
		assert.Equal(t, uint64(7), *got)
	}
}

package policy

import (
	"testing"

	"github.com/pharmalog/elogbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAllows_CountersignEntry(t *testing.T) {
	assert.True(t, Allows(models.RoleQA, OpCountersignEntry))
	assert.True(t, Allows(models.RoleAdmin, OpCountersignEntry))
	assert.False(t, Allows(models.RoleOperator, OpCountersignEntry))
	assert.False(t, Allows(models.RoleSupervisor, OpCountersignEntry))
	assert.False(t, Allows(models.RoleEngineer, OpCountersignEntry))
}

func TestAllows_ViewAuditTrail(t *testing.T) {
	assert.True(t, Allows(models.RoleAdmin, OpViewAuditTrail))
	assert.True(t, Allows(models.RoleQA, OpViewAuditTrail))
	assert.True(t, Allows(models.RoleSupervisor, OpViewAuditTrail))
	assert.False(t, Allows(models.RoleOperator, OpViewAuditTrail))
	assert.False(t, Allows(models.RoleEngineer, OpViewAuditTrail))
}

func TestAllows_ManageUsers(t *testing.T) {
	assert.True(t, Allows(models.RoleAdmin, OpManageUsers))
	assert.False(t, Allows(models.RoleQA, OpManageUsers))
	assert.False(t, Allows(models.RoleSupervisor, OpManageUsers))
}

func TestAllows_ManageEquipment(t *testing.T) {
	assert.True(t, Allows(models.RoleAdmin, OpManageEquipment))
	assert.True(t, Allows(models.RoleEngineer, OpManageEquipment))
	assert.False(t, Allows(models.RoleQA, OpManageEquipment))
	assert.False(t, Allows(models.RoleOperator, OpManageEquipment))
	assert.False(t, Allows(models.RoleSupervisor, OpManageEquipment))
}

func TestAllows_UnknownRoleFailsClosed(t *testing.T) {
	assert.False(t, Allows(models.Role("SuperUser"), OpCountersignEntry))
	assert.False(t, Allows(models.Role(""), OpViewAuditTrail))
	assert.False(t, Allows(models.Role("admin"), OpManageUsers)) // case matters
}

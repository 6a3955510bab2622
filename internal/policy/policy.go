// Package policy defines the role-based access rules as a total function over
// the closed role and operation enumerations. Handlers and middleware consult
// it instead of comparing role strings inline.
package policy

import (
	"github.com/pharmalog/elogbook-api/internal/models"
)

// Operation identifies a permission-gated action.
type Operation int

const (
	// OpViewAuditTrail gates reading (and exporting) the audit trail.
	OpViewAuditTrail Operation = iota
	// OpManageUsers gates creating, updating and deactivating accounts.
	OpManageUsers
	// OpListUsers gates listing all accounts.
	OpListUsers
	// OpCountersignEntry gates approving and rejecting submitted log entries.
	// The dual-control check (actor != author) is separate and identity-based.
	OpCountersignEntry
	// OpManageEquipment gates creating, updating and deleting equipment.
	OpManageEquipment
)

// Allows reports whether the given role may perform the operation. Operations
// not listed here are open to any authenticated, active user.
func Allows(role models.Role, op Operation) bool {
	switch op {
	case OpViewAuditTrail:
		return role == models.RoleAdmin || role == models.RoleQA || role == models.RoleSupervisor
	case OpManageUsers:
		return role == models.RoleAdmin
	case OpListUsers:
		return role == models.RoleAdmin || role == models.RoleQA
	case OpCountersignEntry:
		return role == models.RoleAdmin || role == models.RoleQA
	case OpManageEquipment:
		return role == models.RoleAdmin || role == models.RoleEngineer
	}
	return false
}

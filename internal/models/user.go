package models

import (
	"time"
)

// Role is the closed set of user roles. Role gates switch over this type so
// an unknown role can never satisfy a permission check.
type Role string

const (
	RoleOperator   Role = "Operator"
	RoleSupervisor Role = "Supervisor"
	RoleQA         Role = "QA"
	RoleEngineer   Role = "Engineer"
	RoleAdmin      Role = "Admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleSupervisor, RoleQA, RoleEngineer, RoleAdmin:
		return true
	}
	return false
}

// User represents an operator account in the system
type User struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"uniqueIndex;not null" json:"username"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	FullName          string     `gorm:"not null" json:"full_name"`
	Email             *string    `json:"email"`
	Role              Role       `gorm:"type:varchar(20);not null;default:Operator" json:"role"`
	Department        *string    `json:"department"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	DeactivatedAt     *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin returns true if user has the Admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanSign returns true if the user may countersign log entries
func (u *User) CanSign() bool {
	return u.Role == RoleQA || u.Role == RoleAdmin
}

// UserResponse is the JSON response format for users. The password hash is
// never serialized.
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Email      *string   `json:"email"`
	Role       Role      `json:"role"`
	Department *string   `json:"department"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// RefreshToken represents a rotating session refresh token
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`

	// Associations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired returns true if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	if r.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}

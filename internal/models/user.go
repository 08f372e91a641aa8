package models

import (
	"time"
)

// User represents an applicant or staff member. Identity is issued externally;
// the API only stores the token subject and trusts the role claim at request time.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Subject   string    `gorm:"uniqueIndex;not null" json:"subject"`
	Email     string    `gorm:"not null" json:"email"`
	Role      string    `gorm:"default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Applications []Application `gorm:"foreignKey:UserID" json:"applications,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

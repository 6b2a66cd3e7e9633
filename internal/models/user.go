package models

import "time"

const (
	// RoleStudent identifies learners.
	RoleStudent = "student"
	// RoleProfessor identifies teaching staff.
	RoleProfessor = "professor"
)

// User is the read-only projection of an identity-provider account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

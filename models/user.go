package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleOwner    UserRole = "owner"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleOwner
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Requester is the authenticated caller of an operation.
type Requester struct {
	ID   uint
	Role UserRole
}

func (r Requester) IsCustomer() bool { return r.Role == RoleCustomer }
func (r Requester) IsOwner() bool    { return r.Role == RoleOwner }

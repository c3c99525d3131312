package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Password     string    `gorm:"not null" json:"-"`
	IsClient     bool      `gorm:"default:false" json:"is_client"`
	IsFreelancer bool      `gorm:"default:false" json:"is_freelancer"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	IsVerified   bool      `gorm:"default:false" json:"is_verified"`
	TokenVersion int       `gorm:"default:1" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role returns the primary role used for token permissions.
func (u *User) Role() string {
	switch {
	case u.IsStaff:
		return RoleStaff
	case u.IsClient:
		return RoleClient
	case u.IsFreelancer:
		return RoleFreelancer
	default:
		return RoleUser
	}
}

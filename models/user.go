package models

import "time"

// User exists only to anchor the opaque principal: the JWT middleware hands
// workflows a user id, and seed-admin bootstraps the first account.
type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:30;default:'staff'" json:"role"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

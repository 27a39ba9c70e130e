package model

import "time"

// User owns posts, comments, and follow edges.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(254)"`
	PasswordHash string `gorm:"type:varchar(128)"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }

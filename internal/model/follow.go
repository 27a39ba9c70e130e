package model

import "time"

// Follow is a directed edge: UserID follows AuthorID.
// idx_follow_pair = (user_id, author_id), unique — duplicate follows
// cannot exist even under concurrent inserts.
type Follow struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index:idx_follow_user;index:idx_follow_pair,unique;not null"`
	User      User `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint `gorm:"index:idx_follow_author;index:idx_follow_pair,unique;not null"`
	Author    User `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }

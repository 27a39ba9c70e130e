package model

import "time"

// Comment hangs off a post. Both FKs cascade: deleting the post or the
// comment author removes the comment.
type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    uint   `gorm:"index:idx_comment_post;not null"`
	Post      Post   `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint   `gorm:"not null"`
	Author    User   `gorm:"constraint:OnDelete:CASCADE"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

package model

import "time"

// Post is the content unit. Deleting the author deletes the post;
// deleting the group only detaches it (group_id goes NULL).
type Post struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"type:text;not null"`
	AuthorID  uint   `gorm:"index:idx_post_author;not null"`
	Author    User   `gorm:"constraint:OnDelete:CASCADE"`
	GroupID   *uint  `gorm:"index:idx_post_group"`
	Group     *Group `gorm:"constraint:OnDelete:SET NULL"`
	Image     string `gorm:"type:varchar(255)"` // stored-file reference, empty when absent
	CreatedAt time.Time
}

func (Post) TableName() string { return "posts" }

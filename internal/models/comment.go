package models

import (
	"database/sql"
	"time"
)

// Comment represents a comment on a post. ParentID is null for top-level
// comments; replies carry the parent comment's id. Depth is unbounded.
type Comment struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID  int64         `gorm:"not null;column:author_id"`
	PostID    int64         `gorm:"not null;index:comments_ix_post;column:post_id"`
	ParentID  sql.NullInt64 `gorm:"column:parent_id"`
	Body      string        `gorm:"type:text;not null;column:body"`
	UpCount   int64         `gorm:"not null;default:0;column:up_count"`
	DownCount int64         `gorm:"not null;default:0;column:down_count"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`

	// Relationships
	Author *User    `gorm:"foreignKey:AuthorID;references:ID"`
	Post   *Post    `gorm:"foreignKey:PostID;references:ID"`
	Parent *Comment `gorm:"foreignKey:ParentID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// Score returns net votes
func (c *Comment) Score() int64 {
	return c.UpCount - c.DownCount
}

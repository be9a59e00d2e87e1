package models

import (
	"time"
)

// Post represents a submission to a community.
//
// UpCount, DownCount, HotScore and CommentCount are derived values kept in
// step with the votes and comments tables inside the same transaction that
// mutates them. Score is never stored; it is always up_count - down_count.
type Post struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID     int64     `gorm:"not null;index:posts_ix_author;column:author_id"`
	CommunityID  int64     `gorm:"not null;index:posts_ix_community;column:community_id"`
	Title        string    `gorm:"type:varchar(150);not null;column:title"`
	Content      string    `gorm:"type:text;not null;column:content"`
	ImageURL     string    `gorm:"type:varchar(1024);not null;default:'';column:image_url"`
	UpCount      int64     `gorm:"not null;default:0;column:up_count"`
	DownCount    int64     `gorm:"not null;default:0;column:down_count"`
	HotScore     float64   `gorm:"type:double precision;not null;default:0;column:hot_score"`
	CommentCount int64     `gorm:"not null;default:0;column:comment_count"`
	CreatedAt    time.Time `gorm:"not null;index:posts_ix_created_at;column:created_at"`

	// Relationships
	Author    *User      `gorm:"foreignKey:AuthorID;references:ID"`
	Community *Community `gorm:"foreignKey:CommunityID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Score returns net votes
func (p *Post) Score() int64 {
	return p.UpCount - p.DownCount
}

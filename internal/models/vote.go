package models

import (
	"database/sql"
	"time"
)

// Vote is one user's vote on a post or comment. Exactly one of PostID and
// CommentID is set. The unique indexes allow at most one row per user and
// item, which is what keeps a user out of both vote directions at once.
type Vote struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	UserID    int64         `gorm:"not null;uniqueIndex:votes_ux_user_post;uniqueIndex:votes_ux_user_comment;column:user_id"`
	PostID    sql.NullInt64 `gorm:"uniqueIndex:votes_ux_user_post;column:post_id"`
	CommentID sql.NullInt64 `gorm:"uniqueIndex:votes_ux_user_comment;column:comment_id"`
	Value     int16         `gorm:"type:smallint;not null;column:value"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`
	UpdatedAt time.Time     `gorm:"not null;column:updated_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

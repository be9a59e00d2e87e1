package models

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `gorm:"type:varchar(21);not null;uniqueIndex:users_ux_username;column:username"`
	DisplayName  string    `gorm:"type:varchar(30);not null;column:display_name"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:users_ux_email;column:email"`
	PasswordHash string    `gorm:"type:varchar(60);not null;column:password_hash"`
	ProfilePic   string    `gorm:"type:varchar(1024);not null;default:'';column:profile_pic"`
	About        string    `gorm:"type:varchar(500);not null;default:'';column:about"`
	Karma        int64     `gorm:"not null;default:0;column:karma"`
	CreatedAt    time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// UserSummary is the author projection attached to posts and comments
type UserSummary struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	ProfilePic  string `json:"profilePic"`
}

// Summary returns the public author projection
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		ProfilePic:  u.ProfilePic,
	}
}

// SavedPost marks a post bookmarked by a user
type SavedPost struct {
	UserID    int64     `gorm:"primaryKey;column:user_id"`
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for SavedPost
func (SavedPost) TableName() string {
	return "saved_posts"
}
